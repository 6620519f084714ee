package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/cyberpodolia/deskwin/internal/logging"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

const testKey = "cyberpodolia_windows_v1"

func sampleSnapshot() Snapshot {
	return Snapshot{
		Windows: map[string]WindowRecord{
			"a": {Left: "10px", Top: "20px", Width: "300px", Height: "200px", ZIndex: "105"},
		},
		TopZIndex: 105,
	}
}

func TestLayoutStore_SaveLoadRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	s := NewLayoutStore(kv, testKey, viewport.Desktop, nil)
	s.Enable()

	want := sampleSnapshot()
	if err := s.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, ok, _ := kv.Get(testKey)
	if !ok {
		t.Fatalf("expected record under %q", testKey)
	}
	wantRaw := `{"windows":{"a":{"left":"10px","top":"20px","width":"300px","height":"200px","zIndex":"105"}},"topZIndex":105}`
	if raw != wantRaw {
		t.Fatalf("raw record = %s\nwant %s", raw, wantRaw)
	}

	got, ok := s.Load()
	if !ok {
		t.Fatalf("expected load to succeed")
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("load = %+v, want %+v", got, want)
	}
}

func TestLayoutStore_SaveGated(t *testing.T) {
	kv := NewMemoryKV()

	disabled := NewLayoutStore(kv, testKey, viewport.Desktop, nil)
	if err := disabled.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.Len() != 0 {
		t.Fatalf("disabled store wrote %d keys", kv.Len())
	}

	mobile := NewLayoutStore(kv, testKey, viewport.Mobile, nil)
	mobile.Enable()
	if mobile.Enabled() {
		t.Fatalf("mobile store must never be enabled")
	}
	if err := mobile.Save(sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if kv.Len() != 0 {
		t.Fatalf("mobile store wrote %d keys", kv.Len())
	}
}

func TestLayoutStore_LoadMalformedIsAbsent(t *testing.T) {
	inputs := []string{
		`{`,
		`not json`,
		`{"windows":[1,2]}`,
		`{"windows":"x","topZIndex":3}`,
		`{"topZIndex":3}`,
		`[]`,
		`null`,
		`{"windows":{"a":{"left":"10px"`,
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			logs := logging.NewTestLogManager()
			kv := NewMemoryKV()
			_ = kv.Set(testKey, in)
			s := NewLayoutStore(kv, testKey, viewport.Desktop, logs.For("store"))

			if _, ok := s.Load(); ok {
				t.Fatalf("expected absent for %q", in)
			}
			raw, _, _ := kv.Get(testKey)
			if raw != in {
				t.Fatalf("load mutated the store: %q", raw)
			}
			if logs.Count("failed to load window positions") != 1 {
				t.Fatalf("expected the failure to be logged")
			}
		})
	}
}

func TestLayoutStore_LoadLenientValues(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(testKey, `{"windows":{"a":{"left":10,"top":"20px","width":300.5,"zIndex":7},"b":"junk"},"topZIndex":"9"}`)
	s := NewLayoutStore(kv, testKey, viewport.Desktop, nil)

	got, ok := s.Load()
	if !ok {
		t.Fatal("expected load to succeed")
	}
	a := got.Windows["a"]
	if a.Left != "10px" || a.Top != "20px" || a.Width != "300.5px" || a.Height != "" || a.ZIndex != "7" {
		t.Fatalf("unexpected record: %+v", a)
	}
	if _, ok := got.Windows["b"]; ok {
		t.Fatalf("non-object entry should be skipped")
	}
	if got.TopZIndex != 9 {
		t.Fatalf("TopZIndex = %d, want 9", got.TopZIndex)
	}
}

func TestLayoutStore_OverwriteRejectsInvalid(t *testing.T) {
	kv := NewMemoryKV()
	s := NewLayoutStore(kv, testKey, viewport.Desktop, nil)
	_ = kv.Set(testKey, `{"windows":{},"topZIndex":100}`)

	err := s.Overwrite(`{"windows":5}`)
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	raw, _, _ := kv.Get(testKey)
	if raw != `{"windows":{},"topZIndex":100}` {
		t.Fatalf("overwrite corrupted the store: %s", raw)
	}
}

func TestLayoutStore_ModeKeys(t *testing.T) {
	kv := NewMemoryKV()
	d := NewLayoutStore(kv, testKey, viewport.Desktop, nil)
	m := NewLayoutStore(kv, testKey, viewport.Mobile, nil)
	if d.Key() == m.Key() {
		t.Fatalf("desktop and mobile share key %q", d.Key())
	}

	d.Enable()
	_ = d.Save(sampleSnapshot())
	if err := d.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok := d.Load(); ok {
		t.Fatalf("expected cleared record")
	}
}

func TestParsePx(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10px", 10, true},
		{" -4.5px ", -4.5, true},
		{"12", 12, true},
		{"", 0, false},
		{"px", 0, false},
		{"auto", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePx(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParsePx(%q) = %v,%v want %v,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
	if FormatPx(350) != "350px" || FormatPx(10.25) != "10.25px" {
		t.Errorf("FormatPx produced %q / %q", FormatPx(350), FormatPx(10.25))
	}
}

func TestScoped_IsolatesProfiles(t *testing.T) {
	kv := NewMemoryKV()
	a, err := Scoped(kv, "alice")
	if err != nil {
		t.Fatalf("scoped: %v", err)
	}
	b, _ := Scoped(kv, "bob")

	_ = a.Set(testKey, "1")
	if _, ok, _ := b.Get(testKey); ok {
		t.Fatalf("profile b sees profile a's key")
	}
	if _, err := Scoped(kv, "../etc"); err == nil {
		t.Fatalf("expected invalid profile error")
	}
	if _, err := Scoped(kv, ""); err == nil {
		t.Fatalf("expected empty profile error")
	}
}

func testBackend(t *testing.T, kv Backend) {
	t.Helper()
	defer kv.Close()

	if _, ok, err := kv.Get("missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v", ok, err)
	}
	if err := kv.Set("k", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := kv.Set("k", "v2"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := kv.Get("k")
	if err != nil || !ok || v != "v2" {
		t.Fatalf("Get(k) = %q,%v,%v", v, ok, err)
	}
	if err := kv.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := kv.Get("k"); ok {
		t.Fatalf("expected deleted key")
	}
}

func TestFileKV(t *testing.T) {
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "data", "layouts.json"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	testBackend(t, kv)
}

func TestFileKV_SharedAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layouts.json")
	a, _ := NewFileKV(path)
	b, _ := NewFileKV(path)
	defer a.Close()
	defer b.Close()

	_ = a.Set("x", "1")
	_ = b.Set("y", "2")
	if v, ok, _ := a.Get("y"); !ok || v != "2" {
		t.Fatalf("handle a cannot see b's write")
	}
	if v, ok, _ := b.Get("x"); !ok || v != "1" {
		t.Fatalf("handle b lost a's write")
	}
}

func TestSQLiteKV(t *testing.T) {
	kv, err := OpenSQLite(filepath.Join(t.TempDir(), "layouts.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	testBackend(t, kv)
}

func TestMemoryKV(t *testing.T) {
	testBackend(t, NewMemoryKV())
}
