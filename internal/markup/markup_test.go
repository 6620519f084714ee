package markup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cyberpodolia/deskwin/internal/layout"
)

const page = `<!doctype html>
<html><body>
<main class="desktop">
  <section class="window widget" data-id="about" style="left: 40px; top: 60px; width: 360px; height: 240px;">
    <div class="widget__title">About</div>
  </section>
  <section class="windowed" data-id="not-a-window"></section>
  <section class="widget window" data-id="contact" style="left:420px;top:60px;width:320px">
    <form><input name="name"></form>
  </section>
  <section class="window" style="left: 0px"></section>
  <section class="window" data-id="gallery" style="left: 10%; top: auto"></section>
</main>
</body></html>`

func TestParse(t *testing.T) {
	specs, err := Parse(strings.NewReader(page))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []layout.WindowSpec{
		{ID: "about", Rect: layout.Rect{Left: 40, Top: 60, Width: 360, Height: 240}},
		{ID: "contact", Rect: layout.Rect{Left: 420, Top: 60, Width: 320}},
		{ID: "gallery"},
	}
	if len(specs) != len(want) {
		t.Fatalf("got %d windows (%+v), want %d", len(specs), specs, len(want))
	}
	for i := range want {
		if specs[i] != want[i] {
			t.Errorf("window %d = %+v, want %+v", i, specs[i], want[i])
		}
	}
}

func TestParse_NoWindows(t *testing.T) {
	specs, err := Parse(strings.NewReader(`<html><body><p>empty</p></body></html>`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("expected no windows, got %+v", specs)
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.html")); err == nil {
		t.Fatalf("expected error for missing page")
	}
}

func TestWatch_ReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan []layout.WindowSpec, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(specs []layout.WindowSpec) { changes <- specs })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	updated := `<div class="window" data-id="solo" style="width: 300px"></div>`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case specs := <-changes:
		if len(specs) != 1 || specs[0].ID != "solo" || specs[0].Rect.Width != 300 {
			t.Fatalf("unexpected windows: %+v", specs)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change reported")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("watch did not stop")
	}
}
