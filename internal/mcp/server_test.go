package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cyberpodolia/deskwin/internal/config"
	"github.com/cyberpodolia/deskwin/internal/store"
	"github.com/cyberpodolia/deskwin/internal/viewport"
)

const record = `{"windows":{"about":{"left":"10px","top":"20px","width":"300px","height":"200px","zIndex":"104"},"contact":{"left":"400px","top":"20px","width":"300px","height":"200px","zIndex":"101"}},"topZIndex":104}`

func newTestServer(t *testing.T) (*Server, *store.MemoryKV, *[]string) {
	t.Helper()
	kv := store.NewMemoryKV()
	s := NewServer(config.DefaultConfig(), kv, nil)
	var reasons []string
	s.reloadFn = func(reason string) (int, error) {
		reasons = append(reasons, reason)
		return 2, nil
	}
	return s, kv, &reasons
}

func seed(t *testing.T, s *Server, profile string) {
	t.Helper()
	st, _, err := s.layoutStore(profile, viewport.Desktop)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := st.Overwrite(record); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestGetLayout(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleGetLayout(ctx, nil, GetLayoutInput{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Stored || out.Profile != DefaultProfile || out.Key != config.DefaultStorageKey || len(out.Windows) != 0 {
		t.Fatalf("empty layout = %+v", out)
	}

	seed(t, s, DefaultProfile)
	_, out, err = s.handleGetLayout(ctx, nil, GetLayoutInput{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !out.Stored || out.TopZIndex != 104 || len(out.Windows) != 2 {
		t.Fatalf("layout = %+v", out)
	}
	if out.Windows[0].ID != "about" || out.Windows[0].Left != 10 || out.Windows[0].ZIndex != 104 {
		t.Fatalf("topmost first = %+v", out.Windows[0])
	}
	if !strings.Contains(out.Map, "contact") {
		t.Fatalf("map = %q", out.Map)
	}

	_, out, err = s.handleGetLayout(ctx, nil, GetLayoutInput{Mobile: true})
	if err != nil {
		t.Fatalf("get mobile: %v", err)
	}
	if out.Stored || out.Key != config.DefaultStorageKey+"_mobile" {
		t.Fatalf("mobile = %+v", out)
	}
}

func TestGetLayout_InvalidProfile(t *testing.T) {
	s, _, _ := newTestServer(t)
	if _, _, err := s.handleGetLayout(context.Background(), nil, GetLayoutInput{Profile: "a/b"}); err == nil {
		t.Fatalf("expected error for invalid profile")
	}
}

func TestShareThenApply(t *testing.T) {
	s, kv, reasons := newTestServer(t)
	ctx := context.Background()

	if _, _, err := s.handleShareLayout(ctx, nil, ShareLayoutInput{}); err == nil {
		t.Fatalf("expected error sharing an empty profile")
	}

	seed(t, s, "laptop")
	_, shared, err := s.handleShareLayout(ctx, nil, ShareLayoutInput{
		Profile: "laptop",
		PageURL: "http://localhost:5000/?layout=old&x=1",
	})
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if shared.Token == "" || !strings.Contains(shared.URL, "x=1") || strings.Contains(shared.URL, "layout=old") {
		t.Fatalf("share = %+v", shared)
	}

	_, applied, err := s.handleApplySharedLayout(ctx, nil, ApplySharedLayoutInput{Token: shared.URL, Reload: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied.Profile != DefaultProfile || applied.Windows != 2 || applied.Reloaded != 2 {
		t.Fatalf("apply = %+v", applied)
	}
	if len(*reasons) != 1 {
		t.Fatalf("reload reasons = %v", *reasons)
	}

	raw, ok, _ := kv.Get("default/" + config.DefaultStorageKey)
	if !ok || raw != record {
		t.Fatalf("stored = %q", raw)
	}
}

func TestApply_InvalidTokenKeepsRecord(t *testing.T) {
	s, kv, reasons := newTestServer(t)
	ctx := context.Background()
	seed(t, s, DefaultProfile)

	for _, token := range []string{"!!!not-base64", "bm90IGpzb24=", ""} {
		if _, _, err := s.handleApplySharedLayout(ctx, nil, ApplySharedLayoutInput{Token: token, Reload: true}); err == nil {
			t.Fatalf("expected error for %q", token)
		}
	}
	if _, _, err := s.handleApplySharedLayout(ctx, nil, ApplySharedLayoutInput{Token: "http://localhost/?other=1"}); err == nil {
		t.Fatalf("expected error for url without token")
	}
	if raw, _, _ := kv.Get("default/" + config.DefaultStorageKey); raw != record {
		t.Fatalf("record changed: %q", raw)
	}
	if len(*reasons) != 0 {
		t.Fatalf("reloaded after failure: %v", *reasons)
	}
}

func TestResetLayout(t *testing.T) {
	s, kv, _ := newTestServer(t)
	ctx := context.Background()
	seed(t, s, DefaultProfile)

	_, out, err := s.handleResetLayout(ctx, nil, ResetLayoutInput{})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !out.Cleared || out.Reloaded != 0 {
		t.Fatalf("reset = %+v", out)
	}
	if kv.Len() != 0 {
		t.Fatalf("record not cleared")
	}

	_, out, err = s.handleResetLayout(ctx, nil, ResetLayoutInput{})
	if err != nil || out.Cleared {
		t.Fatalf("second reset = %+v, %v", out, err)
	}
}

func TestReload_FailureIsNotFatal(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.reloadFn = func(string) (int, error) { return 0, errors.New("not running") }
	seed(t, s, DefaultProfile)

	_, out, err := s.handleResetLayout(context.Background(), nil, ResetLayoutInput{Reload: true})
	if err != nil || out.Reloaded != 0 || !out.Cleared {
		t.Fatalf("reset = %+v, %v", out, err)
	}
}
