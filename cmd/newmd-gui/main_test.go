package main

import (
	"sync"
	"testing"

	"github.com/newmd/newmd/internal/loader"
)

type recordingSurface struct {
	mu    sync.Mutex
	loads []string
}

func (r *recordingSurface) Load(rawURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads = append(r.loads, rawURL)
	return nil
}

func TestNormalizeTarget(t *testing.T) {
	cases := map[string]string{
		"":                         "",
		"  ":                       "",
		"newmd.eu.org":             "https://newmd.eu.org",
		"https://newmd.eu.org/app": "https://newmd.eu.org/app",
		" http://localhost:8080/ ": "http://localhost:8080/",
		"https://":                 "",
	}
	for in, want := range cases {
		if got := normalizeTarget(in); got != want {
			t.Fatalf("normalizeTarget(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultTargetPrefersEnv(t *testing.T) {
	t.Setenv("NEWMD_GUI_TARGET", "staging.newmd.eu.org")
	if got := defaultTarget("https://newmd.eu.org"); got != "https://staging.newmd.eu.org" {
		t.Fatalf("unexpected target: %q", got)
	}
	t.Setenv("NEWMD_GUI_TARGET", "")
	if got := defaultTarget(""); got != "https://newmd.eu.org" {
		t.Fatalf("expected built-in target, got %q", got)
	}
}

func TestPromptUpdateReachesFrameState(t *testing.T) {
	m := newGUIApp(nil, "https://newmd.eu.org", nil, &recordingSurface{})
	m.enqueue(uiEvent{statusText: "Opened https://newmd.eu.org"})
	m.PromptUpdate("https://apps.apple.com/app/id6464370385")

	if m.showPrompt {
		t.Fatalf("prompt must only show once the frame loop drains events")
	}
	m.processEvents()
	if !m.showPrompt || m.storeURL != "https://apps.apple.com/app/id6464370385" {
		t.Fatalf("unexpected prompt state: show=%v url=%q", m.showPrompt, m.storeURL)
	}
	if m.statusText != "Opened https://newmd.eu.org" {
		t.Fatalf("unexpected status: %q", m.statusText)
	}
}

func TestOpenStoreFollowsLinkPolicy(t *testing.T) {
	policy, err := loader.NewPolicy(nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	surface := &recordingSurface{}
	m := newGUIApp(nil, "https://newmd.eu.org", policy, surface)
	m.PromptUpdate("itms-apps://itunes.apple.com/app/6464370385")
	m.processEvents()

	m.openStore()
	if got := m.loader.Current(); got != "" {
		t.Fatalf("store link must not replace the content target, current=%q", got)
	}
	surface.mu.Lock()
	defer surface.mu.Unlock()
	if len(surface.loads) != 1 || surface.loads[0] != "itms-apps://itunes.apple.com/app/6464370385" {
		t.Fatalf("expected store link handed to the external opener, got %v", surface.loads)
	}
}
