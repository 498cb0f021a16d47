package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/newmd/newmd/internal/loader"
)

func TestInitLoggingLevelFromEnv(t *testing.T) {
	cases := []struct {
		name    string
		env     string
		debugOn bool
		infoOn  bool
		warnOn  bool
		errorOn bool
	}{
		{name: "debug", env: "debug", debugOn: true, infoOn: true, warnOn: true, errorOn: true},
		{name: "warn", env: "warn", debugOn: false, infoOn: false, warnOn: true, errorOn: true},
		{name: "error", env: "error", debugOn: false, infoOn: false, warnOn: false, errorOn: true},
		{name: "default", env: "", debugOn: false, infoOn: true, warnOn: true, errorOn: true},
	}

	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("NEWMD_LOG_LEVEL", tc.env)
			initLogging()
			h := slog.Default().Handler()
			ctx := context.Background()
			if got := h.Enabled(ctx, slog.LevelDebug); got != tc.debugOn {
				t.Fatalf("debug enabled=%v want %v", got, tc.debugOn)
			}
			if got := h.Enabled(ctx, slog.LevelInfo); got != tc.infoOn {
				t.Fatalf("info enabled=%v want %v", got, tc.infoOn)
			}
			if got := h.Enabled(ctx, slog.LevelWarn); got != tc.warnOn {
				t.Fatalf("warn enabled=%v want %v", got, tc.warnOn)
			}
			if got := h.Enabled(ctx, slog.LevelError); got != tc.errorOn {
				t.Fatalf("error enabled=%v want %v", got, tc.errorOn)
			}
		})
	}
}

func TestUsageWritesExpectedText(t *testing.T) {
	out := captureStderr(t, usage)
	if !strings.Contains(out, "newmd - NewMD desktop shell") {
		t.Fatalf("missing usage title, got: %q", out)
	}
	for _, cmd := range []string{"run", "check", "serve", "remind"} {
		if !strings.Contains(out, "  "+cmd+" ") {
			t.Fatalf("missing %s command in usage: %q", cmd, out)
		}
	}
}

func writeConfig(t *testing.T, endpoint string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "newmd.yaml")
	body := "version: 1\nupdate:\n  endpoint: " + endpoint + "\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestRunCheckExitCodes(t *testing.T) {
	lookup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("bundleId") != "org.eu.newmd" {
			http.Error(w, "unknown bundle", http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"resultCount":1,"results":[{"version":"1.3.0"}]}`)
	}))
	defer lookup.Close()
	cfgPath := writeConfig(t, lookup.URL+"/lookup")

	var out bytes.Buffer
	err := runCheck(context.Background(), []string{"-config", cfgPath, "-current", "1.2.0"}, &out)
	var exitErr exitCodeError
	if !errors.As(err, &exitErr) || exitErr.code != exitUpdateAvailable {
		t.Fatalf("expected exit code %d, got %v", exitUpdateAvailable, err)
	}
	if !strings.Contains(out.String(), "update available") {
		t.Fatalf("unexpected output: %q", out.String())
	}

	out.Reset()
	if err := runCheck(context.Background(), []string{"-config", cfgPath, "-current", "1.3.0"}, &out); err != nil {
		t.Fatalf("expected up to date, got %v", err)
	}
	if !strings.Contains(out.String(), "up to date") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

type recordingSurface struct{ loads []string }

func (r *recordingSurface) Load(rawURL string) error {
	r.loads = append(r.loads, rawURL)
	return nil
}

func TestTerminalPresenterRoutesStoreLinkExternally(t *testing.T) {
	policy, err := loader.NewPolicy(nil)
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	for _, storeURL := range []string{
		"itms-apps://itunes.apple.com/app/6464370385",
		"https://apps.apple.com/app/id6464370385",
	} {
		surface := &recordingSurface{}
		external := &recordingSurface{}
		l := loader.New(surface)
		l.Policy = policy
		l.External = external

		var buf bytes.Buffer
		p := &terminalPresenter{w: &buf, open: true, links: l}
		p.PromptUpdate(storeURL)

		if len(external.loads) != 1 || external.loads[0] != storeURL {
			t.Fatalf("%s: expected one external open, got %v", storeURL, external.loads)
		}
		if len(surface.loads) != 0 {
			t.Fatalf("%s: store link must not load in the content surface: %v", storeURL, surface.loads)
		}
	}
}

func TestTerminalPresenterWithoutOpenLeavesLinksAlone(t *testing.T) {
	external := &recordingSurface{}
	l := loader.New(&recordingSurface{})
	l.External = external
	p := &terminalPresenter{w: io.Discard, links: l}
	p.PromptUpdate("https://apps.apple.com/app/id6464370385")
	if len(external.loads) != 0 {
		t.Fatalf("store link opened without -open-store: %v", external.loads)
	}
}

func TestTerminalPresenterPrintsPrompt(t *testing.T) {
	var buf bytes.Buffer
	p := &terminalPresenter{w: &buf}
	p.PromptUpdate("https://apps.apple.com/app/id6464370385")
	if !strings.Contains(buf.String(), "有新的更新") || !strings.Contains(buf.String(), "id6464370385") {
		t.Fatalf("unexpected prompt: %q", buf.String())
	}
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	os.Stderr = w
	done := make(chan string, 1)
	go func() {
		raw, _ := io.ReadAll(r)
		done <- string(raw)
	}()
	fn()
	_ = w.Close()
	os.Stderr = orig
	return <-done
}
