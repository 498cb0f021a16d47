package platform

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// openCommand returns the helper used to hand a URL to the desktop on goos.
// Windows is handled by ShellExecute and has no helper.
func openCommand(goos, rawURL string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		return "", nil
	default:
		return "xdg-open", []string{rawURL}
	}
}

func runHelper(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func checkOpenable(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("url %q has no scheme", rawURL)
	}
	switch strings.ToLower(u.Scheme) {
	case "file", "javascript", "data":
		return fmt.Errorf("refusing to open %s url", u.Scheme)
	}
	return nil
}

// BrowserSurface renders content in the user's default browser.
type BrowserSurface struct {
	Ctx context.Context
}

func (b BrowserSurface) Load(rawURL string) error {
	ctx := b.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return OpenURL(ctx, rawURL)
}
