package platform

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/newmd/newmd/internal/reminder"
)

func TestOpenCommand(t *testing.T) {
	cases := []struct {
		goos string
		want string
	}{
		{"darwin", "open"},
		{"linux", "xdg-open"},
		{"freebsd", "xdg-open"},
		{"windows", ""},
	}
	for _, tc := range cases {
		name, args := openCommand(tc.goos, "https://newmd.eu.org")
		if name != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.goos, tc.want, name)
		}
		if name != "" && (len(args) != 1 || args[0] != "https://newmd.eu.org") {
			t.Fatalf("%s: unexpected args %v", tc.goos, args)
		}
	}
}

func TestCheckOpenable(t *testing.T) {
	for _, ok := range []string{"https://newmd.eu.org", "itms-apps://itunes.apple.com/app/6464370385"} {
		if err := checkOpenable(ok); err != nil {
			t.Fatalf("expected %q to be openable: %v", ok, err)
		}
	}
	for _, bad := range []string{"newmd.eu.org", "file:///etc/passwd", "javascript:alert(1)"} {
		if err := checkOpenable(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestNotifyCommand(t *testing.T) {
	r := reminder.Reminder{Title: "NewMD", Body: `say "hi"`}
	name, args := notifyCommand("darwin", r)
	if name != "osascript" || len(args) != 2 || !strings.Contains(args[1], `"say \"hi\""`) {
		t.Fatalf("unexpected darwin command: %s %v", name, args)
	}
	name, args = notifyCommand("linux", r)
	if name != "notify-send" || args[len(args)-1] != r.Body {
		t.Fatalf("unexpected linux command: %s %v", name, args)
	}
}

func TestDesktopNotifierPermission(t *testing.T) {
	d := &DesktopNotifier{goos: "linux", lookPath: func(string) (string, error) { return "", errors.New("missing") }}
	if err := d.RequestPermission(context.Background()); !errors.Is(err, reminder.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	d.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	if err := d.RequestPermission(context.Background()); err != nil {
		t.Fatalf("expected permission granted, got %v", err)
	}
	d.goos = "windows"
	if err := d.RequestPermission(context.Background()); !errors.Is(err, reminder.ErrPermissionDenied) {
		t.Fatalf("expected windows to deny, got %v", err)
	}
}
