package platform

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/newmd/newmd/internal/reminder"
)

// DesktopNotifier posts reminders through the desktop notification helper.
type DesktopNotifier struct {
	goos     string
	lookPath func(string) (string, error)
}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{goos: runtime.GOOS, lookPath: exec.LookPath}
}

func (d *DesktopNotifier) helper() string {
	switch d.goos {
	case "darwin":
		return "osascript"
	case "windows":
		return ""
	default:
		return "notify-send"
	}
}

// RequestPermission fails with reminder.ErrPermissionDenied when no helper is
// available to display notifications.
func (d *DesktopNotifier) RequestPermission(context.Context) error {
	name := d.helper()
	if name == "" {
		return fmt.Errorf("%w: no notification helper on %s", reminder.ErrPermissionDenied, d.goos)
	}
	if _, err := d.lookPath(name); err != nil {
		return fmt.Errorf("%w: %s not found", reminder.ErrPermissionDenied, name)
	}
	return nil
}

func (d *DesktopNotifier) Notify(ctx context.Context, r reminder.Reminder) error {
	name, args := notifyCommand(d.goos, r)
	if name == "" {
		return fmt.Errorf("notifications unsupported on %s", d.goos)
	}
	return runHelper(ctx, name, args...)
}

func notifyCommand(goos string, r reminder.Reminder) (string, []string) {
	switch goos {
	case "darwin":
		script := "display notification " + strconv.Quote(r.Body) + " with title " + strconv.Quote(r.Title)
		return "osascript", []string{"-e", script}
	case "windows":
		return "", nil
	default:
		return "notify-send", []string{"--app-name=newmd", r.Title, r.Body}
	}
}
