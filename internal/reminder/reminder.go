package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var ErrPermissionDenied = errors.New("notification permission denied")

const (
	DefaultHour   = 20
	DefaultMinute = 0
	DefaultTitle  = "NewMD"
	DefaultBody   = "記得今天的筆記。"
)

type Schedule struct {
	Hour   int
	Minute int
	Title  string
	Body   string
}

type Reminder struct {
	Title string
	Body  string
	At    time.Time
}

type Notifier interface {
	RequestPermission(ctx context.Context) error
	Notify(ctx context.Context, r Reminder) error
}

func (s Schedule) Validate() error {
	if s.Hour < 0 || s.Hour > 23 {
		return fmt.Errorf("reminder hour %d out of range 0-23", s.Hour)
	}
	if s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("reminder minute %d out of range 0-59", s.Minute)
	}
	return nil
}

// NextFire returns the first daily occurrence strictly after now, in now's
// location.
func (s Schedule) NextFire(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), s.Hour, s.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, s.Hour, s.Minute, 0, 0, now.Location())
	}
	return next
}

// Run asks for permission once and then fires the reminder every day until
// ctx is done.
func Run(ctx context.Context, s Schedule, n Notifier) error {
	return run(ctx, s, n, time.Now, waitUntil)
}

func run(ctx context.Context, s Schedule, n Notifier, now func() time.Time, wait func(context.Context, time.Time) bool) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := n.RequestPermission(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("request notification permission: %w", err)
	}
	title, body := s.Title, s.Body
	if title == "" {
		title = DefaultTitle
	}
	if body == "" {
		body = DefaultBody
	}

	var last time.Time
	for {
		at := s.NextFire(now())
		// A clock stepped back after the last delivery must not repeat it.
		if !last.IsZero() && !at.After(last) {
			at = s.NextFire(last)
		}
		slog.Debug("reminder scheduled", "at", at.Format(time.RFC3339))
		if !wait(ctx, at) {
			return nil
		}
		if err := n.Notify(ctx, Reminder{Title: title, Body: body, At: at}); err != nil {
			slog.Warn("reminder delivery failed", "at", at.Format(time.RFC3339), "error", err)
		}
		last = at
	}
}

func waitUntil(ctx context.Context, at time.Time) bool {
	t := time.NewTimer(time.Until(at))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// LogNotifier delivers reminders to the process log.
type LogNotifier struct{}

func (LogNotifier) RequestPermission(context.Context) error { return nil }

func (LogNotifier) Notify(_ context.Context, r Reminder) error {
	slog.Info("reminder", "title", r.Title, "body", r.Body, "at", r.At.Format(time.RFC3339))
	return nil
}
