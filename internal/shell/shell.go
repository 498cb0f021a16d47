// Package shell ties the content loader and the version checker together.
// The two run independently and never share state.
package shell

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/newmd/newmd/internal/loader"
	"github.com/newmd/newmd/internal/updatecheck"
)

// Presenter owns user-facing prompts.
type Presenter interface {
	PromptUpdate(storeURL string)
}

type App struct {
	Target         string
	CurrentVersion string
	StoreURL       string
	Checker        *updatecheck.Checker
	Loader         *loader.Loader
	Presenter      Presenter
}

// Start fires the update check and loads the content target. The returned
// channel yields the check result once; the presenter is prompted at most
// once, and only when an update exists.
func (a *App) Start(ctx context.Context) (<-chan bool, error) {
	if a.Loader == nil || a.Checker == nil {
		return nil, fmt.Errorf("shell app requires a loader and a checker")
	}

	results := updatecheck.Start(ctx, a.Checker, a.CurrentVersion)
	out := make(chan bool, 1)
	go func() {
		defer close(out)
		available, ok := <-results
		if !ok {
			return
		}
		if available {
			slog.Info("update available", "current_version", a.CurrentVersion, "store_url", a.StoreURL)
			if a.Presenter != nil {
				a.Presenter.PromptUpdate(a.StoreURL)
			}
		}
		out <- available
	}()

	if err := a.Loader.Load(a.Target); err != nil {
		return out, err
	}
	return out, nil
}

// WaitPrompt blocks until the check result arrives or ctx is done.
func WaitPrompt(ctx context.Context, results <-chan bool) bool {
	select {
	case <-ctx.Done():
		return false
	case v, ok := <-results:
		return ok && v
	}
}
