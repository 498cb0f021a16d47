package loader

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

const DefaultTarget = "https://newmd.eu.org"

// Navigable is a browser surface that renders whatever URL it is given.
// Rendering, scripting, caching and sub-resource fetching belong to it.
type Navigable interface {
	Load(rawURL string) error
}

// ScriptEvaluator is implemented by surfaces that can run script in the
// loaded page.
type ScriptEvaluator interface {
	EvaluateScript(script string) error
}

// Configurable is implemented by surfaces that accept SurfaceOptions.
type Configurable interface {
	Configure(opts SurfaceOptions)
}

type Loader struct {
	surface Navigable

	// Policy and External route links followed from inside the content.
	// Without a policy every link stays in the surface.
	Policy   *Policy
	External Navigable

	mu          sync.Mutex
	current     string
	postLoadRan bool
}

func New(surface Navigable) *Loader {
	if c, ok := surface.(Configurable); ok {
		c.Configure(DefaultSurfaceOptions())
	}
	return &Loader{surface: surface}
}

// Load issues a single navigation to target. The URL is passed through
// unmodified.
func (l *Loader) Load(target string) error {
	if err := ValidateTarget(target); err != nil {
		return err
	}
	l.mu.Lock()
	l.current = target
	l.postLoadRan = false
	l.mu.Unlock()

	if err := l.surface.Load(target); err != nil {
		slog.Warn("navigation failed", "target", target, "error", err)
	}
	return nil
}

// Follow routes a link clicked inside the loaded content either to the
// surface or to the external opener.
func (l *Loader) Follow(link string) (Decision, error) {
	decision := InSurface
	if l.Policy != nil {
		decision = l.Policy.Decide(link)
	}
	if decision == External && l.External != nil {
		if err := l.External.Load(link); err != nil {
			return decision, fmt.Errorf("open external link %q: %w", link, err)
		}
		return decision, nil
	}
	return InSurface, l.Load(link)
}

// Current returns the last target handed to the surface.
func (l *Loader) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// OnLoadFinished runs the post-load adjustments once per navigation.
func (l *Loader) OnLoadFinished() {
	l.mu.Lock()
	if l.postLoadRan || l.current == "" {
		l.mu.Unlock()
		return
	}
	l.postLoadRan = true
	l.mu.Unlock()

	l.evaluate(DisableZoomScript)
}

// OnKeyboardFrameChange keeps the focused input visible while the on-screen
// keyboard is up and scrolls back to the top once it hides.
func (l *Loader) OnKeyboardFrameChange(hidden bool) {
	if hidden {
		l.evaluate(ResetScrollScript)
		return
	}
	l.evaluate(RevealFocusedScript)
}

func (l *Loader) evaluate(script string) {
	ev, ok := l.surface.(ScriptEvaluator)
	if !ok {
		return
	}
	if err := ev.EvaluateScript(script); err != nil {
		slog.Debug("surface script failed", "error", err)
	}
}

func ValidateTarget(target string) error {
	if strings.TrimSpace(target) == "" {
		return fmt.Errorf("content target is empty")
	}
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse content target %q: %w", target, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("content target %q must be an absolute URL", target)
	}
	return nil
}
