package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"
	"runtime"
	"strings"

	"gioui.org/app"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/newmd/newmd/internal/config"
	"github.com/newmd/newmd/internal/loader"
	"github.com/newmd/newmd/internal/platform"
	"github.com/newmd/newmd/internal/shell"
	"github.com/newmd/newmd/internal/updatecheck"
	"github.com/newmd/newmd/internal/version"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

type uiEvent struct {
	storeURL   string
	statusText string
	errText    string
}

type guiApp struct {
	theme *material.Theme
	ops   op.Ops

	openBtn    widget.Clickable
	updateBtn  widget.Clickable
	dismissBtn widget.Clickable

	window *app.Window
	loader *loader.Loader

	events chan uiEvent

	target     string
	statusText string
	lastError  string
	storeURL   string
	showPrompt bool
}

func main() {
	go func() {
		w := new(app.Window)
		w.Option(
			app.Title("NewMD"),
			app.Size(unit.Dp(520), unit.Dp(360)),
		)
		if err := run(w); err != nil {
			log.Printf("newmd-gui: %v", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func run(w *app.Window) error {
	cfg, err := config.Load(os.Getenv("NEWMD_CONFIG"))
	if err != nil {
		return err
	}
	checker, err := cfg.Checker()
	if err != nil {
		return err
	}
	policy, err := loader.NewPolicy(cfg.Content.Allow)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := newGUIApp(w, defaultTarget(cfg.Content.Target), policy, platform.BrowserSurface{Ctx: ctx})
	shellApp := &shell.App{
		Target:         model.target,
		CurrentVersion: version.Current(),
		StoreURL:       storeURLForPlatform(cfg.Update.AppID),
		Checker:        checker,
		Loader:         model.loader,
		Presenter:      model,
	}
	if _, err := shellApp.Start(ctx); err != nil {
		model.enqueue(uiEvent{statusText: "Content target invalid", errText: err.Error()})
	} else {
		model.enqueue(uiEvent{statusText: "Opened " + model.target})
	}

	for {
		e := w.Event()
		switch e := e.(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&model.ops, e)
			model.processEvents()
			model.processActions(gtx)
			model.layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func newGUIApp(w *app.Window, target string, policy *loader.Policy, surface loader.Navigable) *guiApp {
	l := loader.New(surface)
	l.Policy = policy
	l.External = surface
	return &guiApp{
		theme:      material.NewTheme(),
		window:     w,
		loader:     l,
		events:     make(chan uiEvent, 16),
		target:     target,
		statusText: "Starting",
	}
}

func defaultTarget(configured string) string {
	if v := normalizeTarget(os.Getenv("NEWMD_GUI_TARGET")); v != "" {
		return v
	}
	if v := normalizeTarget(configured); v != "" {
		return v
	}
	return loader.DefaultTarget
}

// normalizeTarget accepts bare hosts and assumes https for them.
func normalizeTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || strings.TrimSpace(u.Host) == "" {
		return ""
	}
	return raw
}

func storeURLForPlatform(appID string) string {
	if runtime.GOOS == "darwin" || runtime.GOOS == "ios" {
		return updatecheck.StoreURL(appID)
	}
	return updatecheck.WebStoreURL(appID)
}

// PromptUpdate is called from the checker goroutine; the prompt is handed to
// the frame loop through the events channel.
func (m *guiApp) PromptUpdate(storeURL string) {
	m.enqueue(uiEvent{storeURL: storeURL})
}

func (m *guiApp) enqueue(ev uiEvent) {
	select {
	case m.events <- ev:
	default:
		slog.Warn("gui event dropped", "status", ev.statusText)
	}
	if m.window != nil {
		m.window.Invalidate()
	}
}

func (m *guiApp) processEvents() {
	for {
		select {
		case ev := <-m.events:
			if ev.storeURL != "" {
				m.storeURL = ev.storeURL
				m.showPrompt = true
			}
			if strings.TrimSpace(ev.statusText) != "" {
				m.statusText = ev.statusText
			}
			if strings.TrimSpace(ev.errText) != "" {
				m.lastError = ev.errText
			}
		default:
			return
		}
	}
}

func (m *guiApp) processActions(gtx C) {
	for m.openBtn.Clicked(gtx) {
		go m.reload()
	}
	for m.updateBtn.Clicked(gtx) {
		m.showPrompt = false
		go m.openStore()
	}
	for m.dismissBtn.Clicked(gtx) {
		m.showPrompt = false
	}
}

func (m *guiApp) reload() {
	if err := m.loader.Load(m.target); err != nil {
		m.enqueue(uiEvent{statusText: "Open failed", errText: err.Error()})
		return
	}
	m.enqueue(uiEvent{statusText: "Opened " + m.target})
}

func (m *guiApp) openStore() {
	if _, err := m.loader.Follow(m.storeURL); err != nil {
		m.enqueue(uiEvent{statusText: "Could not open store listing", errText: err.Error()})
	}
}

func (m *guiApp) layout(gtx C) D {
	in := layout.UniformInset(unit.Dp(16))
	return in.Layout(gtx, func(gtx C) D {
		return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
			layout.Rigid(func(gtx C) D {
				return material.H5(m.theme, "NewMD").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx C) D {
				return material.Body1(m.theme, m.target).Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(func(gtx C) D {
				return material.Button(m.theme, &m.openBtn, "Open").Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Height: unit.Dp(12)}.Layout),
			layout.Rigid(m.layoutStatus),
			layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
			layout.Rigid(m.layoutUpdatePrompt),
		)
	})
}

func (m *guiApp) layoutStatus(gtx C) D {
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return material.Body2(m.theme, "Status: "+m.statusText).Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			if m.lastError == "" {
				return D{}
			}
			return material.Body2(m.theme, "Error: "+m.lastError).Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			return material.Caption(m.theme, "Version "+version.Current()).Layout(gtx)
		}),
	)
}

func (m *guiApp) layoutUpdatePrompt(gtx C) D {
	if !m.showPrompt {
		return D{}
	}
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx C) D {
			return material.H6(m.theme, "有新的更新").Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			return material.Body1(m.theme, "請前往App Store進行更新。").Layout(gtx)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					return material.Button(m.theme, &m.updateBtn, "立即更新").Layout(gtx)
				}),
				layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
				layout.Rigid(func(gtx C) D {
					return material.Button(m.theme, &m.dismissBtn, "Later").Layout(gtx)
				}),
			)
		}),
	)
}
