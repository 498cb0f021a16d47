package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/newmd/newmd/internal/config"
	"github.com/newmd/newmd/internal/updatecheck"
	"github.com/newmd/newmd/internal/version"
)

// Options configures the local status API.
type Options struct {
	Config  config.File
	Checker *updatecheck.Checker
	// CurrentVersion defaults to version.Current().
	CurrentVersion string
}

type stateStore struct {
	cfg            config.File
	checker        *updatecheck.Checker
	currentVersion string
}

func newStateStore(opts Options) (*stateStore, error) {
	checker := opts.Checker
	if checker == nil {
		c, err := opts.Config.Checker()
		if err != nil {
			return nil, err
		}
		checker = c
	}
	current := opts.CurrentVersion
	if current == "" {
		current = version.Current()
	}
	return &stateStore{cfg: opts.Config, checker: checker, currentVersion: current}, nil
}

func Handler(opts Options) (http.Handler, error) {
	s, err := newStateStore(opts)
	if err != nil {
		return nil, err
	}
	return buildRouter(s), nil
}

// Run serves the status API on opts.Config.Server.Addr until ctx is done.
func Run(ctx context.Context, opts Options) error {
	s, err := newStateStore(opts)
	if err != nil {
		return err
	}
	addr := envOrDefault("NEWMD_SERVER_ADDR", opts.Config.Server.Addr)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           buildRouter(s),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopMDNS := func() {}
	if opts.Config.Server.MDNS {
		stopMDNS = startMDNSAdvertiser(ln.Addr().String(), s.currentVersion)
	}
	defer stopMDNS()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("newmd status server started", "addr", ln.Addr().String())
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serve: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		slog.Info("newmd status server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
