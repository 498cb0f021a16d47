package updatecheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://itunes.apple.com/lookup"
	DefaultBundleID = "org.eu.newmd"
	DefaultTimeout  = 20 * time.Second
)

var (
	ErrNetworkFailure    = errors.New("network failure")
	ErrMalformedResponse = errors.New("malformed response")
)

// RemoteVersionInfo is the first entry of a lookup response.
type RemoteVersionInfo struct {
	Version string `json:"version"`
}

type lookupResponse struct {
	ResultCount int                 `json:"resultCount"`
	Results     []RemoteVersionInfo `json:"results"`
}

type Checker struct {
	Endpoint   string
	BundleID   string
	Compare    CompareFunc
	Timeout    time.Duration
	HTTPClient *http.Client
}

// LookupURL returns the metadata URL queried by Lookup.
func (c *Checker) LookupURL() (string, error) {
	endpoint := strings.TrimSpace(c.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	bundleID := strings.TrimSpace(c.BundleID)
	if bundleID == "" {
		bundleID = DefaultBundleID
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse lookup endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("bundleId", bundleID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Checker) Lookup(ctx context.Context) (RemoteVersionInfo, error) {
	lookupURL, err := c.LookupURL()
	if err != nil {
		return RemoteVersionInfo{}, fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return RemoteVersionInfo{}, fmt.Errorf("%w: create request: %v", ErrNetworkFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "newmd-update-check")

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return RemoteVersionInfo{}, fmt.Errorf("%w: request lookup: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return RemoteVersionInfo{}, fmt.Errorf("%w: read lookup body: %v", ErrNetworkFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RemoteVersionInfo{}, fmt.Errorf("%w: lookup query failed: status=%d", ErrNetworkFailure, resp.StatusCode)
	}

	var parsed lookupResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return RemoteVersionInfo{}, fmt.Errorf("%w: decode lookup: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Results) == 0 {
		return RemoteVersionInfo{}, fmt.Errorf("%w: lookup returned no results", ErrMalformedResponse)
	}
	info := parsed.Results[0]
	if info.Version == "" {
		return RemoteVersionInfo{}, fmt.Errorf("%w: results[0].version missing", ErrMalformedResponse)
	}
	return info, nil
}

// CheckForUpdate reports whether the store lists a version newer than
// currentVersion. Every failure degrades to false.
func (c *Checker) CheckForUpdate(ctx context.Context, currentVersion string) bool {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	info, err := c.Lookup(ctx)
	if err != nil {
		slog.Warn("update check failed", "current_version", currentVersion, "error", err)
		return false
	}
	compare := c.Compare
	if compare == nil {
		compare = LexicalNewer
	}
	newer := compare(info.Version, currentVersion)
	slog.Debug("update check completed", "current_version", currentVersion, "store_version", info.Version, "update_available", newer)
	return newer
}
