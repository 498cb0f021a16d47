package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/newmd/newmd/internal/loader"
	"github.com/newmd/newmd/internal/reminder"
	"github.com/newmd/newmd/internal/updatecheck"
)

type File struct {
	Version  int      `yaml:"version" json:"version"`
	Content  Content  `yaml:"content" json:"content"`
	Update   Update   `yaml:"update" json:"update"`
	Reminder Reminder `yaml:"reminder" json:"reminder"`
	Server   Server   `yaml:"server" json:"server"`
}

type Content struct {
	Target string   `yaml:"target" json:"target"`
	Allow  []string `yaml:"allow,omitempty" json:"allow,omitempty"`
}

type Update struct {
	Endpoint            string `yaml:"endpoint" json:"endpoint"`
	BundleID            string `yaml:"bundle_id" json:"bundle_id"`
	AppID               string `yaml:"app_id" json:"app_id"`
	Compare             string `yaml:"compare" json:"compare"`
	CheckTimeoutSeconds int    `yaml:"check_timeout_seconds" json:"check_timeout_seconds"`
}

type Reminder struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Hour    int    `yaml:"hour" json:"hour"`
	Minute  int    `yaml:"minute" json:"minute"`
	Title   string `yaml:"title,omitempty" json:"title,omitempty"`
	Body    string `yaml:"body,omitempty" json:"body,omitempty"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
	MDNS bool   `yaml:"mdns" json:"mdns"`
}

func Default() File {
	return File{
		Version: 1,
		Content: Content{
			Target: loader.DefaultTarget,
			Allow:  slices.Clone(loader.DefaultAllow),
		},
		Update: Update{
			Endpoint:            updatecheck.DefaultEndpoint,
			BundleID:            updatecheck.DefaultBundleID,
			AppID:               updatecheck.DefaultAppID,
			Compare:             updatecheck.PolicyLexical,
			CheckTimeoutSeconds: int(updatecheck.DefaultTimeout / time.Second),
		},
		Reminder: Reminder{
			Hour:   reminder.DefaultHour,
			Minute: reminder.DefaultMinute,
		},
		Server: Server{
			Addr: "127.0.0.1:8114",
		},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults.
func Load(path string) (File, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return File{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	return Parse(data, path)
}

func Parse(data []byte, source string) (File, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse YAML in %q: %w", source, err)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config in %q: %s", source, strings.Join(errs, "; "))
	}
	return cfg, nil
}

func (cfg File) Validate() []string {
	var errs []string

	if cfg.Version != 1 {
		errs = append(errs, fmt.Sprintf("unsupported config version %d", cfg.Version))
	}
	if err := loader.ValidateTarget(cfg.Content.Target); err != nil {
		errs = append(errs, "content.target: "+err.Error())
	}
	for i, p := range cfg.Content.Allow {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, fmt.Sprintf("content.allow[%d] must not be empty", i))
			continue
		}
		if !doublestar.ValidatePattern(strings.Trim(strings.TrimSpace(p), "/")) {
			errs = append(errs, fmt.Sprintf("content.allow[%d] invalid pattern %q", i, p))
		}
	}

	if err := loader.ValidateTarget(cfg.Update.Endpoint); err != nil {
		errs = append(errs, "update.endpoint: "+err.Error())
	}
	if strings.TrimSpace(cfg.Update.BundleID) == "" {
		errs = append(errs, "update.bundle_id is required")
	}
	if strings.ContainsAny(strings.TrimSpace(cfg.Update.AppID), " \t/?#") {
		errs = append(errs, fmt.Sprintf("update.app_id invalid %q", cfg.Update.AppID))
	}
	if _, err := updatecheck.PolicyFunc(cfg.Update.Compare); err != nil {
		errs = append(errs, "update.compare must be one of lexical,semver")
	}
	if cfg.Update.CheckTimeoutSeconds < 0 {
		errs = append(errs, "update.check_timeout_seconds must be >= 0")
	}

	sched := cfg.ReminderSchedule()
	if err := sched.Validate(); err != nil {
		errs = append(errs, "reminder: "+err.Error())
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		errs = append(errs, "server.addr is required")
	}

	return errs
}

// Checker builds the version checker described by the update section.
func (cfg File) Checker() (*updatecheck.Checker, error) {
	compare, err := updatecheck.PolicyFunc(cfg.Update.Compare)
	if err != nil {
		return nil, err
	}
	return &updatecheck.Checker{
		Endpoint: cfg.Update.Endpoint,
		BundleID: cfg.Update.BundleID,
		Compare:  compare,
		Timeout:  time.Duration(cfg.Update.CheckTimeoutSeconds) * time.Second,
	}, nil
}

func (cfg File) ReminderSchedule() reminder.Schedule {
	return reminder.Schedule{
		Hour:   cfg.Reminder.Hour,
		Minute: cfg.Reminder.Minute,
		Title:  cfg.Reminder.Title,
		Body:   cfg.Reminder.Body,
	}
}

func (cfg File) StoreURL() string {
	return updatecheck.StoreURL(cfg.Update.AppID)
}
