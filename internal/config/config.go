package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ICSConfig describes a single ICS subscription. Disabled sources are kept
// in the file but never queried.
type ICSConfig struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	URL     string `yaml:"url" json:"url"`
	Enabled bool   `yaml:"enabled" json:"enabled"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the web surface.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// WidgetConfig is the size the widget is laid out for.
type WidgetConfig struct {
	Width       int    `yaml:"width" json:"width"`
	Height      int    `yaml:"height" json:"height"`
	Orientation string `yaml:"orientation" json:"orientation"`
}

// CaptureConfig controls the headless PNG capture of the widget page.
type CaptureConfig struct {
	Output  string `yaml:"output" json:"output"`
	Scale   int    `yaml:"scale" json:"scale"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA zone treated as the system zone. Empty means
	// the host's local zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Locale picks month and day names (BCP 47, e.g. "ca-ES").
	Locale string `yaml:"locale" json:"locale"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// RefreshCron is the auto update schedule.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// Database is the SQLite file holding widget preferences.
	Database string `yaml:"database" json:"database"`

	// CacheDir keeps fetched ICS bodies and their validators.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	Widget WidgetConfig `yaml:"widget" json:"widget"`

	// AccentSupported offers the SYSTEM_ACCENT instances colour.
	AccentSupported bool `yaml:"accent_supported" json:"accent_supported"`

	// CalendarAccess gates every ICS query. When false the widget shows
	// no instances.
	CalendarAccess bool `yaml:"calendar_access" json:"calendar_access"`

	// SelfEmails are the attendee addresses whose PARTSTAT=DECLINED marks
	// an instance as declined.
	SelfEmails []string `yaml:"self_emails" json:"self_emails"`

	ICS []ICSConfig `yaml:"ics" json:"ics"`

	// CalendarURL is where header and day clicks navigate. "{date}" and
	// "{millis}" are replaced by the target instant.
	CalendarURL string `yaml:"calendar_url" json:"calendar_url"`

	Capture CaptureConfig `yaml:"capture" json:"capture"`

	// BasicAuth, if non-nil, protects every endpoint except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

const (
	defaultListen      = "127.0.0.1:8080"
	defaultRefreshCron = "*/15 * * * *"
	defaultDatabase    = "mincal.db"
	defaultCacheDir    = "cache"
	defaultWidth       = 250
	defaultHeight      = 200
	defaultOrientation = "portrait"
	defaultCaptureOut  = "widget.png"
	defaultTimeout     = "30s"
)

func DefaultConfig() *Config {
	c := &Config{
		Locale:         "en",
		LogLevel:       "info",
		CalendarAccess: true,
	}
	c.Normalize()
	return c
}

// Normalize fills zero values with defaults so older or partial files
// still load.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefreshCron
	}
	if c.Database == "" {
		c.Database = defaultDatabase
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.Widget.Width == 0 && c.Widget.Height == 0 {
		c.Widget.Width = defaultWidth
		c.Widget.Height = defaultHeight
	}
	switch strings.ToLower(c.Widget.Orientation) {
	case "portrait", "landscape":
		c.Widget.Orientation = strings.ToLower(c.Widget.Orientation)
	default:
		c.Widget.Orientation = defaultOrientation
	}
	if c.Capture.Output == "" {
		c.Capture.Output = defaultCaptureOut
	}
	if c.Capture.Scale <= 0 {
		c.Capture.Scale = 2
	}
	if _, err := time.ParseDuration(c.Capture.Timeout); err != nil {
		c.Capture.Timeout = defaultTimeout
	}
	if c.ICS == nil {
		c.ICS = []ICSConfig{}
	}
	for i := range c.ICS {
		if c.ICS[i].ID == "" {
			c.ICS[i].ID = fmt.Sprintf("ics-%d", i+1)
		}
	}
	if c.SelfEmails == nil {
		c.SelfEmails = []string{}
	}
}

// Location resolves Timezone, falling back to the host zone.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CaptureTimeout is Capture.Timeout parsed.
func (c *Config) CaptureTimeout() time.Duration {
	d, err := time.ParseDuration(c.Capture.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// EnabledICS lists the sources the widget should query.
func (c *Config) EnabledICS() []ICSConfig {
	var out []ICSConfig
	for _, s := range c.ICS {
		if s.Enabled && s.URL != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate reports settings that Normalize cannot repair.
func (c *Config) Validate() error {
	var errs []error
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
		}
	}
	seen := map[string]bool{}
	for _, s := range c.ICS {
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("duplicate ics id %q", s.ID))
		}
		seen[s.ID] = true
	}
	if c.BasicAuth != nil && (c.BasicAuth.Username == "" || c.BasicAuth.Password == "") {
		errs = append(errs, errors.New("basic_auth needs both username and password"))
	}
	return errors.Join(errs...)
}

// Load reads the YAML file at path. On first run the file does not exist:
// a default config is written with 0600 permissions and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Config{CalendarAccess: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes cfg atomically: temp file in the same directory, chmod 0600,
// rename over path.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".mincal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (c *Config) Save(path string) error {
	return Save(path, c)
}
