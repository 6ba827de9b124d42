package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != defaultListen || cfg.RefreshCron != "*/15 * * * *" || !cfg.CalendarAccess {
		t.Errorf("default config = %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
timezone: Europe/Madrid
widget:
  orientation: LANDSCAPE
ics:
  - url: https://example.com/a.ics
    enabled: true
  - id: off
    url: https://example.com/b.ics
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Widget.Orientation != "landscape" || cfg.Widget.Width != defaultWidth {
		t.Errorf("widget = %+v", cfg.Widget)
	}
	if cfg.ICS[0].ID != "ics-1" {
		t.Errorf("generated id = %q", cfg.ICS[0].ID)
	}
	if !cfg.CalendarAccess {
		t.Error("calendar access should default to true when absent")
	}
	enabled := cfg.EnabledICS()
	if len(enabled) != 1 || enabled[0].URL != "https://example.com/a.ics" {
		t.Errorf("EnabledICS = %+v", enabled)
	}
	if cfg.CaptureTimeout() != 30*time.Second {
		t.Errorf("CaptureTimeout = %s", cfg.CaptureTimeout())
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"bad yaml", "listen: [", "parse"},
		{"bad timezone", "timezone: Mars/Olympus", "timezone"},
		{"duplicate ids", "ics:\n  - id: a\n  - id: a\n", "duplicate ics id"},
		{"half basic auth", "basic_auth:\n  username: me\n", "basic_auth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.data), 0o600); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Locale = "ca-ES"
	cfg.SelfEmails = []string{"me@example.com"}
	cfg.ICS = append(cfg.ICS, ICSConfig{ID: "work", Name: "Work", URL: "https://example.com/w.ics", Enabled: true})

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Locale != "ca-ES" || len(got.ICS) != 1 || got.ICS[0].Name != "Work" || got.SelfEmails[0] != "me@example.com" {
		t.Errorf("round trip = %+v", got)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".mincal-config-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Location() != time.Local {
		t.Error("empty timezone should be time.Local")
	}
	cfg.Timezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Errorf("Location = %s", cfg.Location())
	}
}
