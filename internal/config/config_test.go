package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Loading falls back to defaults when no config file exists
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config, got nil")
	}

	if cfg.Logging.Level == "" {
		t.Error("expected default log level, got empty")
	}

	if cfg.Paths.DataDir == "" {
		t.Error("expected default data_dir, got empty")
	}

	if cfg.Paths.DBFile == "" {
		t.Error("expected default db_file, got empty")
	}

	if cfg.Detect.ProbeTimeout != 10*time.Second {
		t.Errorf("ProbeTimeout = %v, want 10s", cfg.Detect.ProbeTimeout)
	}

	if len(cfg.Detect.ChromeChannels) != 4 {
		t.Errorf("ChromeChannels has %d entries, want 4", len(cfg.Detect.ChromeChannels))
	}
	if ch := cfg.Detect.ChromeChannels["{4EA16AC7-FD5A-47C3-875B-DBF4A2008C20}"]; ch != "canary" {
		t.Errorf("canary GUID maps to %q", ch)
	}
}

func TestExpandPath(t *testing.T) {
	homeDir, _ := os.UserHomeDir()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty path",
			input: "",
			want:  "",
		},
		{
			name:  "absolute path",
			input: "/usr/local/share",
			want:  "/usr/local/share",
		},
		{
			name:  "home expansion",
			input: "~/scans",
			want:  filepath.Join(homeDir, "scans"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := expandPath(tt.input)
			if got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExpandPathEnvVar(t *testing.T) {
	t.Setenv("BROWSERSCOUT_TEST_DIR", "/data")
	got := expandPath("$BROWSERSCOUT_TEST_DIR/scans")
	if got != "/data/scans" {
		t.Errorf("expandPath() = %q, want /data/scans", got)
	}
}
