package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boxscan.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `{
		"report_url": "https://collector.example.com/api/boxes",
		"report_timeout": "5s",
		"listen": ":9999",
		"db_path": "/tmp/test.db",
		"sim_box_width": 0.5,
		"sim_box_height": 0.25,
		"sim_box_length": 1.0,
		"sim_noise_sigma": 0.02,
		"sim_refine_interval": "100ms",
		"sim_seed": 7
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.GetReportURL(); got != "https://collector.example.com/api/boxes" {
		t.Errorf("GetReportURL() = %q", got)
	}
	if got := cfg.GetReportTimeout(); got != 5*time.Second {
		t.Errorf("GetReportTimeout() = %v", got)
	}
	if got := cfg.GetListen(); got != ":9999" {
		t.Errorf("GetListen() = %q", got)
	}
	if got := cfg.GetDBPath(); got != "/tmp/test.db" {
		t.Errorf("GetDBPath() = %q", got)
	}
	if got := cfg.GetSimBoxWidth(); got != 0.5 {
		t.Errorf("GetSimBoxWidth() = %v", got)
	}
	if got := cfg.GetSimRefineInterval(); got != 100*time.Millisecond {
		t.Errorf("GetSimRefineInterval() = %v", got)
	}
	if got := cfg.GetSimSeed(); got != 7 {
		t.Errorf("GetSimSeed() = %v", got)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"listen": ":7070"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.GetListen(); got != ":7070" {
		t.Errorf("GetListen() = %q", got)
	}
	if got := cfg.GetReportTimeout(); got != 10*time.Second {
		t.Errorf("GetReportTimeout() default = %v", got)
	}
	if got := cfg.GetSimBoxLength(); got != 0.45 {
		t.Errorf("GetSimBoxLength() default = %v", got)
	}
	if got := cfg.GetSimSeed(); got != 0 {
		t.Errorf("GetSimSeed() default = %v", got)
	}
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()

	if got := cfg.GetReportURL(); got == "" {
		t.Error("GetReportURL() default should not be empty")
	}
	if got := cfg.GetDBPath(); got != "boxscan.db" {
		t.Errorf("GetDBPath() default = %q", got)
	}
	if got := cfg.GetSimNoiseSigma(); got != 0.01 {
		t.Errorf("GetSimNoiseSigma() default = %v", got)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxscan.yaml")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() should reject non-.json files")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load() should fail on a missing file")
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"relative report url", `{"report_url": "/api/boxes"}`},
		{"bad report timeout", `{"report_timeout": "soon"}`},
		{"bad refine interval", `{"sim_refine_interval": "fast"}`},
		{"zero box dimension", `{"sim_box_width": 0}`},
		{"negative noise", `{"sim_noise_sigma": -0.1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			if _, err := Load(path); err == nil {
				t.Errorf("Load(%s) should have failed validation", tc.contents)
			}
		})
	}
}
