package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LISTEN_ADDR", "SERVER_URL", "DB_PATH",
		"MIC_SAMPLE_RATE", "MIC_SAMPLE_RATES", "LOG_LEVEL",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
	} {
		t.Setenv(EnvPrefix+key, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, warnings, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("expected default listen_addr, got %q", cfg.ListenAddr)
	}
	if cfg.ServerURL != "http://127.0.0.1:5000" {
		t.Fatalf("expected default server_url, got %q", cfg.ServerURL)
	}
	if cfg.DBPath != "data/voice-remove.db" {
		t.Fatalf("expected default db_path, got %q", cfg.DBPath)
	}
	if cfg.MicSampleRate != 44100 {
		t.Fatalf("expected default mic_sample_rate 44100, got %d", cfg.MicSampleRate)
	}
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings for defaults, got %v", warnings)
	}
}

func TestYAMLLoading(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yamlContent := `
listen_addr: 127.0.0.1:9000
server_url: http://backend:5000
db_path: /custom/journal.db
mic_sample_rate: 48000
mic_sample_rates: [44100, 32000]
log_level: debug
google_client_id: abc.apps.googleusercontent.com
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("expected yaml listen_addr, got %q", cfg.ListenAddr)
	}
	if cfg.ServerURL != "http://backend:5000" {
		t.Fatalf("expected yaml server_url, got %q", cfg.ServerURL)
	}
	if cfg.DBPath != "/custom/journal.db" {
		t.Fatalf("expected yaml db_path, got %q", cfg.DBPath)
	}
	if cfg.MicSampleRate != 48000 {
		t.Fatalf("expected yaml mic_sample_rate, got %d", cfg.MicSampleRate)
	}
	if !reflect.DeepEqual(cfg.MicSampleRates, []int{44100, 32000}) {
		t.Fatalf("expected yaml mic_sample_rates, got %v", cfg.MicSampleRates)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected yaml log_level, got %q", cfg.LogLevel)
	}
	if cfg.GoogleClientID != "abc.apps.googleusercontent.com" {
		t.Fatalf("expected yaml google_client_id, got %q", cfg.GoogleClientID)
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	yamlContent := `
server_url: http://from-yaml:5000
db_path: /from/yaml
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	clearEnv(t)
	t.Setenv(EnvPrefix+"SERVER_URL", "http://from-env:5000")
	t.Setenv(EnvPrefix+"DB_PATH", "/from/env")
	t.Setenv(EnvPrefix+"MIC_SAMPLE_RATES", "48000, 16000, 48000")

	cfg, _, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerURL != "http://from-env:5000" {
		t.Fatalf("expected env server_url to win, got %q", cfg.ServerURL)
	}
	if cfg.DBPath != "/from/env" {
		t.Fatalf("expected env db_path to win, got %q", cfg.DBPath)
	}
	if !reflect.DeepEqual(cfg.MicSampleRates, []int{48000, 16000}) {
		t.Fatalf("expected parsed deduplicated rates, got %v", cfg.MicSampleRates)
	}
}

func TestSecretFromEnvOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"GOOGLE_CLIENT_SECRET", "shhh")

	cfg, _, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.GoogleClientSecret != "shhh" {
		t.Fatalf("expected secret from env, got %q", cfg.GoogleClientSecret)
	}
}

func TestValidationWarnings(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPrefix+"SERVER_URL", "not a url")
	t.Setenv(EnvPrefix+"GOOGLE_CLIENT_ID", "abc.apps.googleusercontent.com")

	_, warnings, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var sawURL, sawSecret bool
	for _, w := range warnings {
		if strings.Contains(w, "server_url") {
			sawURL = true
		}
		if strings.Contains(w, "GOOGLE_CLIENT_SECRET") {
			sawSecret = true
		}
	}
	if !sawURL {
		t.Fatalf("expected server_url warning, got %v", warnings)
	}
	if !sawSecret {
		t.Fatalf("expected missing secret warning, got %v", warnings)
	}
}

func TestSampleRateCandidates(t *testing.T) {
	cfg := Config{MicSampleRate: 16000, MicSampleRates: []int{16000, 8000, -1}}

	got := cfg.SampleRateCandidates()
	if got[0] != 16000 {
		t.Fatalf("expected preferred rate first, got %v", got)
	}

	seen := map[int]bool{}
	for _, rate := range got {
		if rate <= 0 {
			t.Fatalf("expected positive rates only, got %v", got)
		}
		if seen[rate] {
			t.Fatalf("expected deduplicated rates, got %v", got)
		}
		seen[rate] = true
	}
}
