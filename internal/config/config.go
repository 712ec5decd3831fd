package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all voice-remove environment
// variables.
const EnvPrefix = "VOICE_REMOVE_"

// Config holds all application configuration. Secrets are loaded
// exclusively from environment variables and never appear in the config
// file.
type Config struct {
	ListenAddr     string `yaml:"listen_addr"`
	ServerURL      string `yaml:"server_url"`
	DBPath         string `yaml:"db_path"`
	MicSampleRate  int    `yaml:"mic_sample_rate"`
	MicSampleRates []int  `yaml:"mic_sample_rates"`
	LogLevel       string `yaml:"log_level"`
	GoogleClientID string `yaml:"google_client_id"`

	// Secret: env var only, never serialized to YAML.
	GoogleClientSecret string `yaml:"-"`
}

func defaults() Config {
	return Config{
		ListenAddr:     "127.0.0.1:8080",
		ServerURL:      "http://127.0.0.1:5000",
		DBPath:         "data/voice-remove.db",
		MicSampleRate:  44100,
		MicSampleRates: []int{48000, 32000, 22050, 16000},
		LogLevel:       "info",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads secrets, and validates the
// result. It returns the config, any validation warnings, and an error if
// the file exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// SampleRateCandidates returns a deduplicated ordered list of sample rates
// to try: preferred rate first, then configured alternatives, then
// built-in fallbacks.
func (c *Config) SampleRateCandidates() []int {
	hardcoded := []int{44100, 48000, 32000, 22050, 16000}

	combined := make([]int, 0, 1+len(c.MicSampleRates)+len(hardcoded))
	combined = append(combined, c.MicSampleRate)
	combined = append(combined, c.MicSampleRates...)
	combined = append(combined, hardcoded...)

	seen := make(map[int]struct{}, len(combined))
	result := make([]int, 0, len(combined))
	for _, rate := range combined {
		if rate <= 0 {
			continue
		}
		if _, ok := seen[rate]; ok {
			continue
		}
		seen[rate] = struct{}{}
		result = append(result, rate)
	}
	return result
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv(EnvPrefix + "SERVER_URL"); v != "" {
		cfg.ServerURL = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "MIC_SAMPLE_RATE"); v != "" {
		if rate, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && rate > 0 {
			cfg.MicSampleRate = rate
		}
	}
	if v := os.Getenv(EnvPrefix + "MIC_SAMPLE_RATES"); v != "" {
		cfg.MicSampleRates = parseSampleRates(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "GOOGLE_CLIENT_ID"); v != "" {
		cfg.GoogleClientID = v
	}
}

func loadSecrets(cfg *Config) {
	cfg.GoogleClientSecret = os.Getenv(EnvPrefix + "GOOGLE_CLIENT_SECRET")
}

func validate(cfg *Config) []string {
	var warnings []string

	if _, err := url.ParseRequestURI(cfg.ServerURL); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid server_url %q: train and process calls will fail.", cfg.ServerURL))
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret == "" {
		warnings = append(warnings, "Google client id set without a secret, sign-in is disabled. Set "+EnvPrefix+"GOOGLE_CLIENT_SECRET.")
	}

	return warnings
}

func parseSampleRates(raw string) []int {
	parts := strings.Split(raw, ",")
	seen := make(map[int]struct{}, len(parts))
	result := make([]int, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		rate, err := strconv.Atoi(trimmed)
		if err != nil || rate <= 0 {
			continue
		}
		if _, ok := seen[rate]; ok {
			continue
		}
		seen[rate] = struct{}{}
		result = append(result, rate)
	}

	return result
}
