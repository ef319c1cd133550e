// Package config loads the CLI configuration from YAML with DPKI_*
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	KeystoreDir      string
	LogLevel         string
	LogFormat        string
	UnlockRate       float64
	UnlockBurst      int
	UnlockIdleTTL    time.Duration
	MetricsNamespace string
}

// FileConfig mirrors the YAML layout. Zero or nil fields leave defaults alone.
type FileConfig struct {
	Keystore struct {
		Dir string `yaml:"dir"`
	} `yaml:"keystore"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Unlock struct {
		RatePerSecond *float64      `yaml:"ratePerSecond"`
		Burst         *int          `yaml:"burst"`
		IdleTTL       time.Duration `yaml:"idleTTL"`
	} `yaml:"unlock"`
	Metrics struct {
		Namespace string `yaml:"namespace"`
	} `yaml:"metrics"`
}

func Default() Config {
	dir := ".dpki"
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dir = filepath.Join(home, ".dpki", "keys")
	}
	return Config{
		KeystoreDir:      dir,
		LogLevel:         "warn",
		LogFormat:        "text",
		UnlockRate:       0.2,
		UnlockBurst:      5,
		UnlockIdleTTL:    15 * time.Minute,
		MetricsNamespace: "dpki",
	}
}

// LoadFromPath reads configPath, or the first readable default candidate
// when configPath is empty. A missing default file is not an error; a
// missing or malformed explicit file is.
func LoadFromPath(configPath string) (Config, error) {
	cfg := Default()

	candidates := make([]string, 0, 2)
	explicit := strings.TrimSpace(configPath) != ""
	if explicit {
		candidates = append(candidates, configPath)
	} else {
		candidates = append(candidates, "dpki.yaml", "configs/dpki.yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			candidates = append(candidates, filepath.Join(dir, "dpki", "config.yaml"))
		}
	}

	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			if explicit {
				return Config{}, fmt.Errorf("read config %s: %w", path, err)
			}
			continue
		}
		var parsed FileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		Merge(&cfg, parsed)
		break
	}

	ApplyEnvOverrides(&cfg)
	return cfg, nil
}

func Merge(dst *Config, src FileConfig) {
	if v := strings.TrimSpace(src.Keystore.Dir); v != "" {
		dst.KeystoreDir = expandHome(v)
	}
	if v := strings.TrimSpace(src.Log.Level); v != "" {
		dst.LogLevel = v
	}
	if v := strings.TrimSpace(src.Log.Format); v != "" {
		dst.LogFormat = v
	}
	if src.Unlock.RatePerSecond != nil {
		dst.UnlockRate = *src.Unlock.RatePerSecond
	}
	if src.Unlock.Burst != nil {
		dst.UnlockBurst = *src.Unlock.Burst
	}
	if src.Unlock.IdleTTL != 0 {
		dst.UnlockIdleTTL = src.Unlock.IdleTTL
	}
	if v := strings.TrimSpace(src.Metrics.Namespace); v != "" {
		dst.MetricsNamespace = v
	}
}

// ApplyEnvOverrides applies DPKI_KEYSTORE_DIR, DPKI_LOG_LEVEL,
// DPKI_LOG_FORMAT, DPKI_UNLOCK_RATE, DPKI_UNLOCK_BURST and
// DPKI_UNLOCK_IDLE_TTL. Unparseable values are ignored.
func ApplyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("DPKI_KEYSTORE_DIR")); v != "" {
		cfg.KeystoreDir = expandHome(v)
	}
	if v := strings.TrimSpace(os.Getenv("DPKI_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv("DPKI_LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}
	if raw := strings.TrimSpace(os.Getenv("DPKI_UNLOCK_RATE")); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.UnlockRate = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("DPKI_UNLOCK_BURST")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			cfg.UnlockBurst = v
		}
	}
	if raw := strings.TrimSpace(os.Getenv("DPKI_UNLOCK_IDLE_TTL")); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil && v > 0 {
			cfg.UnlockIdleTTL = v
		}
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
