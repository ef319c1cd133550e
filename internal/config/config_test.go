package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromPathMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dpki.yaml")
	data := []byte(`
keystore:
  dir: /tmp/dpki-keys
log:
  level: debug
unlock:
  ratePerSecond: 0
  burst: 3
  idleTTL: 2m
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.KeystoreDir != "/tmp/dpki-keys" {
		t.Fatalf("unexpected keystore dir: %s", cfg.KeystoreDir)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.LogFormat != "text" {
		t.Fatalf("log format default should survive, got %s", cfg.LogFormat)
	}
	if cfg.UnlockRate != 0 {
		t.Fatalf("explicit zero rate should apply, got %v", cfg.UnlockRate)
	}
	if cfg.UnlockBurst != 3 || cfg.UnlockIdleTTL != 2*time.Minute {
		t.Fatalf("unexpected unlock policy: %+v", cfg)
	}
	if cfg.MetricsNamespace != "dpki" {
		t.Fatalf("unexpected metrics namespace: %s", cfg.MetricsNamespace)
	}
}

func TestLoadFromPathExplicitErrors(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("keystore: [unclosed"), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("DPKI_KEYSTORE_DIR", "/srv/keys")
	t.Setenv("DPKI_LOG_LEVEL", "info")
	t.Setenv("DPKI_LOG_FORMAT", "json")
	t.Setenv("DPKI_UNLOCK_RATE", "1.5")
	t.Setenv("DPKI_UNLOCK_BURST", "9")
	t.Setenv("DPKI_UNLOCK_IDLE_TTL", "90s")

	cfg := Default()
	Merge(&cfg, FileConfig{})
	ApplyEnvOverrides(&cfg)

	if cfg.KeystoreDir != "/srv/keys" || cfg.LogLevel != "info" || cfg.LogFormat != "json" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.UnlockRate != 1.5 {
		t.Fatalf("expected unlock rate 1.5, got %v", cfg.UnlockRate)
	}
	if cfg.UnlockBurst != 9 || cfg.UnlockIdleTTL != 90*time.Second {
		t.Fatalf("expected burst 9 and idle ttl 90s, got %d/%s", cfg.UnlockBurst, cfg.UnlockIdleTTL)
	}
}

func TestEnvOverrideIgnoresBadUnlockValues(t *testing.T) {
	t.Setenv("DPKI_UNLOCK_RATE", "fast")
	t.Setenv("DPKI_UNLOCK_BURST", "many")
	t.Setenv("DPKI_UNLOCK_IDLE_TTL", "-1m")
	cfg := Default()
	ApplyEnvOverrides(&cfg)
	def := Default()
	if cfg.UnlockRate != def.UnlockRate || cfg.UnlockBurst != def.UnlockBurst || cfg.UnlockIdleTTL != def.UnlockIdleTTL {
		t.Fatalf("bad unlock values should be ignored, got %+v", cfg)
	}
}

func TestNewLoggerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{LogLevel: "debug", LogFormat: "json"}, &buf)
	logger.Debug("unlock", "passphrase", "hunter2", "name", "root")

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("passphrase leaked into log: %s", out)
	}
	if !strings.Contains(out, `"name":"root"`) {
		t.Fatalf("expected plain attribute in log: %s", out)
	}
}

func TestNewLoggerDefaultsToWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(Config{LogLevel: "chatty"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected log output: %s", buf.String())
	}
}
