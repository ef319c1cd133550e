package privacylog

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestSanitizeAttrFingerprintsIdentities(t *testing.T) {
	attr := SanitizeAttr(slog.String("signer", "AAAAbase64url"))
	if attr.Key != "signer_fp" {
		t.Fatalf("unexpected key: %q", attr.Key)
	}
	if got := attr.Value.String(); !strings.HasPrefix(got, "fp_") {
		t.Fatalf("unexpected fingerprint value: %q", got)
	}
	if FingerprintID("same") != FingerprintID(" same ") {
		t.Fatal("fingerprint must ignore surrounding whitespace")
	}
	if got := SanitizeAttr(slog.String("kind", "RootSeed")); got.Value.String() != "RootSeed" {
		t.Fatalf("expected untouched attr, got %v", got)
	}
}

func TestSanitizingHandlerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapHandler(slog.NewJSONHandler(&buf, nil)))
	logger.Info("unlock",
		"identity", "AAAAbase64url",
		"passphrase", "hunter2",
		"pin", "1234",
		"mnemonic_words", "abandon abandon",
		"bundle", "root",
	)

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	if _, ok := payload["identity"]; ok {
		t.Fatal("identity should not be present in plain form")
	}
	if _, ok := payload["identity_fp"]; !ok {
		t.Fatal("identity_fp should be present")
	}
	for _, key := range []string{"passphrase", "pin", "mnemonic_words"} {
		if got, _ := payload[key].(string); got != redactedValue {
			t.Fatalf("expected %s redacted, got %q", key, got)
		}
	}
	if got, _ := payload["bundle"].(string); got != "root" {
		t.Fatalf("expected bundle name untouched, got %q", got)
	}
}

func TestSanitizingHandlerImplementsSlogHandlerContract(t *testing.T) {
	var buf bytes.Buffer
	h := WrapHandler(slog.NewJSONHandler(&buf, nil))
	if WrapHandler(h) != h {
		t.Fatal("wrapping twice must be a no-op")
	}
	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("expected handler enabled for info")
	}
	rec := slog.NewRecord(time.Now().UTC(), slog.LevelInfo, "msg", 0)
	rec.AddAttrs(slog.String("recipient", "AAAA"))
	if err := h.Handle(context.Background(), rec); err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !strings.Contains(buf.String(), "recipient_fp") {
		t.Fatalf("expected sanitized recipient key, got %s", buf.String())
	}

	buf.Reset()
	slog.New(h.WithAttrs([]slog.Attr{slog.String("encPriv", "x")})).Info("m")
	if strings.Contains(buf.String(), `"x"`) {
		t.Fatalf("expected private key attr redacted, got %s", buf.String())
	}
}
