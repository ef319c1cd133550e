package identity

import (
	"bytes"
	"errors"
	"testing"

	"dpki-lite/go-core/internal/securestore"
)

func TestFromSeedDeterministic(t *testing.T) {
	s := newTestSuite()
	k1 := mustKeypair(t, s, 1)
	k2 := mustKeypair(t, s, 1)
	if k1.ID() != k2.ID() {
		t.Fatal("identity must be deterministic for a seed")
	}
	sig1, err := k1.Sign([]byte("msg"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	sig2, err := k2.Sign([]byte("msg"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !bytes.Equal(sig1, sig2) || len(sig1) != SignatureSize {
		t.Fatal("ed25519 signatures must be deterministic 64 bytes")
	}
	if k3 := mustKeypair(t, s, 2); k3.ID() == k1.ID() {
		t.Fatal("different seeds must give different identities")
	}
	if _, err := s.FromSeed([]byte("short")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSignVerify(t *testing.T) {
	s := newTestSuite()
	k := mustKeypair(t, s, 1)
	other := mustKeypair(t, s, 2)
	data := []byte("hello")

	sig, err := k.Sign(data)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !k.Verify(sig, data) {
		t.Fatal("own signature must verify")
	}
	if !s.Verify(k.ID(), sig, data) {
		t.Fatal("signature must verify from identity string alone")
	}
	if s.Verify(other.ID(), sig, data) {
		t.Fatal("signature must not verify against another identity")
	}
	if k.Verify(sig, []byte("hellO")) {
		t.Fatal("signature must not verify a mutated message")
	}
	mutated := append([]byte(nil), sig...)
	mutated[0] ^= 1
	if k.Verify(mutated, data) {
		t.Fatal("mutated signature must not verify")
	}
	if s.Verify("garbage", sig, data) {
		t.Fatal("malformed identity must verify false")
	}
}

func TestPublicOnlyKeypair(t *testing.T) {
	s := newTestSuite()
	k := mustKeypair(t, s, 1)
	pub, err := s.FromID(k.ID())
	if err != nil {
		t.Fatalf("from id failed: %v", err)
	}
	sig, err := k.Sign([]byte("x"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !pub.Verify(sig, []byte("x")) {
		t.Fatal("public-only keypair must verify")
	}
	if !bytes.Equal(pub.SignPublicKey(), k.Public().SignPublicKey()) || !bytes.Equal(pub.EncPublicKey(), k.EncPublicKey()) {
		t.Fatal("public keys must match")
	}
	if _, err := s.FromID("broken"); !errors.Is(err, ErrMalformedIdentity) {
		t.Fatalf("expected ErrMalformedIdentity, got %v", err)
	}
}

func TestNewPublicKeypairFromRawKeys(t *testing.T) {
	s := newTestSuite()
	k := mustKeypair(t, s, 2)
	signPub := k.SignPublicKey()
	pub, err := s.NewPublicKeypair(signPub, k.EncPublicKey())
	if err != nil {
		t.Fatalf("new public keypair failed: %v", err)
	}
	if pub.ID() != k.ID() {
		t.Fatalf("expected id %s, got %s", k.ID(), pub.ID())
	}
	signPub[0] ^= 0xff
	sig, err := k.Sign([]byte("msg"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !pub.Verify(sig, []byte("msg")) {
		t.Fatal("public keypair must not alias caller buffers")
	}
	if _, err := s.NewPublicKeypair(signPub[:31], k.EncPublicKey()); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestNewKeypairValidatesComponents(t *testing.T) {
	s := newTestSuite()
	k := mustKeypair(t, s, 1)
	other := mustKeypair(t, s, 2)

	rebuilt, err := s.NewKeypair(k.signPub, k.encPub, k.signPriv, k.encPriv)
	if err != nil {
		t.Fatalf("new keypair failed: %v", err)
	}
	if !rebuilt.Equal(k) {
		t.Fatal("rebuilt keypair must equal original")
	}
	if _, err := s.NewKeypair(k.signPub, k.encPub, nil, nil); !errors.Is(err, ErrNoPrivateKey) {
		t.Fatalf("expected ErrNoPrivateKey, got %v", err)
	}
	if _, err := s.NewKeypair(k.signPub, k.encPub, other.signPriv, k.encPriv); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for mismatched signing key, got %v", err)
	}
	if _, err := s.NewKeypair(k.signPub, k.encPub, k.signPriv, other.encPriv); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for mismatched encryption key, got %v", err)
	}
	if _, err := s.NewKeypair(k.signPub[:31], k.encPub, k.signPriv, k.encPriv); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for short public key, got %v", err)
	}
}

func TestWipeRemovesPrivateCapability(t *testing.T) {
	k := mustKeypair(t, newTestSuite(), 1)
	k.Wipe()
	if _, err := k.Sign([]byte("x")); !errors.Is(err, ErrNoPrivateKey) {
		t.Fatalf("expected ErrNoPrivateKey after wipe, got %v", err)
	}
	if _, err := k.Encrypt([]string{k.ID()}, []byte("x"), nil); !errors.Is(err, ErrNoPrivateKey) {
		t.Fatalf("expected ErrNoPrivateKey for encrypt after wipe, got %v", err)
	}
	if _, err := k.Bundle("pass", "hint"); !errors.Is(err, ErrNoPrivateKey) {
		t.Fatalf("expected ErrNoPrivateKey for bundle after wipe, got %v", err)
	}
}

func TestKeypairBundleRoundtrip(t *testing.T) {
	s := newTestSuite()
	k := mustKeypair(t, s, 1)

	b, err := k.Bundle("pass", "my laptop")
	if err != nil {
		t.Fatalf("bundle failed: %v", err)
	}
	if b.Type != securestore.TypeKeypair || b.Hint != "my laptop" {
		t.Fatalf("unexpected bundle header %q/%q", b.Type, b.Hint)
	}
	restored, err := s.FromBundle(b, "pass")
	if err != nil {
		t.Fatalf("from bundle failed: %v", err)
	}
	if !restored.Equal(k) {
		t.Fatal("restored keypair must equal original")
	}

	if _, err := s.FromBundle(b, "wrong"); !errors.Is(err, securestore.ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
	if _, err := k.Bundle("pass", ""); !errors.Is(err, securestore.ErrMissingHint) {
		t.Fatalf("expected ErrMissingHint, got %v", err)
	}
	b.Type = securestore.TypeRootSeed
	if _, err := s.FromBundle(b, "pass"); !errors.Is(err, securestore.ErrUnknownBundleType) {
		t.Fatalf("expected ErrUnknownBundleType, got %v", err)
	}
}
