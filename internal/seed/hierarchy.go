package seed

import (
	"fmt"
	"log/slog"

	"dpki-lite/go-core/internal/crypto"
	"dpki-lite/go-core/internal/identity"
	"dpki-lite/go-core/internal/securestore"
)

const rootSeedBytes = 32

// Hierarchy builds seeds and carries the policy shared by every seed it
// creates: the identity suite used for application keypairs and the argon2
// cost of the PIN derivation. The PIN cost is part of the derivation
// function, so changing it changes every DevicePinSeed.
type Hierarchy struct {
	suite   *identity.Suite
	pinCost crypto.Cost
	logger  *slog.Logger
}

type Option func(*Hierarchy)

// WithPinCost overrides the PIN hashing cost. Only tests should need this.
func WithPinCost(c crypto.Cost) Option {
	return func(h *Hierarchy) { h.pinCost = c }
}

func NewHierarchy(suite *identity.Suite, opts ...Option) *Hierarchy {
	if suite == nil {
		suite = identity.NewSuite()
	}
	h := &Hierarchy{
		suite:   suite,
		pinCost: crypto.SensitiveCost,
		logger:  suite.Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hierarchy) Suite() *identity.Suite { return h.suite }

// NewRandomRoot draws a fresh 32-byte root seed.
func (h *Hierarchy) NewRandomRoot() (*Seed, error) {
	raw, err := h.suite.Crypto().RandomBytes(rootSeedBytes)
	if err != nil {
		return nil, err
	}
	h.suite.Metrics().ObserveDerivation(string(KindRoot))
	return &Seed{h: h, kind: KindRoot, raw: raw}, nil
}

// FromBytes wraps raw bytes as a seed of the given kind: 32 bytes for root
// and PIN seeds, 16 for device seeds.
func (h *Hierarchy) FromBytes(kind Kind, raw []byte) (*Seed, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown seed kind %q", ErrInvalidArgument, kind)
	}
	if want := seedLen[kind]; len(raw) != want {
		return nil, fmt.Errorf("%w: %s must be %d bytes, got %d", ErrInvalidArgument, kind, want, len(raw))
	}
	return &Seed{h: h, kind: kind, raw: append([]byte(nil), raw...)}, nil
}

// FromBundle dispatches on the bundle type to restore the matching seed kind.
func (h *Hierarchy) FromBundle(b securestore.Bundle, passphrase string) (*Seed, error) {
	kind := Kind(b.Type)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", securestore.ErrUnknownBundleType, b.Type)
	}
	raw, err := h.suite.Codec().OpenBundle(b, passphrase)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(raw)
	s, err := h.FromBytes(kind, raw)
	if err != nil {
		return nil, err
	}
	h.logger.Debug("seed restored from bundle", "kind", kind)
	return s, nil
}

func (h *Hierarchy) child(kind Kind, raw []byte) *Seed {
	h.suite.Metrics().ObserveDerivation(string(kind))
	h.logger.Debug("seed derived", "kind", kind)
	return &Seed{h: h, kind: kind, raw: raw}
}
