package crypto

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	ErrInvalidSeedSize  = errors.New("invalid seed size")
	ErrInvalidKeySize   = errors.New("invalid key size")
	ErrInvalidNonceSize = errors.New("invalid nonce size")
	ErrInvalidSaltSize  = errors.New("invalid salt size")
	ErrInvalidContext   = errors.New("invalid kdf context")
	ErrInvalidCost      = errors.New("invalid password hash cost")
	ErrWeakPeerKey      = errors.New("weak peer key")
	ErrAuthFailed       = errors.New("authenticated decryption failed")
)

// Provider supplies the primitive operations the identity and seed layers
// are built on. A Provider holds no mutable state and is safe for
// concurrent use.
type Provider struct {
	random io.Reader
}

type Option func(*Provider)

// WithRandom replaces the entropy source. Intended for deterministic tests.
func WithRandom(r io.Reader) Option {
	return func(p *Provider) {
		if r != nil {
			p.random = r
		}
	}
}

func New(opts ...Option) *Provider {
	p := &Provider{random: rand.Reader}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var (
	defaultOnce     sync.Once
	defaultProvider *Provider
)

// Default returns the process-wide provider backed by crypto/rand.
func Default() *Provider {
	defaultOnce.Do(func() {
		defaultProvider = New()
	})
	return defaultProvider
}

// RandomBytes returns n bytes from the provider's entropy source.
func (p *Provider) RandomBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("random bytes: negative length %d", n)
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(p.random, out); err != nil {
		return nil, fmt.Errorf("random bytes: %w", err)
	}
	return out, nil
}
