package identity

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"io"
	"log/slog"

	"dpki-lite/go-core/internal/crypto"
	"dpki-lite/go-core/internal/metrics"
	"dpki-lite/go-core/internal/securestore"
)

// Suite binds the primitives, bundle codec, metrics and logger that every
// keypair built from it shares. It is immutable after NewSuite.
type Suite struct {
	crypto  *crypto.Provider
	codec   *securestore.Codec
	metrics *metrics.Metrics
	logger  *slog.Logger
}

type Option func(*Suite)

func WithProvider(p *crypto.Provider) Option {
	return func(s *Suite) { s.crypto = p }
}

func WithCodec(c *securestore.Codec) Option {
	return func(s *Suite) { s.codec = c }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Suite) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Suite) { s.logger = l }
}

func NewSuite(opts ...Option) *Suite {
	s := &Suite{}
	for _, opt := range opts {
		opt(s)
	}
	if s.crypto == nil {
		s.crypto = crypto.Default()
	}
	if s.codec == nil {
		s.codec = securestore.NewCodec(s.crypto, securestore.WithMetrics(s.metrics))
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

func (s *Suite) Crypto() *crypto.Provider { return s.crypto }

func (s *Suite) Codec() *securestore.Codec { return s.codec }

func (s *Suite) Metrics() *metrics.Metrics { return s.metrics }

func (s *Suite) Logger() *slog.Logger { return s.logger }

// FromSeed derives a full keypair from a 32-byte seed. The signing and key
// exchange halves come from two independent deterministic expansions of the
// same seed.
func (s *Suite) FromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != crypto.SeedBytes {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", ErrInvalidArgument, crypto.SeedBytes, len(seed))
	}
	signPub, signPriv, err := s.crypto.SignKeypairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	encPub, encPriv, err := s.crypto.KXKeypairFromSeed(seed)
	if err != nil {
		crypto.Wipe(signPriv)
		return nil, err
	}
	return s.newKeypair(signPub, encPub, signPriv, encPriv)
}

// FromID returns a public-only keypair for a peer's identity string.
func (s *Suite) FromID(id string) (*PublicKeypair, error) {
	signPub, encPub, err := DecodeID(id)
	if err != nil {
		return nil, err
	}
	return &PublicKeypair{suite: s, id: id, signPub: signPub, encPub: encPub}, nil
}

// NewPublicKeypair assembles a public-only keypair from raw public keys.
func (s *Suite) NewPublicKeypair(signPub, encPub []byte) (*PublicKeypair, error) {
	id, err := EncodeID(signPub, encPub)
	if err != nil {
		return nil, err
	}
	return &PublicKeypair{
		suite:   s,
		id:      id,
		signPub: append([]byte(nil), signPub...),
		encPub:  append([]byte(nil), encPub...),
	}, nil
}

// NewKeypair assembles a full keypair from raw components. Private halves
// must match their public halves.
func (s *Suite) NewKeypair(signPub, encPub, signPriv, encPriv []byte) (*Keypair, error) {
	if len(signPub) != SignPublicKeySize || len(encPub) != EncPublicKeySize {
		return nil, fmt.Errorf("%w: public key sizes %d/%d", ErrInvalidArgument, len(signPub), len(encPub))
	}
	if len(signPriv) == 0 || len(encPriv) == 0 {
		return nil, ErrNoPrivateKey
	}
	if len(signPriv) != SignPrivateKeySize || len(encPriv) != EncPrivateKeySize {
		return nil, fmt.Errorf("%w: private key sizes %d/%d", ErrInvalidArgument, len(signPriv), len(encPriv))
	}
	if !ed25519.PublicKey(signPub).Equal(ed25519.PrivateKey(signPriv).Public()) {
		return nil, fmt.Errorf("%w: signing private key does not match public key", ErrInvalidArgument)
	}
	derived, err := s.crypto.KXPublicKey(encPriv)
	if err != nil || !bytes.Equal(derived, encPub) {
		return nil, fmt.Errorf("%w: encryption private key does not match public key", ErrInvalidArgument)
	}
	return s.newKeypair(
		append([]byte(nil), signPub...),
		append([]byte(nil), encPub...),
		append([]byte(nil), signPriv...),
		append([]byte(nil), encPriv...),
	)
}

// Verify checks a detached signature against the signer's identity string.
// A malformed identity verifies false.
func (s *Suite) Verify(signerID string, signature, data []byte) bool {
	signPub, _, err := DecodeID(signerID)
	if err != nil {
		return false
	}
	return s.crypto.SignVerify(signature, data, signPub)
}

func (s *Suite) newKeypair(signPub, encPub, signPriv, encPriv []byte) (*Keypair, error) {
	id, err := EncodeID(signPub, encPub)
	if err != nil {
		return nil, err
	}
	return &Keypair{
		PublicKeypair: PublicKeypair{suite: s, id: id, signPub: signPub, encPub: encPub},
		signPriv:      signPriv,
		encPriv:       encPriv,
	}, nil
}
