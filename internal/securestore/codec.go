// Package securestore turns secret bytes into portable passphrase-encrypted
// blobs and typed, hinted bundles.
//
// A blob is argon2id(passphrase, random salt) feeding XChaCha20-Poly1305
// with a random 24-byte nonce. Every blob is sealed and opened at the codec's
// fixed argon2 cost. The cost is recorded in the blob and a blob recording any
// other cost is rejected.
package securestore

import (
	"errors"
	"fmt"

	"dpki-lite/go-core/internal/crypto"
	"dpki-lite/go-core/internal/metrics"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	blobVersion = 1
	kdfArgon2id = "argon2id"
)

var (
	ErrDecryptionFailed  = errors.New("securestore decryption failed")
	ErrInvalid           = errors.New("securestore blob is invalid")
	ErrMissingHint       = errors.New("bundle hint is required")
	ErrUnknownBundleType = errors.New("unknown bundle type")
)

type sealedBlob struct {
	Version  uint8  `msgpack:"v"`
	KDF      string `msgpack:"kdf"`
	Time     uint32 `msgpack:"t"`
	MemoryKB uint32 `msgpack:"m"`
	Threads  uint8  `msgpack:"p"`
	Salt     []byte `msgpack:"salt"`
	Nonce    []byte `msgpack:"nonce"`
	Cipher   []byte `msgpack:"cipher"`
}

// Codec seals and opens blobs. It is immutable and safe for concurrent use.
type Codec struct {
	crypto  *crypto.Provider
	cost    crypto.Cost
	metrics *metrics.Metrics
}

type Option func(*Codec)

// WithCost overrides the argon2 cost used by Seal. Production code keeps
// crypto.SensitiveCost; tests lower it to keep the suite fast.
func WithCost(cost crypto.Cost) Option {
	return func(c *Codec) { c.cost = cost }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Codec) { c.metrics = m }
}

func NewCodec(p *crypto.Provider, opts ...Option) *Codec {
	if p == nil {
		p = crypto.Default()
	}
	c := &Codec{crypto: p, cost: crypto.SensitiveCost}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seal encrypts data under a key derived from passphrase, binding aad.
func (c *Codec) Seal(data []byte, passphrase string, aad []byte) (blob []byte, err error) {
	defer func() { c.metrics.ObserveBundle("seal", err) }()

	salt, err := c.crypto.RandomBytes(crypto.SaltBytes)
	if err != nil {
		return nil, err
	}
	key, err := c.crypto.PasswordHash([]byte(passphrase), salt, c.cost)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	nonce, err := c.crypto.NewNonce()
	if err != nil {
		return nil, err
	}
	ciphertext, err := c.crypto.Seal(data, aad, nonce, key)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(&sealedBlob{
		Version:  blobVersion,
		KDF:      kdfArgon2id,
		Time:     c.cost.Time,
		MemoryKB: c.cost.MemoryKB,
		Threads:  c.cost.Threads,
		Salt:     salt,
		Nonce:    nonce,
		Cipher:   ciphertext,
	})
}

// Open reverses Seal. A wrong passphrase, different aad or any tampering
// yields ErrDecryptionFailed and no plaintext.
func (c *Codec) Open(blob []byte, passphrase string, aad []byte) (data []byte, err error) {
	defer func() { c.metrics.ObserveBundle("open", err) }()

	var sb sealedBlob
	if err := msgpack.Unmarshal(blob, &sb); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrInvalid)
	}
	if sb.Version != blobVersion || sb.KDF != kdfArgon2id {
		return nil, fmt.Errorf("%w: %w: version %d kdf %q", ErrDecryptionFailed, ErrInvalid, sb.Version, sb.KDF)
	}
	if len(sb.Salt) != crypto.SaltBytes || len(sb.Nonce) != crypto.NonceBytes {
		return nil, fmt.Errorf("%w: %w: salt/nonce size", ErrDecryptionFailed, ErrInvalid)
	}
	// The stored cost is only checked, never used: a blob cannot choose how
	// much work Open does.
	cost := crypto.Cost{Time: sb.Time, MemoryKB: sb.MemoryKB, Threads: sb.Threads}
	if cost != c.cost {
		return nil, fmt.Errorf("%w: %w: cost t=%d m=%d p=%d does not match codec", ErrDecryptionFailed, ErrInvalid, cost.Time, cost.MemoryKB, cost.Threads)
	}

	key, err := c.crypto.PasswordHash([]byte(passphrase), sb.Salt, c.cost)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)

	plaintext, err := c.crypto.Open(sb.Cipher, aad, sb.Nonce, key)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}
