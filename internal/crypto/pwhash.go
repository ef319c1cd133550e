package crypto

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

const (
	SaltBytes = 16

	maxArgonTime     = 64
	maxArgonMemoryKB = 4 * 1024 * 1024
)

// Cost is an argon2id parameter set.
type Cost struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

var (
	// SensitiveCost matches libsodium's OPSLIMIT/MEMLIMIT_SENSITIVE.
	SensitiveCost = Cost{Time: 4, MemoryKB: 1024 * 1024, Threads: 1}
	// InteractiveCost matches libsodium's OPSLIMIT/MEMLIMIT_INTERACTIVE.
	InteractiveCost = Cost{Time: 2, MemoryKB: 64 * 1024, Threads: 1}
)

// Validate rejects parameter sets argon2 cannot run and values large enough
// to exhaust memory when read from an untrusted blob.
func (c Cost) Validate() error {
	switch {
	case c.Threads == 0:
		return fmt.Errorf("%w: threads must be >= 1", ErrInvalidCost)
	case c.Time == 0 || c.Time > maxArgonTime:
		return fmt.Errorf("%w: time %d", ErrInvalidCost, c.Time)
	case c.MemoryKB < 8*uint32(c.Threads) || c.MemoryKB > maxArgonMemoryKB:
		return fmt.Errorf("%w: memory %d KiB", ErrInvalidCost, c.MemoryKB)
	}
	return nil
}

// PasswordHash derives a 32-byte key from passphrase with argon2id.
func (p *Provider) PasswordHash(passphrase, salt []byte, cost Cost) ([]byte, error) {
	if len(salt) != SaltBytes {
		return nil, ErrInvalidSaltSize
	}
	if err := cost.Validate(); err != nil {
		return nil, err
	}
	return argon2.IDKey(passphrase, salt, cost.Time, cost.MemoryKB, cost.Threads, KeyBytes), nil
}
