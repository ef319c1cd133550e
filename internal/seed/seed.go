// Package seed derives a tree of purpose-scoped secrets from one root seed:
//
//	RootSeed ──DeviceSeed(index)────► DeviceSeed ──DevicePinSeed(pin)──► DevicePinSeed
//	    └──────DevicePinSeed(context)──────────────────────────────────► DevicePinSeed
//	DevicePinSeed ──ApplicationKeypair(index)──► identity.Keypair
//
// Every edge is deterministic and one-way. Seeds never mutate: each
// derivation returns a new value.
package seed

import (
	"errors"
	"fmt"

	"dpki-lite/go-core/internal/crypto"
	"dpki-lite/go-core/internal/securestore"
)

var (
	ErrInvalidArgument       = errors.New("invalid seed argument")
	ErrInvalidIndex          = errors.New("invalid index")
	ErrInvalidPin            = errors.New("invalid pin")
	ErrInvalidMnemonic       = errors.New("invalid mnemonic")
	ErrUnsupportedDerivation = errors.New("derivation not supported by seed kind")
)

// Kind tags a seed variant. The tag is also the bundle type.
type Kind string

const (
	KindRoot      Kind = securestore.TypeRootSeed
	KindDevice    Kind = securestore.TypeDeviceSeed
	KindDevicePin Kind = securestore.TypeDevicePinSeed
)

type capability uint8

const (
	canDeriveDevice capability = 1 << iota
	canDerivePinDirect
	canDerivePinHashed
	canDeriveApplication
)

// capabilities is the closed table of derivations each kind permits.
var capabilities = map[Kind]capability{
	KindRoot:      canDeriveDevice | canDerivePinDirect,
	KindDevice:    canDerivePinHashed,
	KindDevicePin: canDeriveApplication,
}

func (k Kind) Valid() bool {
	_, ok := capabilities[k]
	return ok
}

func (k Kind) can(c capability) bool {
	return capabilities[k]&c != 0
}

// Seed is raw entropy tagged with its place in the hierarchy.
type Seed struct {
	h    *Hierarchy
	kind Kind
	raw  []byte
}

func (s *Seed) Kind() Kind { return s.kind }

// Bytes returns a copy of the raw seed.
func (s *Seed) Bytes() []byte { return append([]byte(nil), s.raw...) }

func (s *Seed) Len() int { return len(s.raw) }

// Bundle seals the raw seed under passphrase, typed with the seed kind.
func (s *Seed) Bundle(passphrase, hint string) (securestore.Bundle, error) {
	if len(s.raw) == 0 {
		return securestore.Bundle{}, fmt.Errorf("%w: seed has been wiped", ErrInvalidArgument)
	}
	return s.h.suite.Codec().NewBundle(string(s.kind), hint, s.raw, passphrase)
}

// Wipe zeroes the raw seed. The seed is unusable afterwards.
func (s *Seed) Wipe() {
	crypto.Wipe(s.raw)
	s.raw = nil
}

func (s *Seed) String() string {
	return fmt.Sprintf("%s(%d bytes)", s.kind, len(s.raw))
}

// seedLen is the raw length each kind is created with. Device seeds are
// 16 bytes because they salt the PIN hash.
var seedLen = map[Kind]int{
	KindRoot:      32,
	KindDevice:    16,
	KindDevicePin: 32,
}
