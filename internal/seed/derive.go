package seed

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"dpki-lite/go-core/internal/crypto"
	"dpki-lite/go-core/internal/identity"
	"dpki-lite/go-core/internal/securestore"
)

const (
	contextDevice      = "DEVICE"
	contextApplication = "APPLIC"

	deviceSeedBytes      = 16
	applicationSeedBytes = 32
	minPinLength         = 4
)

// ParseIndex parses a textual derivation index. Anything that is not a
// base-10 integer >= 1 is ErrInvalidIndex.
func ParseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIndex, s)
	}
	if err := checkIndex(n); err != nil {
		return 0, err
	}
	return n, nil
}

func checkIndex(index int) error {
	if index < 1 {
		return fmt.Errorf("%w: %d must be >= 1", ErrInvalidIndex, index)
	}
	return nil
}

func checkPin(pin string) error {
	if utf8.RuneCountInString(pin) < minPinLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidPin, minPinLength)
	}
	return nil
}

func (s *Seed) require(c capability, op string) error {
	if len(s.raw) == 0 {
		return fmt.Errorf("%w: seed has been wiped", ErrInvalidArgument)
	}
	if !s.kind.can(c) {
		return fmt.Errorf("%w: %s cannot derive %s", ErrUnsupportedDerivation, s.kind, op)
	}
	return nil
}

// DeviceSeed derives the 16-byte seed of device number index from a root
// seed.
func (s *Seed) DeviceSeed(index int) (*Seed, error) {
	if err := s.require(canDeriveDevice, "DeviceSeed"); err != nil {
		return nil, err
	}
	if err := checkIndex(index); err != nil {
		return nil, err
	}
	raw, err := s.h.suite.Crypto().DeriveSubkey(deviceSeedBytes, uint64(index), contextDevice, s.raw)
	if err != nil {
		return nil, err
	}
	return s.h.child(KindDevice, raw), nil
}

// DevicePinSeed derives a DevicePinSeed. Two policies exist and are chosen by
// the parent kind:
//
//   - DeviceSeed: argon2id(pin, salt = device seed). Memory-hard; the
//     canonical path.
//   - RootSeed: SHA-256(context || root seed). Not memory-hard.
func (s *Seed) DevicePinSeed(pin string) (*Seed, error) {
	if len(s.raw) == 0 {
		return nil, fmt.Errorf("%w: seed has been wiped", ErrInvalidArgument)
	}
	switch {
	case s.kind.can(canDerivePinHashed):
		return s.hashedPinSeed(pin)
	case s.kind.can(canDerivePinDirect):
		return s.directPinSeed(pin)
	}
	return nil, fmt.Errorf("%w: %s cannot derive DevicePinSeed", ErrUnsupportedDerivation, s.kind)
}

func (s *Seed) hashedPinSeed(pin string) (*Seed, error) {
	if err := checkPin(pin); err != nil {
		return nil, err
	}
	if len(s.raw) != crypto.SaltBytes {
		return nil, fmt.Errorf("%w: device seed must be %d bytes to salt a pin", ErrInvalidArgument, crypto.SaltBytes)
	}
	raw, err := s.h.suite.Crypto().PasswordHash([]byte(pin), s.raw, s.h.pinCost)
	if err != nil {
		return nil, err
	}
	return s.h.child(KindDevicePin, raw), nil
}

func (s *Seed) directPinSeed(context string) (*Seed, error) {
	if err := checkPin(context); err != nil {
		return nil, err
	}
	sum := s.h.suite.Crypto().Hash256([]byte(context), s.raw)
	raw := append([]byte(nil), sum[:]...)
	crypto.Wipe(sum[:])
	return s.h.child(KindDevicePin, raw), nil
}

// ApplicationKeypair derives the keypair of application number index.
func (s *Seed) ApplicationKeypair(index int) (*identity.Keypair, error) {
	if err := s.require(canDeriveApplication, "ApplicationKeypair"); err != nil {
		return nil, err
	}
	if err := checkIndex(index); err != nil {
		return nil, err
	}
	appSeed, err := s.h.suite.Crypto().DeriveSubkey(applicationSeedBytes, uint64(index), contextApplication, s.raw)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(appSeed)

	kp, err := s.h.suite.FromSeed(appSeed)
	if err != nil {
		return nil, err
	}
	s.h.suite.Metrics().ObserveDerivation(securestore.TypeKeypair)
	s.h.logger.Debug("application keypair derived", "identity", kp.ID())
	return kp, nil
}
