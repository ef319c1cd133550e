package identity

import (
	"fmt"

	"dpki-lite/go-core/internal/crypto"
	"dpki-lite/go-core/internal/securestore"

	"github.com/vmihailenco/msgpack/v5"
)

// Bundle seals both key pairs under passphrase as a "Keypair" bundle. The
// payload is the msgpack array [signPub, encPub, signPriv, encPriv].
func (k *Keypair) Bundle(passphrase, hint string) (securestore.Bundle, error) {
	if len(k.signPriv) == 0 || len(k.encPriv) == 0 {
		return securestore.Bundle{}, ErrNoPrivateKey
	}
	payload, err := msgpack.Marshal([][]byte{k.signPub, k.encPub, k.signPriv, k.encPriv})
	if err != nil {
		return securestore.Bundle{}, err
	}
	defer crypto.Wipe(payload)
	return k.suite.codec.NewBundle(securestore.TypeKeypair, hint, payload, passphrase)
}

// FromBundle restores a keypair sealed by Keypair.Bundle.
func (s *Suite) FromBundle(b securestore.Bundle, passphrase string) (*Keypair, error) {
	if b.Type != securestore.TypeKeypair {
		return nil, fmt.Errorf("%w: %q is not a keypair bundle", securestore.ErrUnknownBundleType, b.Type)
	}
	payload, err := s.codec.OpenBundle(b, passphrase)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(payload)

	var parts [][]byte
	if err := msgpack.Unmarshal(payload, &parts); err != nil {
		return nil, fmt.Errorf("%w: keypair payload: %v", securestore.ErrInvalid, err)
	}
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: keypair payload has %d parts", securestore.ErrInvalid, len(parts))
	}
	kp, err := s.NewKeypair(parts[0], parts[1], parts[2], parts[3])
	for _, p := range parts[2:] {
		crypto.Wipe(p)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("keypair restored from bundle", "identity", kp.ID(), "hint_len", len(b.Hint))
	return kp, nil
}
