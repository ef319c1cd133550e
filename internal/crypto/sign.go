package crypto

import "crypto/ed25519"

const SeedBytes = 32

// SignKeypairFromSeed deterministically expands a 32-byte seed into an
// Ed25519 keypair.
func (p *Provider) SignKeypairFromSeed(seed []byte) (ed25519.PublicKey, ed25519.PrivateKey, error) {
	if len(seed) != SeedBytes {
		return nil, nil, ErrInvalidSeedSize
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return pub, priv, nil
}

func (p *Provider) SignDetached(msg []byte, priv ed25519.PrivateKey) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, ErrInvalidKeySize
	}
	return ed25519.Sign(priv, msg), nil
}

// SignVerify never fails loudly: malformed keys or signatures verify false.
func (p *Provider) SignVerify(sig, msg []byte, pub ed25519.PublicKey) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
