package identity

import (
	"bytes"
	"fmt"

	"dpki-lite/go-core/internal/crypto"
)

// PublicKeypair is the public half of an identity: it can verify signatures
// but cannot sign, encrypt or decrypt.
type PublicKeypair struct {
	suite   *Suite
	id      string
	signPub []byte
	encPub  []byte
}

func (p *PublicKeypair) ID() string { return p.id }

func (p *PublicKeypair) SignPublicKey() []byte { return append([]byte(nil), p.signPub...) }

func (p *PublicKeypair) EncPublicKey() []byte { return append([]byte(nil), p.encPub...) }

func (p *PublicKeypair) Fingerprint() string {
	fp, err := Fingerprint(p.id)
	if err != nil {
		return ""
	}
	return fp
}

// Verify checks a detached signature made by this identity. It never
// returns an error: anything that does not verify is false.
func (p *PublicKeypair) Verify(signature, data []byte) bool {
	return p.suite.crypto.SignVerify(signature, data, p.signPub)
}

// Keypair holds both private halves in addition to the public identity.
type Keypair struct {
	PublicKeypair
	signPriv []byte
	encPriv  []byte
}

// Public returns a public-only copy of k.
func (k *Keypair) Public() *PublicKeypair {
	return &PublicKeypair{
		suite:   k.suite,
		id:      k.id,
		signPub: k.SignPublicKey(),
		encPub:  k.EncPublicKey(),
	}
}

func (k *Keypair) Sign(data []byte) ([]byte, error) {
	if len(k.signPriv) == 0 {
		return nil, ErrNoPrivateKey
	}
	return k.suite.crypto.SignDetached(data, k.signPriv)
}

// Equal reports whether k and other hold the same identity and private keys.
func (k *Keypair) Equal(other *Keypair) bool {
	if k == nil || other == nil {
		return k == other
	}
	return k.id == other.id &&
		bytes.Equal(k.signPriv, other.signPriv) &&
		bytes.Equal(k.encPriv, other.encPriv)
}

// Wipe zeroes the private halves. The keypair is unusable afterwards.
func (k *Keypair) Wipe() {
	crypto.Wipe(k.signPriv)
	crypto.Wipe(k.encPriv)
	k.signPriv = nil
	k.encPriv = nil
}

func (k *Keypair) String() string {
	return fmt.Sprintf("Keypair(%s)", k.Fingerprint())
}
