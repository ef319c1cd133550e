package crypto

import (
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/curve25519"
)

const KXKeyBytes = 32

// Role selects which half of the shared hash a party transmits on.
type Role int

const (
	// RoleClient is the receiving side of an envelope.
	RoleClient Role = iota
	// RoleServer is the encrypting side of an envelope.
	RoleServer
)

// SessionKeys is a directional key pair: the server's Tx equals the client's
// Rx for the same two public keys, and vice versa.
type SessionKeys struct {
	Rx []byte
	Tx []byte
}

func (k SessionKeys) Wipe() {
	Wipe(k.Rx)
	Wipe(k.Tx)
}

// KXKeypairFromSeed derives an X25519 keypair the way libsodium's
// crypto_kx_seed_keypair does: the secret is BLAKE2b-256 of the seed.
func (p *Provider) KXKeypairFromSeed(seed []byte) (pub, priv []byte, err error) {
	if len(seed) != SeedBytes {
		return nil, nil, ErrInvalidSeedSize
	}
	sk := blake2b.Sum256(seed)
	priv = append([]byte(nil), sk[:]...)
	Wipe(sk[:])
	pub, err = curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		Wipe(priv)
		return nil, nil, err
	}
	return pub, priv, nil
}

// KXSessionKeys computes rx||tx = BLAKE2b-512(q || clientPub || serverPub)
// where q is the X25519 shared point. The client takes rx as the first half,
// the server takes tx as the first half.
func (p *Provider) KXSessionKeys(role Role, ourPub, ourPriv, theirPub []byte) (SessionKeys, error) {
	if len(ourPub) != KXKeyBytes || len(ourPriv) != KXKeyBytes || len(theirPub) != KXKeyBytes {
		return SessionKeys{}, ErrInvalidKeySize
	}
	q, err := curve25519.X25519(ourPriv, theirPub)
	if err != nil {
		return SessionKeys{}, ErrWeakPeerKey
	}
	defer Wipe(q)

	clientPub, serverPub := ourPub, theirPub
	if role == RoleServer {
		clientPub, serverPub = theirPub, ourPub
	}

	h, err := blake2b.New512(nil)
	if err != nil {
		return SessionKeys{}, err
	}
	h.Write(q)
	h.Write(clientPub)
	h.Write(serverPub)
	sum := h.Sum(nil)
	defer Wipe(sum)

	first := append([]byte(nil), sum[:KXKeyBytes]...)
	second := append([]byte(nil), sum[KXKeyBytes:]...)
	if role == RoleServer {
		return SessionKeys{Rx: second, Tx: first}, nil
	}
	return SessionKeys{Rx: first, Tx: second}, nil
}

// KXPublicKey recomputes the X25519 public key for priv.
func (p *Provider) KXPublicKey(priv []byte) ([]byte, error) {
	if len(priv) != KXKeyBytes {
		return nil, ErrInvalidKeySize
	}
	return curve25519.X25519(priv, curve25519.Basepoint)
}
