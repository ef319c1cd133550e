package identity

import (
	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"
)

const fingerprintPrefix = "dpk1"

// Fingerprint returns a short display handle for an identity string. It is
// not reversible and not a substitute for the identity itself.
func Fingerprint(id string) (string, error) {
	signPub, encPub, err := DecodeID(id)
	if err != nil {
		return "", err
	}
	h, err := blake2b.New(16, nil)
	if err != nil {
		return "", err
	}
	h.Write(signPub)
	h.Write(encPub)
	return fingerprintPrefix + base58.Encode(h.Sum(nil)), nil
}
