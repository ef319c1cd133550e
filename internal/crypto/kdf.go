package crypto

import (
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

const (
	ContextBytes = 8

	minSubkeyBytes = 16
	maxSubkeyBytes = blake2b.Size
	minParentBytes = 16
	maxParentBytes = blake2b.Size
)

// DeriveSubkey is a keyed BLAKE2b PRF over (context padded to 8 bytes ||
// little-endian subkey index). Distinct contexts never share output for the
// same parent and index.
//
// Outputs are not compatible with libsodium's crypto_kdf_derive_from_key,
// which carries the index in the BLAKE2b salt and the context in the
// personalization block. Seeds derived here cannot be reproduced with
// libsodium and vice versa.
func (p *Provider) DeriveSubkey(outLen int, index uint64, context string, parent []byte) ([]byte, error) {
	if outLen < minSubkeyBytes || outLen > maxSubkeyBytes {
		return nil, ErrInvalidKeySize
	}
	if len(parent) < minParentBytes || len(parent) > maxParentBytes {
		return nil, ErrInvalidKeySize
	}
	if len(context) == 0 || len(context) > ContextBytes {
		return nil, ErrInvalidContext
	}

	var msg [ContextBytes + 8]byte
	copy(msg[:ContextBytes], context)
	binary.LittleEndian.PutUint64(msg[ContextBytes:], index)

	h, err := blake2b.New(outLen, parent)
	if err != nil {
		return nil, err
	}
	h.Write(msg[:])
	return h.Sum(nil), nil
}

// Hash256 returns SHA-256 over the concatenation of parts.
func (p *Provider) Hash256(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, part := range parts {
		h.Write(part)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
