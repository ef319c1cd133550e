package crypto

import "golang.org/x/crypto/chacha20poly1305"

const (
	KeyBytes   = chacha20poly1305.KeySize
	NonceBytes = chacha20poly1305.NonceSizeX
)

// NewNonce returns a fresh random XChaCha20-Poly1305 nonce.
func (p *Provider) NewNonce() ([]byte, error) {
	return p.RandomBytes(NonceBytes)
}

// Seal encrypts plaintext with XChaCha20-Poly1305, binding aad.
func (p *Provider) Seal(plaintext, aad, nonce, key []byte) ([]byte, error) {
	if len(key) != KeyBytes {
		return nil, ErrInvalidKeySize
	}
	if len(nonce) != NonceBytes {
		return nil, ErrInvalidNonceSize
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, aad), nil
}

// Open reverses Seal. Any authentication failure is reported as ErrAuthFailed.
func (p *Provider) Open(ciphertext, aad, nonce, key []byte) ([]byte, error) {
	if len(key) != KeyBytes {
		return nil, ErrInvalidKeySize
	}
	if len(nonce) != NonceBytes {
		return nil, ErrInvalidNonceSize
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrAuthFailed
	}
	return plaintext, nil
}
