package seed

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// Mnemonic encodes the raw seed as a BIP-39 phrase: 12 words for 16 bytes,
// 24 words for 32 bytes.
func (s *Seed) Mnemonic() (string, error) {
	if len(s.raw) == 0 {
		return "", fmt.Errorf("%w: seed has been wiped", ErrInvalidArgument)
	}
	return bip39.NewMnemonic(s.raw)
}

// FromMnemonic decodes a 12 or 24 word BIP-39 phrase back into the seed
// bytes it encodes. The phrase is the entropy itself, not a PBKDF2 input.
func (h *Hierarchy) FromMnemonic(kind Kind, mnemonic string) (*Seed, error) {
	raw, err := entropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return h.FromBytes(kind, raw)
}

func entropyFromMnemonic(mnemonic string) ([]byte, error) {
	words := strings.Fields(mnemonic)
	if len(words) != 12 && len(words) != 24 {
		return nil, fmt.Errorf("%w: expected 12 or 24 words, got %d", ErrInvalidMnemonic, len(words))
	}
	normalized := strings.ToLower(strings.Join(words, " "))
	if !bip39.IsMnemonicValid(normalized) {
		return nil, ErrInvalidMnemonic
	}
	entropy, err := bip39.EntropyFromMnemonic(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	// Entropy with leading zero bytes can come back short.
	want := len(words) / 3 * 4
	if len(entropy) < want {
		padded := make([]byte, want)
		copy(padded[want-len(entropy):], entropy)
		entropy = padded
	}
	return entropy, nil
}
