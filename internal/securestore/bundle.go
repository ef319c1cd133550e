package securestore

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	TypeKeypair       = "Keypair"
	TypeRootSeed      = "RootSeed"
	TypeDeviceSeed    = "DeviceSeed"
	TypeDevicePinSeed = "DevicePinSeed"
)

// Bundle is the only persisted form of any secret: a type tag used to pick
// the restoring constructor, a free-form hint for humans, and a sealed blob.
type Bundle struct {
	Type string `json:"type" yaml:"type"`
	Hint string `json:"hint" yaml:"hint"`
	Data []byte `json:"data" yaml:"data"`
}

func IsKnownType(t string) bool {
	switch t {
	case TypeKeypair, TypeRootSeed, TypeDeviceSeed, TypeDevicePinSeed:
		return true
	}
	return false
}

// NewBundle seals data and wraps it with typ and hint. The type tag is bound
// as associated data, so a bundle relabelled to another type fails to open.
func (c *Codec) NewBundle(typ, hint string, data []byte, passphrase string) (Bundle, error) {
	if strings.TrimSpace(hint) == "" {
		return Bundle{}, ErrMissingHint
	}
	if !IsKnownType(typ) {
		return Bundle{}, fmt.Errorf("%w: %q", ErrUnknownBundleType, typ)
	}
	blob, err := c.Seal(data, passphrase, []byte(typ))
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Type: typ, Hint: hint, Data: blob}, nil
}

// OpenBundle returns the secret bytes inside b.
func (c *Codec) OpenBundle(b Bundle, passphrase string) ([]byte, error) {
	if !IsKnownType(b.Type) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBundleType, b.Type)
	}
	return c.Open(b.Data, passphrase, []byte(b.Type))
}

// Encode renders b as indented JSON, the on-disk form.
func (b Bundle) Encode() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

func ParseBundle(raw []byte) (Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if b.Type == "" || len(b.Data) == 0 {
		return Bundle{}, fmt.Errorf("%w: missing type or data", ErrInvalid)
	}
	return b, nil
}
