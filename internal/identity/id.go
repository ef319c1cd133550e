package identity

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

const (
	idKeyBytes      = SignPublicKeySize + EncPublicKeySize
	idChecksumBytes = 2
	idRawBytes      = idKeyBytes + idChecksumBytes
)

var idEncoding = base64.RawURLEncoding

// EncodeID renders a public key pair as a URL-safe base64 identity string:
// signPub || encPub || checksum, where the 2-byte checksum XOR-folds the
// SHA-256 digest of the keys into 16 bits.
func EncodeID(signPub, encPub []byte) (string, error) {
	if len(signPub) != SignPublicKeySize || len(encPub) != EncPublicKeySize {
		return "", fmt.Errorf("%w: public key sizes %d/%d", ErrInvalidArgument, len(signPub), len(encPub))
	}
	raw := make([]byte, 0, idRawBytes)
	raw = append(raw, signPub...)
	raw = append(raw, encPub...)
	raw = binary.LittleEndian.AppendUint16(raw, idChecksum(raw))
	return idEncoding.EncodeToString(raw), nil
}

// DecodeID splits an identity string into its signing and encryption public
// keys. A wrong length or checksum is ErrMalformedIdentity.
func DecodeID(id string) (signPub, encPub []byte, err error) {
	raw, err := idEncoding.DecodeString(id)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedIdentity, err)
	}
	if len(raw) != idRawBytes {
		return nil, nil, fmt.Errorf("%w: decoded length %d", ErrMalformedIdentity, len(raw))
	}
	keys := raw[:idKeyBytes]
	if binary.LittleEndian.Uint16(raw[idKeyBytes:]) != idChecksum(keys) {
		return nil, nil, fmt.Errorf("%w: checksum mismatch", ErrMalformedIdentity)
	}
	signPub = append([]byte(nil), keys[:SignPublicKeySize]...)
	encPub = append([]byte(nil), keys[SignPublicKeySize:]...)
	return signPub, encPub, nil
}

func idChecksum(keys []byte) uint16 {
	sum := sha256.Sum256(keys)
	var out uint16
	for i := 0; i < len(sum); i += 2 {
		out ^= binary.LittleEndian.Uint16(sum[i:])
	}
	return out
}
