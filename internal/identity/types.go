package identity

import "errors"

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrMalformedIdentity = errors.New("malformed identity")
	ErrNoPrivateKey      = errors.New("no private key")
	ErrNotARecipient     = errors.New("could not decrypt - not a recipient")
	ErrCorruptEnvelope   = errors.New("corrupt envelope")
)

const (
	SignPublicKeySize  = 32
	SignPrivateKeySize = 64
	EncPublicKeySize   = 32
	EncPrivateKeySize  = 32
	SignatureSize      = 64
	SessionSecretSize  = 32
)
