package identity

import (
	"fmt"

	"dpki-lite/go-core/internal/crypto"

	"github.com/vmihailenco/msgpack/v5"
)

// Sealed is one (nonce, ciphertext) pair of an envelope.
type Sealed struct {
	Nonce  []byte
	Cipher []byte
}

// Envelope is the decoded form of Encrypt's output: one slot per recipient
// wrapping the session secret, then the payload sealed under that secret.
// Slots carry no recipient marker.
type Envelope struct {
	Slots   []Sealed
	Payload Sealed
}

// Elements is the number of encoded byte strings, 2*(len(Slots)+1).
func (e Envelope) Elements() int {
	return 2 * (len(e.Slots) + 1)
}

func (e Envelope) Marshal() ([]byte, error) {
	parts := make([][]byte, 0, e.Elements())
	for _, s := range e.Slots {
		parts = append(parts, s.Nonce, s.Cipher)
	}
	parts = append(parts, e.Payload.Nonce, e.Payload.Cipher)
	return msgpack.Marshal(parts)
}

// ParseEnvelope decodes and structurally validates an envelope.
func ParseEnvelope(blob []byte) (Envelope, error) {
	var parts [][]byte
	if err := msgpack.Unmarshal(blob, &parts); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrCorruptEnvelope, err)
	}
	if len(parts) < 4 || len(parts)%2 != 0 {
		return Envelope{}, fmt.Errorf("%w: %d elements", ErrCorruptEnvelope, len(parts))
	}
	for i := 0; i < len(parts); i += 2 {
		if len(parts[i]) != crypto.NonceBytes {
			return Envelope{}, fmt.Errorf("%w: element %d is not a nonce", ErrCorruptEnvelope, i)
		}
	}
	env := Envelope{Slots: make([]Sealed, 0, len(parts)/2-1)}
	for i := 0; i < len(parts)-2; i += 2 {
		env.Slots = append(env.Slots, Sealed{Nonce: parts[i], Cipher: parts[i+1]})
	}
	env.Payload = Sealed{Nonce: parts[len(parts)-2], Cipher: parts[len(parts)-1]}
	return env, nil
}

// Encrypt seals plaintext so that each listed recipient can open it. A fresh
// session secret encrypts the payload; the secret is wrapped once per
// recipient under the transmit key of a key exchange between us (server)
// and that recipient (client). aad, if any, is bound into every seal.
func (k *Keypair) Encrypt(recipientIDs []string, plaintext, aad []byte) (out []byte, err error) {
	defer func() { k.suite.metrics.ObserveEnvelope("encrypt", err) }()

	if len(k.encPriv) == 0 {
		return nil, ErrNoPrivateKey
	}
	if len(recipientIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidArgument)
	}
	c := k.suite.crypto

	secret, err := c.RandomBytes(SessionSecretSize)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(secret)

	env := Envelope{Slots: make([]Sealed, 0, len(recipientIDs))}
	for _, id := range recipientIDs {
		_, recipPub, err := DecodeID(id)
		if err != nil {
			return nil, err
		}
		slot, err := k.wrapSecret(secret, recipPub, aad)
		if err != nil {
			return nil, fmt.Errorf("wrap for recipient: %w", err)
		}
		env.Slots = append(env.Slots, slot)
	}

	nonce, err := c.NewNonce()
	if err != nil {
		return nil, err
	}
	cipher, err := c.Seal(plaintext, aad, nonce, secret)
	if err != nil {
		return nil, err
	}
	env.Payload = Sealed{Nonce: nonce, Cipher: cipher}

	k.suite.logger.Debug("envelope encrypted", "recipients", len(recipientIDs), "bytes", len(plaintext))
	return env.Marshal()
}

func (k *Keypair) wrapSecret(secret, recipPub, aad []byte) (Sealed, error) {
	c := k.suite.crypto
	keys, err := c.KXSessionKeys(crypto.RoleServer, k.encPub, k.encPriv, recipPub)
	if err != nil {
		return Sealed{}, err
	}
	defer keys.Wipe()

	nonce, err := c.NewNonce()
	if err != nil {
		return Sealed{}, err
	}
	cipher, err := c.Seal(secret, aad, nonce, keys.Tx)
	if err != nil {
		return Sealed{}, err
	}
	return Sealed{Nonce: nonce, Cipher: cipher}, nil
}

// Decrypt opens an envelope produced by senderID's Encrypt. The envelope
// does not say which slot is ours, so every slot is tried with the receive
// key until one authenticates.
func (k *Keypair) Decrypt(senderID string, envelope, aad []byte) (out []byte, err error) {
	defer func() { k.suite.metrics.ObserveEnvelope("decrypt", err) }()

	if len(k.encPriv) == 0 {
		return nil, ErrNoPrivateKey
	}
	env, err := ParseEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	_, senderPub, err := DecodeID(senderID)
	if err != nil {
		return nil, err
	}
	c := k.suite.crypto

	keys, err := c.KXSessionKeys(crypto.RoleClient, k.encPub, k.encPriv, senderPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotARecipient, err)
	}
	defer keys.Wipe()

	var secret []byte
	for _, slot := range env.Slots {
		if s, err := c.Open(slot.Cipher, aad, slot.Nonce, keys.Rx); err == nil {
			secret = s
			break
		}
	}
	if secret == nil {
		return nil, ErrNotARecipient
	}
	defer crypto.Wipe(secret)
	if len(secret) != SessionSecretSize {
		return nil, fmt.Errorf("%w: session secret is %d bytes", ErrCorruptEnvelope, len(secret))
	}

	plaintext, err := c.Open(env.Payload.Cipher, aad, env.Payload.Nonce, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: payload does not authenticate", ErrCorruptEnvelope)
	}
	return plaintext, nil
}
