package securestore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"dpki-lite/go-core/internal/crypto"
)

var testCost = crypto.Cost{Time: 1, MemoryKB: 64, Threads: 1}

func newTestCodec() *Codec {
	return NewCodec(crypto.New(), WithCost(testCost))
}

func TestSealOpenRoundtrip(t *testing.T) {
	c := newTestCodec()
	for _, payload := range [][]byte{{}, []byte("secret"), bytes.Repeat([]byte{0xAB}, 4096)} {
		blob, err := c.Seal(payload, "pass", nil)
		if err != nil {
			t.Fatalf("seal failed: %v", err)
		}
		plain, err := c.Open(blob, "pass", nil)
		if err != nil {
			t.Fatalf("open failed: %v", err)
		}
		if !bytes.Equal(plain, payload) {
			t.Fatalf("unexpected plaintext length %d, want %d", len(plain), len(payload))
		}
	}
}

func TestOpenWrongPassphraseFails(t *testing.T) {
	c := newTestCodec()
	blob, err := c.Seal([]byte("secret"), "pass", nil)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	plain, err := c.Open(blob, "pass2", nil)
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
	if plain != nil {
		t.Fatal("failed open must not return plaintext")
	}
}

func TestOpenBindsAssociatedData(t *testing.T) {
	c := newTestCodec()
	blob, err := c.Seal([]byte("secret"), "pass", []byte("ad-1"))
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if _, err := c.Open(blob, "pass", []byte("ad-2")); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed for different aad, got %v", err)
	}
	if _, err := c.Open(blob, "pass", []byte("ad-1")); err != nil {
		t.Fatalf("open with matching aad failed: %v", err)
	}
}

func TestOpenTamperedFailsDeterministically(t *testing.T) {
	c := newTestCodec()
	blob, err := c.Seal([]byte("secret"), "pass", nil)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	blob[len(blob)-2] ^= 0xFF
	if _, err := c.Open(blob, "pass", nil); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
	if _, err := c.Open([]byte("not msgpack at all"), "pass", nil); !errors.Is(err, ErrInvalid) || !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrInvalid wrapped in ErrDecryptionFailed, got %v", err)
	}
}

func TestSealUsesFreshSaltAndNonce(t *testing.T) {
	c := newTestCodec()
	a, err := c.Seal([]byte("secret"), "pass", nil)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	b, err := c.Seal([]byte("secret"), "pass", nil)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two seals of the same data must differ")
	}
}

func TestOpenRejectsForeignCost(t *testing.T) {
	cases := map[string]crypto.Cost{
		"weaker":   {Time: 1, MemoryKB: 8, Threads: 1},
		"stronger": {Time: 2, MemoryKB: 128, Threads: 1},
	}
	for name, cost := range cases {
		blob, err := NewCodec(crypto.New(), WithCost(cost)).Seal([]byte("secret"), "pass", nil)
		if err != nil {
			t.Fatalf("%s: seal failed: %v", name, err)
		}
		_, err = newTestCodec().Open(blob, "pass", nil)
		if !errors.Is(err, ErrDecryptionFailed) || !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrDecryptionFailed and ErrInvalid, got %v", name, err)
		}
	}
}

func TestOpenIgnoresTamperedCost(t *testing.T) {
	c := newTestCodec()
	blob, err := c.Seal([]byte("secret"), "pass", nil)
	if err != nil {
		t.Fatalf("seal failed: %v", err)
	}
	var sb sealedBlob
	if err := msgpack.Unmarshal(blob, &sb); err != nil {
		t.Fatalf("decode blob failed: %v", err)
	}
	sb.Time = 64
	sb.MemoryKB = 4 << 20
	tampered, err := msgpack.Marshal(sb)
	if err != nil {
		t.Fatalf("encode blob failed: %v", err)
	}
	if _, err := c.Open(tampered, "pass", nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid before any hashing, got %v", err)
	}
}

func TestBundleRequiresHint(t *testing.T) {
	c := newTestCodec()
	if _, err := c.NewBundle(TypeRootSeed, "  ", []byte("seed"), "pass"); !errors.Is(err, ErrMissingHint) {
		t.Fatalf("expected ErrMissingHint, got %v", err)
	}
	if _, err := c.NewBundle("Wallet", "hint", []byte("seed"), "pass"); !errors.Is(err, ErrUnknownBundleType) {
		t.Fatalf("expected ErrUnknownBundleType, got %v", err)
	}
}

func TestBundleTypeIsAuthenticated(t *testing.T) {
	c := newTestCodec()
	b, err := c.NewBundle(TypeRootSeed, "backup", []byte("seed-bytes"), "pass")
	if err != nil {
		t.Fatalf("new bundle failed: %v", err)
	}
	got, err := c.OpenBundle(b, "pass")
	if err != nil {
		t.Fatalf("open bundle failed: %v", err)
	}
	if string(got) != "seed-bytes" {
		t.Fatalf("unexpected bundle payload %q", got)
	}

	relabelled := b
	relabelled.Type = TypeDevicePinSeed
	if _, err := c.OpenBundle(relabelled, "pass"); !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("expected ErrDecryptionFailed for relabelled bundle, got %v", err)
	}
}

func TestBundleEncodeParse(t *testing.T) {
	c := newTestCodec()
	b, err := c.NewBundle(TypeKeypair, "laptop", []byte("k"), "pass")
	if err != nil {
		t.Fatalf("new bundle failed: %v", err)
	}
	raw, err := b.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	parsed, err := ParseBundle(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if parsed.Type != b.Type || parsed.Hint != b.Hint || !bytes.Equal(parsed.Data, b.Data) {
		t.Fatal("parsed bundle differs from encoded bundle")
	}
	if _, err := ParseBundle([]byte(`{"hint":"x"}`)); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
