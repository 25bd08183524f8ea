package credential

import (
	"bytes"
	"testing"

	"github.com/99designs/keyring"
)

func TestSigningKeyGeneratedOnce(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)

	first, err := SigningKey(ring)
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	if len(first) != signingKeySize {
		t.Fatalf("expected %d byte key, got %d", signingKeySize, len(first))
	}

	second, err := SigningKey(ring)
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("expected stored key to be reused")
	}
}

func TestSigningKeyUsesExistingItem(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: SigningKeyName, Data: []byte("preset")}})

	key, err := SigningKey(ring)
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	if string(key) != "preset" {
		t.Fatalf("expected preset key, got %q", key)
	}
}

func TestRotateSigningKey(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)

	if err := RotateSigningKey(ring); err != nil {
		t.Fatalf("rotate empty ring: %v", err)
	}

	first, err := SigningKey(ring)
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	if err := RotateSigningKey(ring); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	second, err := SigningKey(ring)
	if err != nil {
		t.Fatalf("signing key: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatal("expected a new key after rotation")
	}
}
