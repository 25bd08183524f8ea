package credential

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "todo-service"

	// SigningKeyName is the keyring entry holding the token signing key.
	SigningKeyName = "token-signing-key"

	signingKeySize = 32
)

// OpenKeyring returns the system keyring, falling back to an encrypted file
// store under fileDir.
func OpenKeyring(fileDir string) (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("todo-service-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// SigningKey returns the stored token signing key, generating and storing a
// random one on first use.
func SigningKey(ring keyring.Keyring) ([]byte, error) {
	item, err := ring.Get(SigningKeyName)
	if err == nil && len(item.Data) > 0 {
		return item.Data, nil
	}
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, fmt.Errorf("getting credential %q: %w", SigningKeyName, err)
	}

	key := make([]byte, signingKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}

	err = ring.Set(keyring.Item{
		Key:         SigningKeyName,
		Data:        key,
		Label:       "todo-service token signing key",
		Description: "HMAC key for access tokens; replacing it revokes every issued token",
	})
	if err != nil {
		return nil, fmt.Errorf("setting credential %q: %w", SigningKeyName, err)
	}

	return key, nil
}

// RotateSigningKey removes the stored key so the next SigningKey call
// generates a fresh one. Outstanding tokens stop verifying after restart.
func RotateSigningKey(ring keyring.Keyring) error {
	err := ring.Remove(SigningKeyName)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", SigningKeyName, err)
	}
	return nil
}
