// Package keystore keeps the ed25519 key that signs checksum manifests.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// ServiceName is the keyring service keys are stored under.
const ServiceName = "coreextract"

// ErrKeyNotFound is returned when no key is stored under an id.
var ErrKeyNotFound = errors.New("key not found")

// Keystore stores ed25519 private keys by id.
type Keystore interface {
	// GetPrivateKey retrieves the private key stored under id.
	GetPrivateKey(id string) (ed25519.PrivateKey, error)
	// SetPrivateKey stores privateKey under id, replacing any earlier key.
	SetPrivateKey(id string, privateKey ed25519.PrivateKey) error
	// ListKeys returns every stored key id.
	ListKeys() ([]string, error)
}

// KeyringKeystore implements Keystore on top of a keyring backend.
type KeyringKeystore struct {
	ring keyring.Keyring
}

// NewKeyringKeystore opens the OS keyring: Keychain on macOS, the Secret
// Service or kwallet on Linux, Credential Manager on Windows, falling back
// to an encrypted file store under ~/.coreextract/keys.
func NewKeyringKeystore() (*KeyringKeystore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:              ServiceName,
		KeychainTrustApplication: true,
		FileDir:                  "~/.coreextract/keys",
		FilePasswordFunc:         keyring.TerminalPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	return &KeyringKeystore{ring: ring}, nil
}

// NewMemoryKeystore creates a keystore that lives only in memory, for
// tests and dry runs.
func NewMemoryKeystore() *KeyringKeystore {
	return &KeyringKeystore{ring: keyring.NewArrayKeyring(nil)}
}

// GetPrivateKey retrieves an ed25519 private key stored as a PKCS8 PEM block.
func (k *KeyringKeystore) GetPrivateKey(id string) (ed25519.PrivateKey, error) {
	item, err := k.ring.Get(id)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key from keyring: %w", err)
	}

	block, _ := pem.Decode(item.Data)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}
	defer zeroize(block.Bytes)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	privateKey, ok := key.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("key %s is not ed25519", id)
	}
	return privateKey, nil
}

// SetPrivateKey stores an ed25519 private key as a PKCS8 PEM block.
func (k *KeyringKeystore) SetPrivateKey(id string, privateKey ed25519.PrivateKey) error {
	privateKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}
	defer zeroize(privateKeyBytes)

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privateKeyBytes,
	})

	err = k.ring.Set(keyring.Item{
		Key:         id,
		Data:        privateKeyPEM,
		Label:       ServiceName + " signing key " + id,
		Description: "ed25519 checksum manifest signing key",
	})
	if err != nil {
		return fmt.Errorf("failed to store key in keyring: %w", err)
	}

	return nil
}

// ListKeys returns all key ids stored in the keyring.
func (k *KeyringKeystore) ListKeys() ([]string, error) {
	keys, err := k.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys from keyring: %w", err)
	}
	return keys, nil
}

// Generate creates a new key, stores it under id and returns its public
// half.
func Generate(ks Keystore, id string) (ed25519.PublicKey, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	defer zeroize(privateKey)

	if err := ks.SetPrivateKey(id, privateKey); err != nil {
		return nil, err
	}
	return publicKey, nil
}
