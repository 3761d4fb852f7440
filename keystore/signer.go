package keystore

import (
	"crypto/ed25519"
	"errors"
)

// Signer signs with one key loaded from a Keystore.
type Signer struct {
	id         string
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
}

// NewSigner loads the key stored under id.
func NewSigner(ks Keystore, id string) (*Signer, error) {
	privateKey, err := ks.GetPrivateKey(id)
	if err != nil {
		return nil, err
	}
	return &Signer{
		id:         id,
		privateKey: privateKey,
		publicKey:  privateKey.Public().(ed25519.PublicKey),
	}, nil
}

// KeyID returns the id the key was loaded from.
func (s *Signer) KeyID() string {
	return s.id
}

// PublicKey returns the public half of the signing key. It stays
// available after Close.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.publicKey
}

// Sign signs msg. It fails once the signer has been closed.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	if s.privateKey == nil {
		return nil, errors.New("signer is closed")
	}
	return ed25519.Sign(s.privateKey, msg), nil
}

// Close clears the private key from memory.
func (s *Signer) Close() {
	zeroize(s.privateKey)
	s.privateKey = nil
}
