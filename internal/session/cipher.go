package session

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Cipher seals session values at rest with XChaCha20-Poly1305. A Cipher
// without a key passes values through unchanged.
type Cipher struct {
	aead cipher.AEAD
}

func NewCipher(key []byte) (*Cipher, error) {
	if len(key) == 0 {
		return &Cipher{}, nil
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("invalid session key: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Configured() bool {
	return c.aead != nil
}

func (c *Cipher) Seal(plain []byte) ([]byte, error) {
	if !c.Configured() {
		return plain, nil
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plain, nil), nil
}

func (c *Cipher) Open(sealed []byte) ([]byte, error) {
	if !c.Configured() {
		return sealed, nil
	}
	if len(sealed) < c.aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, data := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	return c.aead.Open(nil, nonce, data, nil)
}
