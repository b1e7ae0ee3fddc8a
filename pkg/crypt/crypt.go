// Package crypt derives a symmetric key from the master password and
// seals/opens the serialized vault with an AEAD cipher. The derived key
// lives only in memory; it is never persisted.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 16

	// NonceSize is the standard GCM nonce length in bytes.
	NonceSize = 12

	// Iterations is the PBKDF2 iteration count.
	Iterations = 100_000
)

// ErrAuthentication is returned when an AEAD tag check fails: wrong
// master password, or corrupted/tampered storage. Decryption fails
// closed and never returns partial plaintext.
var ErrAuthentication = errors.New("authentication failed: wrong master password or corrupted vault")

// DeriveKey stretches the master password into a fixed-length symmetric
// key with PBKDF2-HMAC-SHA256. The same password and salt always yield
// the same key.
func DeriveKey(masterPassword string, salt []byte) []byte {
	return pbkdf2.Key([]byte(masterPassword), salt, Iterations, KeySize, sha256.New)
}

// NewSalt returns a fresh cryptographically random salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Box seals and opens byte blobs under one derived key.
type Box struct {
	aead cipher.AEAD
}

// NewBox builds an AES-256-GCM box around the derived key.
func NewBox(key []byte) (*Box, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d, want %d", len(key), KeySize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create gcm: %w", err)
	}
	return &Box{aead: aead}, nil
}

// Encrypt seals the plaintext under a fresh random nonce. A new nonce is
// generated on every call so the key is never paired with a repeated
// nonce.
func (b *Box) Encrypt(plaintext []byte) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, b.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext = b.aead.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

// Decrypt opens the ciphertext, verifying the authentication tag. Any
// mismatch yields ErrAuthentication.
func (b *Box) Decrypt(nonce, ciphertext []byte) ([]byte, error) {
	if len(nonce) != b.aead.NonceSize() {
		return nil, ErrAuthentication
	}
	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
