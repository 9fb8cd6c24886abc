// Package crypto provides cryptographic utilities
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// CryptoError marks an authenticated-encryption failure. A corrupted or
// tampered blob must surface as a CryptoError, never as a garbage field
// map.
type CryptoError struct {
	Op  string
	Err error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("crypto %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("crypto %s failed", e.Op)
}

func (e *CryptoError) Unwrap() error { return e.Err }

// Box seals and opens credential field maps with a single process-wide
// symmetric key. The key is read-only after startup; there is no
// rotation path.
type Box struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewBox builds a Box from a hex-encoded 256-bit master key. A missing
// or malformed key is a configuration error and must abort startup.
func NewBox(masterKeyHex string) (*Box, error) {
	if masterKeyHex == "" {
		return nil, fmt.Errorf("master key is not configured")
	}

	key, err := hex.DecodeString(masterKeyHex)
	if err != nil {
		return nil, fmt.Errorf("master key is not valid hex: %w", err)
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to build cipher: %w", err)
	}

	return &Box{aead: aead}, nil
}

// Encrypt serializes the field map as canonical JSON and seals it. The
// nonce is prepended to the returned blob.
func (b *Box) Encrypt(fields map[string]any) ([]byte, error) {
	plaintext, err := json.Marshal(fields)
	if err != nil {
		return nil, &CryptoError{Op: "encrypt", Err: err}
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, &CryptoError{Op: "encrypt", Err: err}
	}

	return b.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a blob produced by Encrypt and restores the field map.
// Round-trip holds for every JSON-serializable map; any tampering fails
// authentication.
func (b *Box) Decrypt(blob []byte) (map[string]any, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, &CryptoError{Op: "decrypt", Err: fmt.Errorf("blob too short: %d bytes", len(blob))}
	}

	nonce, ciphertext := blob[:chacha20poly1305.NonceSizeX], blob[chacha20poly1305.NonceSizeX:]

	plaintext, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, &CryptoError{Op: "decrypt", Err: err}
	}

	var fields map[string]any
	if err := json.Unmarshal(plaintext, &fields); err != nil {
		return nil, &CryptoError{Op: "decrypt", Err: err}
	}

	return fields, nil
}
