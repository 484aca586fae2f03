// Package crypto implements the field-encryption envelope the business API
// stores PII with: base64( IV(12) || tag(16) || ciphertext ), AES-256-GCM with
// a fresh random IV per call.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	minKeyLength = 32
	ivLength     = 12
	tagLength    = 16
)

var (
	ErrInvalidKey        = errors.New("encryption key must be at least 32 bytes")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

type Encryptor struct {
	aead cipher.AEAD
}

func NewEncryptor(key []byte) (*Encryptor, error) {
	if len(key) < minKeyLength {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key[:minKeyLength])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext into the envelope. Empty input passes through
// unencrypted, matching how optional fields are stored.
func (e *Encryptor) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	iv := make([]byte, ivLength)
	if _, err := rand.Read(iv); err != nil {
		return "", err
	}

	// Seal appends the tag to the ciphertext; the envelope wants it between
	// the IV and the ciphertext.
	sealed := e.aead.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	out := make([]byte, 0, ivLength+tagLength+len(ciphertext))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, ciphertext...)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (e *Encryptor) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: not base64", ErrInvalidCiphertext)
	}
	if len(data) <= ivLength+tagLength {
		return "", fmt.Errorf("%w: too short to contain IV, tag and ciphertext", ErrInvalidCiphertext)
	}

	iv := data[:ivLength]
	tag := data[ivLength : ivLength+tagLength]
	ciphertext := data[ivLength+tagLength:]

	sealed := make([]byte, 0, len(ciphertext)+tagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := e.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrInvalidCiphertext)
	}
	return string(plaintext), nil
}
