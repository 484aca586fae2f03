package crypto

import (
	"encoding/base64"
	"errors"
	"testing"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptorRejectsShortKey(t *testing.T) {
	if _, err := NewEncryptor([]byte("short")); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ciphertext, err := enc.Encrypt("086-112-2233")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if ciphertext == "086-112-2233" {
		t.Fatalf("ciphertext must not equal plaintext")
	}

	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if plaintext != "086-112-2233" {
		t.Fatalf("round trip mismatch: %q", plaintext)
	}
}

func TestEnvelopeLayout(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ciphertext, err := enc.Encrypt("hello")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		t.Fatalf("envelope must be standard base64: %v", err)
	}
	// IV(12) + tag(16) + ciphertext, GCM ciphertext length == plaintext length.
	if len(raw) != ivLength+tagLength+len("hello") {
		t.Fatalf("unexpected envelope length %d", len(raw))
	}
}

func TestEncryptUsesFreshIV(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	first, err := enc.Encrypt("hello")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	second, err := enc.Encrypt("hello")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if first == second {
		t.Fatalf("same plaintext must not produce the same envelope twice")
	}
}

func TestDecryptRejectsTampering(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ciphertext, err := enc.Encrypt("hello")
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	raw[len(raw)-1] ^= 0xff

	if _, err := enc.Decrypt(base64.StdEncoding.EncodeToString(raw)); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext, got %v", err)
	}
}

func TestDecryptRejectsMalformedEnvelopes(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cases := []string{
		"not base64!!!",
		base64.StdEncoding.EncodeToString(make([]byte, ivLength+tagLength)), // too short, no ciphertext
		base64.StdEncoding.EncodeToString([]byte("tiny")),
	}
	for _, c := range cases {
		if _, err := enc.Decrypt(c); !errors.Is(err, ErrInvalidCiphertext) {
			t.Fatalf("%q: expected ErrInvalidCiphertext, got %v", c, err)
		}
	}
}

func TestEmptyInputPassesThrough(t *testing.T) {
	enc, err := NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if out, err := enc.Encrypt(""); err != nil || out != "" {
		t.Fatalf("empty encrypt: got %q, %v", out, err)
	}
	if out, err := enc.Decrypt(""); err != nil || out != "" {
		t.Fatalf("empty decrypt: got %q, %v", out, err)
	}
}
