package service

import "golang.org/x/crypto/bcrypt"

// BcryptHasher produces self-describing salted digests; algorithm, cost and
// salt are all embedded in the digest string.
type BcryptHasher struct{}

func (BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether digest was produced from plaintext. Malformed
// digests verify as false, never as an error.
func (BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
