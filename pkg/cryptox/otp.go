package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math/big"
)

// CodeDigits is the length of a one-time login code.
const CodeDigits = 6

var ten = big.NewInt(10)

// GenerateNumericCode returns a code of length digits where every position
// is drawn uniformly from 0-9 via crypto/rand. Leading zeros are as likely
// as any other digit, so "004517" is a valid output.
func GenerateNumericCode(digits int) (string, error) {
	if digits <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", digits)
	}

	buf := make([]byte, digits)
	for i := range buf {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("cryptox: generate code digit: %w", err)
		}
		buf[i] = '0' + byte(n.Int64())
	}
	return string(buf), nil
}

// FingerprintCode returns a deterministic SHA-256 fingerprint of a code or
// token, base64url encoded. Stores keep the fingerprint so the plaintext
// value never touches the database.
func FingerprintCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// ConstantTimeEquals compares two strings without leaking where they
// diverge.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
