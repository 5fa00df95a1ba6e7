// File: internal/deliverycode/code.go
package deliverycode

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// Alphabet leaves out 0, 1, I and O so the code survives being read aloud.
	Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	Length   = 6
	// HashLength is the size of a hex-encoded SHA-256 digest.
	HashLength = sha256.Size * 2
)

// len(Alphabet) is 32, so masking a random byte keeps the draw uniform.
const alphabetMask = 0x1f

// Generate returns a fresh code drawn from crypto/rand. It panics only if
// the operating system's entropy source is unavailable.
func Generate() string {
	code, err := generate()
	if err != nil {
		panic(fmt.Sprintf("deliverycode: entropy source unavailable: %v", err))
	}
	return code
}

// GenerateN returns n independent codes.
func GenerateN(n int) ([]string, error) {
	codes := make([]string, 0, n)
	for i := 0; i < n; i++ {
		code, err := generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, nil
}

func generate() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = Alphabet[b&alphabetMask]
	}
	return string(buf), nil
}

// Normalize is applied on both the generation and the redemption path.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Hash returns the lowercase hex SHA-256 of the normalized code.
func Hash(code string) string {
	sum := sha256.Sum256([]byte(Normalize(code)))
	return hex.EncodeToString(sum[:])
}

// Matches hashes the submitted code and compares it to storedHash in
// constant time.
func Matches(submitted, storedHash string) bool {
	got := Hash(submitted)
	return subtle.ConstantTimeCompare([]byte(got), []byte(strings.ToLower(storedHash))) == 1
}

// IsValidHash reports whether s looks like a value produced by Hash.
func IsValidHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
