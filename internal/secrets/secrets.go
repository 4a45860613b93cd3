package secrets

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenLength is the width of api_token and password_reset_token values.
const TokenLength = 40

// Generate returns a random hex string of the given length.
// Length should be an even number.
func Generate(length int) string {
	buf := make([]byte, length/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// GenerateToken returns a random secret of the standard token width.
func GenerateToken() string {
	return Generate(TokenLength)
}
