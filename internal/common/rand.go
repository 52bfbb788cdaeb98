package common

import "crypto/rand"

// GenerateRandByteArray returns n bytes from the system CSPRNG.
// crypto/rand.Read never fails on supported platforms, so no error is
// returned.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}
