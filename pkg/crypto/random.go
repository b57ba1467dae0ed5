// Package crypto provides the cryptographic primitives consumed by the chat
// session protocol: X25519 key agreement, HKDF-SHA256 key derivation,
// AES-256-GCM sealing, and HMAC-SHA256 key confirmation.
//
// All random number generation uses crypto/rand, which sources entropy from
// the operating system's CSPRNG.
package crypto

import (
	"crypto/rand"
	"io"

	serrors "securechat/internal/errors"
)

// SecureRandom fills b with cryptographically secure random bytes.
//
// It only fails if the system's random number generator fails, which should
// be treated as a critical system failure.
func SecureRandom(b []byte) error {
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return serrors.NewCryptoError("SecureRandom", err)
	}
	return nil
}

// SecureRandomBytes returns n cryptographically secure random bytes.
func SecureRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := SecureRandom(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Zeroize overwrites sensitive data with zeros. Call on keys and secrets
// when they are no longer needed.
//
// Note: the Go runtime may have copied the data; this is best-effort
// hygiene, not a guarantee.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ZeroizeMultiple erases multiple byte slices.
func ZeroizeMultiple(slices ...[]byte) {
	for _, s := range slices {
		Zeroize(s)
	}
}
