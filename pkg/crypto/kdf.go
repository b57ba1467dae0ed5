// kdf.go implements key derivation and key confirmation for the chat
// session protocol.
//
// Session keys are derived with HKDF-SHA256 (RFC 5869) from the raw X25519
// shared secret, with no salt and a fixed application info string. Key
// confirmation uses HMAC-SHA256 over the handshake transcript, proving both
// ends derived the same key from the same view of both identities and both
// public keys before any traffic is encrypted.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
)

// DeriveSessionKey derives the 32-byte AES-256 session key from an X25519
// shared secret using HKDF-SHA256 with no salt and the fixed application
// info string.
func DeriveSessionKey(sharedSecret []byte) ([]byte, error) {
	if len(sharedSecret) != constants.X25519SharedSecretSize {
		return nil, serrors.NewCryptoError("DeriveSessionKey", serrors.ErrInvalidKeySize)
	}

	r := hkdf.New(sha256.New, sharedSecret, nil, []byte(constants.HKDFInfo))
	key := make([]byte, constants.SessionKeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, serrors.NewCryptoError("DeriveSessionKey", err)
	}
	return key, nil
}

// ConfirmationTag computes the key-confirmation MAC: HMAC-SHA256 of the
// handshake transcript under the derived session key. Both peers compute the
// same tag because the transcript is order-independent.
func ConfirmationTag(key, transcript []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(transcript)
	return mac.Sum(nil)
}

// VerifyConfirmationTag compares a received confirmation tag against the
// expected value in constant time.
func VerifyConfirmationTag(expected, received []byte) bool {
	return hmac.Equal(expected, received)
}

// Hash returns the SHA-256 digest of data. The hash of the handshake
// transcript becomes the associated data bound to every message.
func Hash(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}
