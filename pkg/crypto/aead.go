// aead.go implements authenticated encryption for chat messages.
//
// Messages are sealed with AES-256-GCM under the session key. Every message
// uses a fresh 96-bit nonce from the system CSPRNG and binds the session's
// associated data (the SHA-256 transcript hash), so a ciphertext cannot be
// replayed into a different session or accepted after any modification.
//
// CRITICAL: nonce reuse under the same key completely breaks GCM security.
// Nonces here are random rather than counter-based because both directions
// of a chat session encrypt under the same key; a shared counter would
// require cross-goroutine coordination that the protocol does not have.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
)

// AEAD seals and opens chat messages under a fixed session key.
type AEAD struct {
	cipher cipher.AEAD
}

// NewAEAD creates an AES-256-GCM cipher from a 32-byte session key.
func NewAEAD(key []byte) (*AEAD, error) {
	if len(key) != constants.SessionKeySize {
		return nil, serrors.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, serrors.NewCryptoError("NewAEAD", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, serrors.NewCryptoError("NewAEAD", err)
	}

	return &AEAD{cipher: gcm}, nil
}

// Seal encrypts and authenticates plaintext with a fresh random nonce.
//
// Returns nonce || ciphertext || tag, ready for framing.
func (a *AEAD) Seal(plaintext, additionalData []byte) ([]byte, error) {
	out := make([]byte, constants.NonceSize, constants.NonceSize+len(plaintext)+constants.TagSize)
	if err := SecureRandom(out[:constants.NonceSize]); err != nil {
		return nil, err
	}

	return a.cipher.Seal(out, out[:constants.NonceSize], plaintext, additionalData), nil
}

// Open verifies and decrypts a sealed message of the form
// nonce || ciphertext || tag. additionalData must match the value bound at
// Seal time; any mismatch or modification fails with
// ErrAuthenticationFailed.
func (a *AEAD) Open(sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) < constants.MinMessageSize {
		return nil, serrors.ErrCiphertextTooShort
	}

	nonce := sealed[:constants.NonceSize]
	ciphertext := sealed[constants.NonceSize:]

	plaintext, err := a.cipher.Open(nil, nonce, ciphertext, additionalData)
	if err != nil {
		return nil, serrors.ErrAuthenticationFailed
	}
	return plaintext, nil
}

// Overhead returns the bytes added to a plaintext by Seal.
func (a *AEAD) Overhead() int {
	return constants.NonceSize + a.cipher.Overhead()
}
