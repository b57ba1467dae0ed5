// x25519.go implements X25519 Elliptic Curve Diffie-Hellman operations.
//
// X25519 (RFC 7748) is an elliptic curve Diffie-Hellman function over
// Curve25519 providing approximately 128 bits of classical security. The
// implementation is provided by CIRCL, which uses x-coordinate-only
// Montgomery ladder arithmetic with constant-time execution.
//
// Every chat session generates a fresh ephemeral key pair; private keys are
// never persisted and are zeroized when the session ends, giving forward
// secrecy across sessions.
package crypto

import (
	"github.com/cloudflare/circl/dh/x25519"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
)

// KeyPair is an ephemeral X25519 key pair scoped to one session.
type KeyPair struct {
	public x25519.Key
	secret x25519.Key
}

// GenerateKeyPair generates a new ephemeral X25519 key pair from the
// system CSPRNG.
func GenerateKeyPair() (*KeyPair, error) {
	kp := &KeyPair{}
	if err := SecureRandom(kp.secret[:]); err != nil {
		return nil, serrors.NewCryptoError("GenerateKeyPair", serrors.ErrKeyGenerationFailed)
	}
	x25519.KeyGen(&kp.public, &kp.secret)
	return kp, nil
}

// PublicKeyBytes returns the 32-byte raw encoding of the public key, as sent
// on the wire during the handshake.
func (kp *KeyPair) PublicKeyBytes() []byte {
	out := make([]byte, constants.X25519PublicKeySize)
	copy(out, kp.public[:])
	return out
}

// SharedSecret computes the X25519 shared secret with the peer's raw public
// key. The result must never be used directly as a key; derive the session
// key with DeriveSessionKey.
//
// Returns ErrInvalidPublicKey if the peer key has the wrong length or is a
// low-order point (which would yield an all-zero secret).
func (kp *KeyPair) SharedSecret(peerPublic []byte) ([]byte, error) {
	if len(peerPublic) != constants.X25519PublicKeySize {
		return nil, serrors.ErrInvalidPublicKey
	}

	var peer, shared x25519.Key
	copy(peer[:], peerPublic)

	if !x25519.Shared(&shared, &kp.secret, &peer) {
		return nil, serrors.ErrInvalidPublicKey
	}

	out := make([]byte, constants.X25519SharedSecretSize)
	copy(out, shared[:])
	Zeroize(shared[:])
	return out, nil
}

// Zeroize erases the private key material. The key pair is unusable
// afterwards.
func (kp *KeyPair) Zeroize() {
	Zeroize(kp.secret[:])
	Zeroize(kp.public[:])
}
