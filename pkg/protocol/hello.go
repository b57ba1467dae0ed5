// hello.go implements the handshake hello payload.
//
// Wire format (inside one frame):
//
//	+----------+-----------+------------------+
//	| NameLen  | Username  | X25519 PublicKey |
//	| 1B       | 0..255B   | 32B raw          |
//	+----------+-----------+------------------+
//
// Both peers send exactly one hello; there is no initiator/responder
// asymmetry.
package protocol

import (
	"securechat/internal/constants"
	serrors "securechat/internal/errors"
)

// Hello is the first handshake message: the sender's claimed identity and
// ephemeral public key.
type Hello struct {
	Username  string
	PublicKey []byte
}

// EncodeHello serializes a hello payload. The username must not exceed 255
// UTF-8 bytes and the public key must be a raw 32-byte X25519 key; both are
// validated before anything is written to the wire.
func EncodeHello(username string, publicKey []byte) ([]byte, error) {
	name := []byte(username)
	if len(name) > constants.MaxUsernameLen {
		return nil, serrors.ErrUsernameTooLong
	}
	if len(publicKey) != constants.X25519PublicKeySize {
		return nil, serrors.ErrInvalidPublicKey
	}

	buf := make([]byte, 0, constants.HelloHeaderSize+len(name)+len(publicKey))
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = append(buf, publicKey...)
	return buf, nil
}

// DecodeHello parses a hello payload. Empty or length-inconsistent payloads
// fail with ErrMalformedHello.
func DecodeHello(payload []byte) (*Hello, error) {
	if len(payload) < constants.MinHelloSize {
		return nil, serrors.ErrMalformedHello
	}

	nameLen := int(payload[0])
	if len(payload) != constants.HelloHeaderSize+nameLen+constants.X25519PublicKeySize {
		return nil, serrors.ErrMalformedHello
	}

	name := payload[constants.HelloHeaderSize : constants.HelloHeaderSize+nameLen]
	key := make([]byte, constants.X25519PublicKeySize)
	copy(key, payload[constants.HelloHeaderSize+nameLen:])

	return &Hello{
		Username:  string(name),
		PublicKey: key,
	}, nil
}
