// Package constants defines protocol and security parameters for the
// securechat session protocol.
package constants

// Protocol identification
const (
	// ProtocolName identifies the wire protocol version. It is the literal
	// prefix of the handshake transcript.
	ProtocolName = "CHATv1"

	// TranscriptSeparator joins transcript fields.
	TranscriptSeparator = "|"

	// HKDFInfo is the fixed application info string for session key
	// derivation. HKDF-SHA256 runs with no salt.
	HKDFInfo = "secure-chat"
)

// X25519 parameters (RFC 7748)
const (
	// X25519PublicKeySize is the size of a raw X25519 public key in bytes.
	X25519PublicKeySize = 32

	// X25519SharedSecretSize is the size of the X25519 shared secret in bytes.
	X25519SharedSecretSize = 32
)

// Symmetric encryption parameters (AES-256-GCM)
const (
	// SessionKeySize is the size of the derived AES-256 session key in bytes.
	SessionKeySize = 32

	// NonceSize is the size of the AES-GCM nonce in bytes (96 bits). A fresh
	// random nonce is generated per message.
	NonceSize = 12

	// TagSize is the size of the AES-GCM authentication tag in bytes.
	TagSize = 16

	// ConfirmationTagSize is the size of the HMAC-SHA256 key-confirmation
	// digest exchanged at the end of the handshake.
	ConfirmationTagSize = 32

	// AADSize is the size of the per-session associated data (SHA-256 of the
	// handshake transcript).
	AADSize = 32
)

// Handshake parameters
const (
	// MaxUsernameLen is the maximum username length in UTF-8 bytes. The
	// handshake encodes the length in a single byte.
	MaxUsernameLen = 255

	// HelloHeaderSize is the size of the username length prefix in the
	// handshake hello payload.
	HelloHeaderSize = 1

	// MinHelloSize is the smallest valid hello payload: a zero-length
	// username followed by a raw public key.
	MinHelloSize = HelloHeaderSize + X25519PublicKeySize
)

// Framing limits
const (
	// FrameHeaderSize is the size of the big-endian length prefix on every
	// wire frame.
	FrameHeaderSize = 4

	// MaxFrameSize is the maximum accepted frame payload. Frames above this
	// limit are rejected before allocation.
	MaxFrameSize = 1 << 20

	// MinMessageSize is the minimum size of a valid encrypted message
	// payload: nonce plus tag around an empty plaintext.
	MinMessageSize = NonceSize + TagSize
)

// Transport parameters
const (
	// RecvChunkSize is the read buffer size used by stream transports for a
	// single Recv call.
	RecvChunkSize = 4096

	// FallbackPeerLabel is used when a transport cannot determine its peer
	// address.
	FallbackPeerLabel = "peer"
)
