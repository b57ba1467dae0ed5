// Package errors defines custom error types for the securechat session
// protocol and registry. These errors carry enough context for callers to
// react without leaking key material or plaintext in error messages.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for cryptographic operations
var (
	// ErrInvalidKeySize indicates a key has an incorrect size
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidPublicKey indicates a peer public key is malformed or a
	// low-order point
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")

	// ErrKeyGenerationFailed indicates ephemeral key generation failed
	ErrKeyGenerationFailed = errors.New("crypto: key generation failed")

	// ErrAuthenticationFailed indicates AEAD authentication/decryption failed
	ErrAuthenticationFailed = errors.New("aead: authentication failed")

	// ErrCiphertextTooShort indicates ciphertext is too short to be valid
	ErrCiphertextTooShort = errors.New("aead: ciphertext too short")
)

// Sentinel errors for handshake and framing
var (
	// ErrUsernameTooLong indicates the local username exceeds 255 UTF-8 bytes
	ErrUsernameTooLong = errors.New("handshake: username too long (max 255 bytes)")

	// ErrMalformedHello indicates a handshake payload is empty or
	// length-inconsistent
	ErrMalformedHello = errors.New("handshake: malformed hello payload")

	// ErrConfirmationFailed indicates the key-confirmation tags did not match
	ErrConfirmationFailed = errors.New("handshake: key confirmation failed")

	// ErrFrameTooLarge indicates a frame length prefix exceeds the limit
	ErrFrameTooLarge = errors.New("frame: payload too large")

	// ErrShortFrame indicates the stream ended inside a frame
	ErrShortFrame = errors.New("frame: truncated payload")
)

// Sentinel errors for session and transport operations
var (
	// ErrSessionClosed indicates the session has been terminated
	ErrSessionClosed = errors.New("session: closed")

	// ErrNotEstablished indicates an operation requires a completed handshake
	ErrNotEstablished = errors.New("session: not established")

	// ErrPeerClosed indicates the remote side closed the connection
	ErrPeerClosed = errors.New("transport: peer closed connection")

	// ErrTransportClosed indicates Send/Recv was called after Close
	ErrTransportClosed = errors.New("transport: closed")
)

// Sentinel errors for registry operations
var (
	// ErrDuplicatePeer indicates a session with the same peer label is
	// already registered
	ErrDuplicatePeer = errors.New("registry: duplicate peer identity")

	// ErrTargetNotFound indicates a directed send named an unknown peer label
	ErrTargetNotFound = errors.New("registry: target not connected")

	// ErrRegistryStopped indicates the registry has been stopped
	ErrRegistryStopped = errors.New("registry: stopped")
)

// CryptoError wraps a cryptographic error with the failing operation.
type CryptoError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CryptoError) Unwrap() error {
	return e.Err
}

// NewCryptoError creates a new CryptoError.
func NewCryptoError(op string, err error) *CryptoError {
	return &CryptoError{Op: op, Err: err}
}

// ProtocolError wraps a protocol error with the phase it occurred in.
type ProtocolError struct {
	Phase string // Protocol phase (e.g., "handshake", "message")
	Err   error  // Underlying error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol %s: %v", e.Phase, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// NewProtocolError creates a new ProtocolError.
func NewProtocolError(phase string, err error) *ProtocolError {
	return &ProtocolError{Phase: phase, Err: err}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
