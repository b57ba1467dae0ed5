// Package chat implements the encrypted chat session protocol and the
// multi-party session registry.
//
// A Session runs over any transport.Transport:
//   - Ephemeral X25519 key agreement with identity-bound key confirmation
//   - AES-256-GCM messaging with the handshake transcript as associated data
//   - Forward secrecy through per-session ephemeral keys
//
// The handshake is symmetric: both sides perform the identical sequence of
// sends and receives, so there is no initiator or responder role.
package chat

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
	"securechat/pkg/crypto"
	"securechat/pkg/protocol"
	"securechat/pkg/transport"
)

// SessionState represents the current state of a chat session.
type SessionState int32

const (
	// SessionStateNew indicates a fresh session not yet handshaked
	SessionStateNew SessionState = iota

	// SessionStateHandshaking indicates handshake is in progress
	SessionStateHandshaking

	// SessionStateEstablished indicates the session is ready for messages
	SessionStateEstablished

	// SessionStateClosed indicates the session has been terminated
	SessionStateClosed
)

// String returns a human-readable name for the session state.
func (s SessionState) String() string {
	switch s {
	case SessionStateNew:
		return "New"
	case SessionStateHandshaking:
		return "Handshaking"
	case SessionStateEstablished:
		return "Established"
	case SessionStateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Session is one end-to-end encrypted conversation with a single peer.
//
// SendMessage and RecvMessage are safe to call from different goroutines;
// multiple concurrent senders are serialized so frames never interleave.
type Session struct {
	transport transport.Transport
	reader    *protocol.FrameReader

	username     string
	peerUsername string
	peerLabel    string

	// Current state
	state atomic.Int32

	// Messaging cipher and the per-session associated data, fixed for the
	// session's whole life once the handshake completes.
	aead *crypto.AEAD
	aad  []byte

	// Observability hooks
	observer Observer

	// Statistics
	MessagesSent atomic.Uint64
	MessagesRecv atomic.Uint64

	CreatedAt     time.Time
	EstablishedAt time.Time

	sendMu    sync.Mutex
	closeOnce sync.Once
}

// NewSession wraps an established transport in a session for the given local
// username. The session is not usable until Handshake succeeds.
func NewSession(t transport.Transport, username string) *Session {
	s := &Session{
		transport: t,
		reader:    protocol.NewFrameReader(t),
		username:  username,
		peerLabel: t.PeerLabel(),
		CreatedAt: time.Now(),
	}
	s.state.Store(int32(SessionStateNew))
	return s
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Closed reports whether the session has been terminated.
func (s *Session) Closed() bool {
	return s.State() == SessionStateClosed
}

// SetObserver sets an observer for session lifecycle and metrics.
// Should be called before Handshake.
func (s *Session) SetObserver(observer Observer) {
	s.observer = observer
}

// Username returns the local identity announced during the handshake.
func (s *Session) Username() string {
	return s.username
}

// PeerUsername returns the peer's confirmed identity. Empty before the
// handshake completes.
func (s *Session) PeerUsername() string {
	return s.peerUsername
}

// PeerLabel identifies the peer for display and registry keys. After a
// successful handshake it has the form "username@address"; before that it is
// the bare transport address.
func (s *Session) PeerLabel() string {
	return s.peerLabel
}

// Handshake performs the symmetric key agreement and key confirmation.
//
// Both sides exchange one hello frame (identity + ephemeral X25519 public
// key), derive the session key with HKDF-SHA256 over the ECDH shared secret,
// then exchange HMAC-SHA256 confirmation tags over the shared transcript.
// Because the transcript sorts both identities and both public keys, the two
// ends compute identical tags regardless of who dialed whom.
//
// Any failure is terminal: the transport is closed and the session is
// unusable. ctx feeds the observer's handshake span only; cancellation is
// done by closing the session from another goroutine.
func (s *Session) Handshake(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(SessionStateNew), int32(SessionStateHandshaking)) {
		if s.Closed() {
			return serrors.ErrSessionClosed
		}
		return serrors.NewProtocolError("handshake", fmt.Errorf("invalid state %s", s.State()))
	}

	var done func(error)
	if s.observer != nil {
		_, done = s.observer.OnHandshakeStart(ctx)
	}

	err := s.handshake()
	if done != nil {
		done(err)
	}
	if err != nil {
		s.Close()
		return err
	}

	s.EstablishedAt = time.Now()
	if !s.state.CompareAndSwap(int32(SessionStateHandshaking), int32(SessionStateEstablished)) {
		// Closed from another goroutine mid-handshake.
		return serrors.ErrSessionClosed
	}
	return nil
}

func (s *Session) handshake() error {
	keyPair, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	defer keyPair.Zeroize()

	localPub := keyPair.PublicKeyBytes()

	// Username length is validated here, before any byte hits the wire.
	hello, err := protocol.EncodeHello(s.username, localPub)
	if err != nil {
		return err
	}

	if err := s.transport.Send(protocol.EncodeFrame(hello)); err != nil {
		return serrors.NewProtocolError("handshake", err)
	}

	peerPayload, err := s.reader.ReadFrame()
	if err != nil {
		return serrors.NewProtocolError("handshake", err)
	}
	peerHello, err := protocol.DecodeHello(peerPayload)
	if err != nil {
		return err
	}

	sharedSecret, err := keyPair.SharedSecret(peerHello.PublicKey)
	if err != nil {
		return err
	}
	sessionKey, err := crypto.DeriveSessionKey(sharedSecret)
	if err != nil {
		crypto.Zeroize(sharedSecret)
		return err
	}
	defer crypto.ZeroizeMultiple(sharedSecret, sessionKey)

	transcript := protocol.BuildTranscript(
		[]byte(s.username), []byte(peerHello.Username),
		localPub, peerHello.PublicKey,
	)

	// Send our confirmation tag unconditionally, then wait for the peer's.
	// Both sides do the same, so neither can stall waiting for the other.
	localTag := crypto.ConfirmationTag(sessionKey, transcript)
	if err := s.transport.Send(protocol.EncodeFrame(localTag)); err != nil {
		return serrors.NewProtocolError("handshake", err)
	}

	peerTag, err := s.reader.ReadFrame()
	if err != nil {
		return serrors.NewProtocolError("handshake", err)
	}
	if len(peerTag) != constants.ConfirmationTagSize ||
		!crypto.VerifyConfirmationTag(localTag, peerTag) {
		return serrors.ErrConfirmationFailed
	}

	aead, err := crypto.NewAEAD(sessionKey)
	if err != nil {
		return err
	}

	s.aead = aead
	s.aad = crypto.Hash(transcript)
	s.peerUsername = peerHello.Username
	s.peerLabel = peerHello.Username + "@" + s.transport.PeerLabel()
	return nil
}

// SendMessage encrypts text and writes it as one frame. Any failure closes
// the session.
func (s *Session) SendMessage(text string) error {
	if err := s.requireEstablished(); err != nil {
		return err
	}

	var done func(error)
	if s.observer != nil {
		_, done = s.observer.OnEncrypt(context.Background(), len(text))
	}

	sealed, err := s.aead.Seal([]byte(text), s.aad)
	if err != nil {
		if done != nil {
			done(err)
		}
		s.Close()
		return err
	}

	s.sendMu.Lock()
	err = s.transport.Send(protocol.EncodeFrame(sealed))
	s.sendMu.Unlock()

	if done != nil {
		done(err)
	}
	if err != nil {
		s.Close()
		return serrors.NewProtocolError("message", err)
	}

	s.MessagesSent.Add(1)
	return nil
}

// RecvMessage blocks for the next frame, decrypts it, and returns the text.
// Any framing or authentication failure closes the session; an orderly peer
// close surfaces as ErrPeerClosed.
func (s *Session) RecvMessage() (string, error) {
	if err := s.requireEstablished(); err != nil {
		return "", err
	}

	sealed, err := s.reader.ReadFrame()
	if err != nil {
		closed := s.Closed()
		s.Close()
		if closed {
			return "", serrors.ErrSessionClosed
		}
		return "", err
	}

	var done func(error)
	if s.observer != nil {
		_, done = s.observer.OnDecrypt(context.Background(), len(sealed))
	}

	plaintext, err := s.aead.Open(sealed, s.aad)
	if err != nil {
		if s.observer != nil && serrors.Is(err, serrors.ErrAuthenticationFailed) {
			s.observer.OnAuthFailure()
		}
		if done != nil {
			done(err)
		}
		s.Close()
		return "", err
	}
	if done != nil {
		done(nil)
	}

	s.MessagesRecv.Add(1)
	return string(plaintext), nil
}

// Close terminates the session and its transport. Idempotent; a RecvMessage
// blocked in another goroutine unblocks with an error.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.state.Store(int32(SessionStateClosed))
		_ = s.transport.Close()
		if s.observer != nil {
			s.observer.OnSessionEnd()
		}
	})
}

func (s *Session) requireEstablished() error {
	switch s.State() {
	case SessionStateEstablished:
		return nil
	case SessionStateClosed:
		return serrors.ErrSessionClosed
	default:
		return serrors.ErrNotEstablished
	}
}
