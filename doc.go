// Package securechat provides end-to-end encrypted chat over pluggable
// byte-stream transports.
//
// Every conversation runs over its own ephemeral X25519 key agreement with
// transcript-bound key confirmation, then AES-256-GCM framed messaging. The
// handshake is symmetric: both peers execute the identical steps, so there
// is no initiator or responder role.
//
// # Quick Start
//
// For a single encrypted conversation:
//
//	import (
//	    "securechat/pkg/chat"
//	    "securechat/pkg/transport"
//	)
//
//	// One side
//	t, _ := transport.DialTCP("host:7000")
//	s := chat.NewSession(t, "alice")
//	_ = s.Handshake(ctx)
//	_ = s.SendMessage("hello")
//
//	// The other side
//	ln, _ := transport.ListenTCP(":7000")
//	t, _ := ln.Accept()
//	s := chat.NewSession(t, "bob")
//	_ = s.Handshake(ctx)
//	text, _ := s.RecvMessage()
//
// For a multi-party room, chat.Registry accepts, handshakes, and relays
// between any number of concurrent sessions.
//
// # Package Structure
//
//   - pkg/chat: Session handshake/messaging and the session Registry
//   - pkg/protocol: wire framing, hello payload, handshake transcript
//   - pkg/crypto: X25519, HKDF-SHA256, AES-256-GCM, key confirmation
//   - pkg/transport: TCP, Bluetooth RFCOMM, and in-memory transports
//   - pkg/observability: logging setup and tracing adapters
//   - cmd/securechat: the CLI (listen / connect)
package securechat
