// Package transport defines the byte-stream contract the chat session
// protocol runs over, together with TCP, Bluetooth RFCOMM, and in-memory
// implementations.
//
// A Transport is a plain bidirectional byte stream: it carries no framing
// and no security of its own. All confidentiality and integrity is applied
// above it by the session layer, so every implementation here is
// interchangeable.
package transport

// Transport is one established bidirectional byte stream to a peer.
//
// Implementations must tolerate Close being called concurrently with a
// blocked Recv: the Recv must unblock with io.EOF or an error. That is the
// session layer's only cancellation primitive.
type Transport interface {
	// Send writes all of data or fails. Partial writes are an error.
	Send(data []byte) error

	// Recv blocks until at least one byte arrives and returns it. Partial
	// reads are legal; callers reassemble. An orderly remote close is
	// reported as io.EOF. After Close, Recv fails fast.
	Recv() ([]byte, error)

	// Close tears the stream down. It is idempotent and best-effort; errors
	// from an already-closed stream may be deliberately ignored.
	Close() error

	// PeerLabel identifies the remote endpoint for display and registry
	// keys. Best-effort: implementations fall back to a placeholder when
	// the address is unknown.
	PeerLabel() string
}

// Listener accepts inbound Transports.
type Listener interface {
	// Accept blocks until an inbound connection arrives. Closing the
	// listener unblocks Accept with an error.
	Accept() (Transport, error)

	// Close stops the listener. Idempotent.
	Close() error

	// Addr returns the local listening address in display form.
	Addr() string
}
