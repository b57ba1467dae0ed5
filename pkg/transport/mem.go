package transport

import (
	"io"
	"sync"

	serrors "securechat/internal/errors"
)

// MemTransport is an in-process Transport backed by channels. It exists for
// tests and for wiring two sessions inside one process without a socket.
//
// A MemTransport can be created with a chunk limit so Recv returns at most
// that many bytes at a time, exercising the same partial-read reassembly
// paths a real stream transport produces.
type MemTransport struct {
	label string
	chunk int

	in  chan []byte
	out chan []byte

	pending []byte

	closeOnce  sync.Once
	closed     chan struct{}
	peerClosed chan struct{}
}

// NewMemPair returns two connected in-memory transports. Writes on one side
// become reads on the other. chunk limits the bytes returned per Recv;
// chunk <= 0 means no limit. Pass chunk == 1 to deliver one byte at a time.
func NewMemPair(chunk int) (*MemTransport, *MemTransport) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	aClosed := make(chan struct{})
	bClosed := make(chan struct{})

	a := &MemTransport{
		label:      "mem-b",
		chunk:      chunk,
		in:         ba,
		out:        ab,
		closed:     aClosed,
		peerClosed: bClosed,
	}
	b := &MemTransport{
		label:      "mem-a",
		chunk:      chunk,
		in:         ab,
		out:        ba,
		closed:     bClosed,
		peerClosed: aClosed,
	}
	return a, b
}

// Send queues data for the peer.
func (t *MemTransport) Send(data []byte) error {
	if t.isClosed() {
		return serrors.ErrTransportClosed
	}
	if len(data) == 0 {
		return nil
	}

	// The out channel is buffered, so a send could succeed even after the
	// peer is gone. Check first so the failure is reported to the caller.
	select {
	case <-t.peerClosed:
		return io.ErrClosedPipe
	default:
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	select {
	case t.out <- buf:
		return nil
	case <-t.closed:
		return serrors.ErrTransportClosed
	case <-t.peerClosed:
		return io.ErrClosedPipe
	}
}

// Recv returns the next chunk queued by the peer. When the peer has closed
// and the queue is drained, Recv reports io.EOF.
func (t *MemTransport) Recv() ([]byte, error) {
	if t.isClosed() {
		return nil, serrors.ErrTransportClosed
	}

	for len(t.pending) == 0 {
		select {
		case buf := <-t.in:
			t.pending = buf
		case <-t.closed:
			return nil, serrors.ErrTransportClosed
		case <-t.peerClosed:
			// Drain bytes the peer queued before closing.
			select {
			case buf := <-t.in:
				t.pending = buf
			default:
				return nil, io.EOF
			}
		}
	}

	n := len(t.pending)
	if t.chunk > 0 && n > t.chunk {
		n = t.chunk
	}
	out := t.pending[:n]
	t.pending = t.pending[n:]
	return out, nil
}

// Close tears down this side of the pair. The peer's blocked Recv unblocks
// with io.EOF once its queue drains.
func (t *MemTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
	return nil
}

// PeerLabel names the other side of the pair.
func (t *MemTransport) PeerLabel() string {
	return t.label
}

// SetPeerLabel overrides the display label, useful in tests that need
// distinct registry keys.
func (t *MemTransport) SetPeerLabel(label string) {
	t.label = label
}

func (t *MemTransport) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}
