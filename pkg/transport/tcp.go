package transport

import (
	"errors"
	"io"
	"net"
	"sync"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
)

// TCPTransport adapts a net.Conn to the Transport contract.
type TCPTransport struct {
	conn net.Conn

	closeOnce sync.Once
	closed    chan struct{}
}

// DialTCP connects to addr ("host:port") and returns the transport.
func DialTCP(addr string) (*TCPTransport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewTCPTransport(conn), nil
}

// NewTCPTransport wraps an already-connected net.Conn.
func NewTCPTransport(conn net.Conn) *TCPTransport {
	return &TCPTransport{
		conn:   conn,
		closed: make(chan struct{}),
	}
}

// Send writes all of data to the connection.
func (t *TCPTransport) Send(data []byte) error {
	if t.isClosed() {
		return serrors.ErrTransportClosed
	}

	for len(data) > 0 {
		n, err := t.conn.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Recv returns the next chunk of bytes from the connection. An orderly
// remote close is reported as io.EOF.
func (t *TCPTransport) Recv() ([]byte, error) {
	if t.isClosed() {
		return nil, serrors.ErrTransportClosed
	}

	buf := make([]byte, constants.RecvChunkSize)
	n, err := t.conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err != nil {
		if t.isClosed() {
			return nil, serrors.ErrTransportClosed
		}
		if errors.Is(err, net.ErrClosed) {
			return nil, io.EOF
		}
		return nil, err
	}
	return nil, io.EOF
}

// Close shuts the connection down. Idempotent; a Recv blocked in another
// goroutine unblocks with an error.
func (t *TCPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.conn.Close()
	})
	return err
}

// PeerLabel returns the remote address, or a placeholder when unavailable.
func (t *TCPTransport) PeerLabel() string {
	if addr := t.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return constants.FallbackPeerLabel
}

func (t *TCPTransport) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

// TCPListener accepts TCP transports.
type TCPListener struct {
	ln net.Listener
}

// ListenTCP starts listening on addr (":port" or "host:port").
func ListenTCP(addr string) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPListener{ln: ln}, nil
}

// Accept blocks for the next inbound connection.
func (l *TCPListener) Accept() (Transport, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	return NewTCPTransport(conn), nil
}

// Close stops the listener and unblocks Accept.
func (l *TCPListener) Close() error {
	return l.ln.Close()
}

// Addr returns the bound address.
func (l *TCPListener) Addr() string {
	return l.ln.Addr().String()
}
