//go:build linux

package transport

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
)

// RFCOMMTransport is a Bluetooth RFCOMM byte stream. RFCOMM behaves like a
// serial link over Bluetooth: reliable, ordered, and unframed, which is all
// the session layer needs.
//
// The raw socket fd is switched to non-blocking mode and handed to os.File
// so reads integrate with the runtime poller; closing the file from another
// goroutine unblocks a pending Recv.
type RFCOMMTransport struct {
	f     *os.File
	label string

	closeOnce sync.Once
	closed    chan struct{}
}

// DialRFCOMM connects to the device mac ("AA:BB:CC:DD:EE:FF") on the given
// RFCOMM channel.
func DialRFCOMM(mac string, channel uint8) (*RFCOMMTransport, error) {
	addr, err := parseBTAddr(mac)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("rfcomm: socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: addr, Channel: channel}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm: connect %s channel %d: %w", mac, channel, err)
	}

	return newRFCOMMTransport(fd, fmt.Sprintf("%s:%d", mac, channel))
}

func newRFCOMMTransport(fd int, label string) (*RFCOMMTransport, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm: set nonblock: %w", err)
	}
	if label == "" {
		label = constants.FallbackPeerLabel
	}
	return &RFCOMMTransport{
		f:      os.NewFile(uintptr(fd), "rfcomm"),
		label:  label,
		closed: make(chan struct{}),
	}, nil
}

// Send writes all of data to the link.
func (t *RFCOMMTransport) Send(data []byte) error {
	if t.isClosed() {
		return serrors.ErrTransportClosed
	}

	for len(data) > 0 {
		n, err := t.f.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Recv returns the next chunk of bytes. An orderly remote close is reported
// as io.EOF.
func (t *RFCOMMTransport) Recv() ([]byte, error) {
	if t.isClosed() {
		return nil, serrors.ErrTransportClosed
	}

	buf := make([]byte, constants.RecvChunkSize)
	n, err := t.f.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		if t.isClosed() {
			return nil, serrors.ErrTransportClosed
		}
		return nil, err
	}
	return nil, io.EOF
}

// Close tears the link down. Idempotent.
func (t *RFCOMMTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.f.Close()
	})
	return err
}

// PeerLabel returns "mac:channel" of the remote device.
func (t *RFCOMMTransport) PeerLabel() string {
	return t.label
}

func (t *RFCOMMTransport) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

// RFCOMMListener accepts RFCOMM transports on a local channel.
type RFCOMMListener struct {
	f       *os.File
	channel uint8
}

// ListenRFCOMM binds any local adapter on the given RFCOMM channel.
func ListenRFCOMM(channel uint8) (*RFCOMMListener, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("rfcomm: socket: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Channel: channel}
	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm: bind channel %d: %w", channel, err)
	}
	if err := unix.Listen(fd, 1); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm: listen: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("rfcomm: set nonblock: %w", err)
	}

	return &RFCOMMListener{
		f:       os.NewFile(uintptr(fd), "rfcomm-listener"),
		channel: channel,
	}, nil
}

// Accept blocks for the next inbound RFCOMM connection.
func (l *RFCOMMListener) Accept() (Transport, error) {
	rc, err := l.f.SyscallConn()
	if err != nil {
		return nil, err
	}

	var (
		nfd   int
		sa    unix.Sockaddr
		operr error
	)
	err = rc.Read(func(fd uintptr) bool {
		nfd, sa, operr = unix.Accept(int(fd))
		return operr != unix.EAGAIN
	})
	if err != nil {
		return nil, err
	}
	if operr != nil {
		return nil, fmt.Errorf("rfcomm: accept: %w", operr)
	}

	label := constants.FallbackPeerLabel
	if ra, ok := sa.(*unix.SockaddrRFCOMM); ok {
		label = fmt.Sprintf("%s:%d", formatBTAddr(ra.Addr), l.channel)
	}
	return newRFCOMMTransport(nfd, label)
}

// Close stops the listener and unblocks Accept.
func (l *RFCOMMListener) Close() error {
	return l.f.Close()
}

// Addr returns the listening channel in display form.
func (l *RFCOMMListener) Addr() string {
	return fmt.Sprintf("rfcomm:%d", l.channel)
}

// parseBTAddr converts "AA:BB:CC:DD:EE:FF" to the kernel's little-endian
// 6-byte form.
func parseBTAddr(mac string) ([6]byte, error) {
	var addr [6]byte
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return addr, fmt.Errorf("rfcomm: invalid bluetooth address %q", mac)
	}
	for i, p := range parts {
		b, err := strconv.ParseUint(p, 16, 8)
		if err != nil || len(p) != 2 {
			return addr, fmt.Errorf("rfcomm: invalid bluetooth address %q", mac)
		}
		addr[5-i] = byte(b)
	}
	return addr, nil
}

// formatBTAddr is the inverse of parseBTAddr.
func formatBTAddr(addr [6]byte) string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		addr[5], addr[4], addr[3], addr[2], addr[1], addr[0])
}
