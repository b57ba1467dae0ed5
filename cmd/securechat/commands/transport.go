package commands

import (
	"fmt"

	"securechat/pkg/transport"
)

// newListener builds the listener for the selected transport kind.
func newListener(addr string, channel uint8) (transport.Listener, error) {
	switch kind {
	case "tcp":
		return transport.ListenTCP(addr)
	case "bt", "bluetooth":
		return transport.ListenRFCOMM(channel)
	default:
		return nil, fmt.Errorf("unknown transport %q (want tcp or bt)", kind)
	}
}

// dialPeer connects to a remote peer over the selected transport kind.
func dialPeer(addr, device string, channel uint8) (transport.Transport, error) {
	switch kind {
	case "tcp":
		return transport.DialTCP(addr)
	case "bt", "bluetooth":
		return transport.DialRFCOMM(device, channel)
	default:
		return nil, fmt.Errorf("unknown transport %q (want tcp or bt)", kind)
	}
}
