//go:build !linux

package transport

import "errors"

var errRFCOMMUnsupported = errors.New("rfcomm: bluetooth transport requires linux")

// DialRFCOMM is unavailable on this platform.
func DialRFCOMM(mac string, channel uint8) (Transport, error) {
	return nil, errRFCOMMUnsupported
}

// ListenRFCOMM is unavailable on this platform.
func ListenRFCOMM(channel uint8) (Listener, error) {
	return nil, errRFCOMMUnsupported
}
