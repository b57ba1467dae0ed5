// Package protocol implements the securechat wire format: length-prefixed
// frames, the handshake hello payload, and the handshake transcript.
//
// Frame format:
//
//	+----------+----------+
//	| Length   | Payload  |
//	| 4B BE    | Variable |
//	+----------+----------+
//
// The length prefix counts exactly the payload bytes that follow. Frames are
// the unit of every exchange: one hello, one confirmation tag, or one
// encrypted message per frame.
package protocol

import (
	"encoding/binary"
	"io"

	"securechat/internal/constants"
	serrors "securechat/internal/errors"
)

// Receiver is the read half consumed by FrameReader. Recv blocks until bytes
// arrive; it may return fewer bytes than a full frame (partial reads are
// legal) and reports an orderly remote close as io.EOF.
type Receiver interface {
	Recv() ([]byte, error)
}

// EncodeFrame prepends the 4-byte big-endian length header to payload.
func EncodeFrame(payload []byte) []byte {
	buf := make([]byte, constants.FrameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[constants.FrameHeaderSize:], payload)
	return buf
}

// FrameReader reassembles frames from a Receiver that may deliver bytes at
// arbitrary boundaries. The accumulator is unbounded between frames; the
// per-frame length is capped by MaxFrameSize.
type FrameReader struct {
	src Receiver
	buf []byte
}

// NewFrameReader creates a FrameReader over src.
func NewFrameReader(src Receiver) *FrameReader {
	return &FrameReader{src: src}
}

// ReadFrame blocks until one complete frame is available and returns its
// payload. A remote close at a frame boundary returns ErrPeerClosed; a close
// mid-frame returns ErrShortFrame. Either way the stream is unusable
// afterwards.
func (r *FrameReader) ReadFrame() ([]byte, error) {
	header, err := r.readExact(constants.FrameHeaderSize)
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint32(header)
	if length > constants.MaxFrameSize {
		return nil, serrors.ErrFrameTooLarge
	}

	return r.readExact(int(length))
}

// readExact returns exactly n bytes, accumulating partial reads.
func (r *FrameReader) readExact(n int) ([]byte, error) {
	for len(r.buf) < n {
		chunk, err := r.src.Recv()
		if err != nil {
			if err == io.EOF || serrors.Is(err, io.EOF) {
				if len(r.buf) > 0 {
					return nil, serrors.ErrShortFrame
				}
				return nil, serrors.ErrPeerClosed
			}
			return nil, err
		}
		if len(chunk) == 0 {
			// A zero-length read with nil error also means the remote side
			// is gone; treating it as progress would spin the loop.
			if len(r.buf) > 0 {
				return nil, serrors.ErrShortFrame
			}
			return nil, serrors.ErrPeerClosed
		}
		r.buf = append(r.buf, chunk...)
	}

	out := make([]byte, n)
	copy(out, r.buf[:n])
	r.buf = r.buf[n:]
	return out, nil
}
