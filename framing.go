package curvecp

import (
	"encoding/binary"
	"io"
	"net"

	"github.com/pmmtrifork/curve-tun/freelist"
)

// frameReadWriter turns a net.Conn into a sequence of discrete,
// length-prefixed frames: each frame on the wire is a 16-bit big-endian
// length followed by that many bytes (spec §6). It is the Go-native
// analogue of hlandau-degoutils/net/bsda.FrameReadWriterCloser, which
// that repo imports but does not vendor into the retrieved pack.
type frameReadWriter struct {
	conn net.Conn
}

func newFrameReadWriter(conn net.Conn) *frameReadWriter {
	return &frameReadWriter{conn: conn}
}

// ReadFrame blocks until one full frame has arrived and returns its
// payload. Per spec invariant 4, the caller is expected to call ReadFrame
// at most once per "arming" in the connected state; ReadFrame itself does
// not buffer ahead of the current frame.
func (f *frameReadWriter) ReadFrame() ([]byte, error) {
	var lenBuf [2]byte
	if _, err := io.ReadFull(f.conn, lenBuf[:]); err != nil {
		return nil, err
	}
	n := int(binary.BigEndian.Uint16(lenBuf[:]))

	buf := freelist.Frames.Get()[:n]
	if _, err := io.ReadFull(f.conn, buf); err != nil {
		freelist.Frames.Put(buf)
		return nil, err
	}
	out := append([]byte(nil), buf...)
	freelist.Frames.Put(buf)
	return out, nil
}

// WriteFrame writes b as a single length-prefixed frame. b must not
// exceed freelist.MaxFrameSize bytes.
func (f *frameReadWriter) WriteFrame(b []byte) error {
	if len(b) > freelist.MaxFrameSize {
		panic("curvecp: frame exceeds maximum size")
	}
	out := make([]byte, 2+len(b))
	binary.BigEndian.PutUint16(out[:2], uint16(len(b)))
	copy(out[2:], b)
	_, err := f.conn.Write(out)
	return err
}

func (f *frameReadWriter) Close() error {
	return f.conn.Close()
}
