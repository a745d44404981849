// Package framing implements the exact-bytes I/O helpers spec.md §4.2
// requires of any byte-stream substrate: repeat-until-complete
// send/recv, and the big-endian length-prefixed plaintext frame used
// by the raw handshake wire and by applications before a Session
// exists.
package framing

import (
	"encoding/binary"
	"io"

	"p2pnet/perr"
)

// MaxFrameLen is the largest plaintext payload a length-prefixed frame
// may carry: 1 MiB, per spec.md §3.
const MaxFrameLen = 1 << 20

const lengthPrefixSize = 4

// SendExact writes all of buf to w, repeating partial writes until
// every byte is accepted. Any zero-or-negative-equivalent error from w
// is fatal.
func SendExact(w io.Writer, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		if n > 0 {
			total += n
		}
		if err != nil {
			return perr.Wrap(perr.IoError, "send_exact", err)
		}
		if n <= 0 {
			return perr.New(perr.IoClosed, "send_exact: zero-length write")
		}
	}
	return nil
}

// RecvExact reads exactly n bytes from r, repeating partial reads
// until the buffer is full. It never returns a short read: any error
// before n bytes accumulate is fatal.
func RecvExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return nil, perr.Wrap(perr.IoClosed, "recv_exact", err)
		}
		if err == io.ErrUnexpectedEOF {
			return nil, perr.Wrap(perr.BadFrame, "recv_exact: short read", err)
		}
		return nil, perr.Wrap(perr.IoError, "recv_exact", err)
	}
	return buf, nil
}

// SendFrame writes payload as a big-endian u32 length header followed
// by the payload bytes. len(payload) must be in [1, MaxFrameLen].
func SendFrame(w io.Writer, payload []byte) error {
	if len(payload) == 0 || len(payload) > MaxFrameLen {
		return perr.New(perr.BadFrame, "frame length out of bounds")
	}
	var hdr [lengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(payload)))
	if err := SendExact(w, hdr[:]); err != nil {
		return err
	}
	return SendExact(w, payload)
}

// RecvFrame reads one length-prefixed plaintext frame and returns its
// payload. A length of zero or above MaxFrameLen is a fatal framing
// error; the connection should be abandoned by the caller.
func RecvFrame(r io.Reader) ([]byte, error) {
	hdr, err := RecvExact(r, lengthPrefixSize)
	if err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(hdr)
	if length == 0 || length > MaxFrameLen {
		return nil, perr.New(perr.BadFrame, "frame length out of bounds")
	}
	return RecvExact(r, int(length))
}
