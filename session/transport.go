package session

import (
	"encoding/binary"
	"io"

	"p2pnet/framing"
	"p2pnet/perr"
)

// Encrypted frame wire layout, per spec.md §4.5:
//
//	4-byte BE total length (covers nonce + ciphertext||tag)
//	12-byte nonce
//	ciphertext || 16-byte tag
const (
	nonceSize      = 12
	tagSize        = 16
	minTotalLength = nonceSize + tagSize
	maxTotalLength = nonceSize + tagSize + framing.MaxFrameLen
)

// encodeNonce lays out the 12-byte AEAD nonce as the 64-bit counter in
// big-endian occupying bytes 0..7, with bytes 8..11 held at zero.
func encodeNonce(counter uint64) [nonceSize]byte {
	var n [nonceSize]byte
	binary.BigEndian.PutUint64(n[0:8], counter)
	return n
}

func decodeNonceCounter(nonce []byte) uint64 {
	return binary.BigEndian.Uint64(nonce[0:8])
}

// Send encrypts plaintext under the next send-nonce and writes the
// resulting frame to w. On any failure the session's send counter is
// left unchanged and the session must be torn down by the caller —
// the wire may or may not have received partial bytes.
func (s *Session) Send(w io.Writer, plaintext []byte) error {
	if len(plaintext) == 0 || len(plaintext) > framing.MaxFrameLen {
		return perr.New(perr.BadFrame, "plaintext length out of bounds")
	}

	if s.destroyed.Load() {
		return perr.New(perr.Invariant, "session has been destroyed")
	}

	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.sendCtr == ^uint64(0) {
		return perr.New(perr.CounterExhausted, "send counter exhausted")
	}

	nonce := encodeNonce(s.sendCtr)
	sealed := s.aead.Seal(nil, nonce[:], plaintext, nil)

	totalLen := nonceSize + len(sealed)
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(totalLen))

	if err := framing.SendExact(w, hdr[:]); err != nil {
		return err
	}
	if err := framing.SendExact(w, nonce[:]); err != nil {
		return err
	}
	if err := framing.SendExact(w, sealed); err != nil {
		return err
	}

	s.sendCtr++
	return nil
}

// Recv reads one encrypted frame from r, validates bounds and replay
// ordering, decrypts, and returns the plaintext. The receive counter
// names the next expected nonce counter: it starts at zero and accepts
// any counter >= expected, then advances to counter+1 — this is the
// resolved reading of the ambiguity noted in spec.md §9, not the
// source's literal "> previous" comparison.
func (s *Session) Recv(r io.Reader) ([]byte, error) {
	if s.destroyed.Load() {
		return nil, perr.New(perr.Invariant, "session has been destroyed")
	}

	s.recvMu.Lock()
	defer s.recvMu.Unlock()

	hdrBuf, err := framing.RecvExact(r, 4)
	if err != nil {
		return nil, err
	}
	totalLen := binary.BigEndian.Uint32(hdrBuf)
	if totalLen < minTotalLength || totalLen > maxTotalLength {
		return nil, perr.New(perr.BadFrame, "encrypted frame length out of bounds")
	}

	nonce, err := framing.RecvExact(r, nonceSize)
	if err != nil {
		return nil, err
	}
	counter := decodeNonceCounter(nonce)
	if counter < s.recvCtr {
		return nil, perr.New(perr.ReplayOrRewind, "nonce counter behind expected")
	}

	sealed, err := framing.RecvExact(r, int(totalLen)-nonceSize)
	if err != nil {
		return nil, err
	}

	plaintext, decErr := s.aead.Open(nil, nonce, sealed, nil)
	if decErr != nil {
		return nil, perr.Wrap(perr.Decrypt, "aead open failed", decErr)
	}

	s.recvCtr = counter + 1
	return plaintext, nil
}
