// Package session defines the post-handshake object: derived session
// key, verified peer identity, and the monotonic send/receive nonce
// counters. Per the design note in spec.md §9, the encrypted-transport
// operations (Send/Recv) are implemented as methods on Session itself
// rather than as free functions that pull the key out — so the key is
// never reachable from outside this package.
package session

import (
	"crypto/cipher"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/chacha20poly1305"

	"p2pnet/cryptoinit"
	"p2pnet/identity"
	"p2pnet/perr"
	"p2pnet/secmem"
)

// Session holds everything needed to send and receive encrypted
// frames after a successful handshake. The session key is
// unexported and never leaves this package.
//
// sendCtr and recvCtr are guarded by independent mutexes, not one
// shared lock — the same per-direction split the teacher uses for its
// SendNonce/RecvNonce pair — so a Send blocked on a slow writer never
// stalls a concurrent Recv, and vice versa (spec.md §5: "across
// directions there is no ordering relation").
type Session struct {
	aead    cipher.AEAD
	peerPub [32]byte

	sendMu  sync.Mutex
	sendCtr uint64

	recvMu  sync.Mutex
	recvCtr uint64

	destroyed atomic.Bool
	keyCopy   [32]byte // retained only so Destroy can wipe it; never returned
}

// New constructs a Session from a derived 32-byte session key and the
// verified peer public key. Both counters start at zero. Returns an
// error only if the key is the wrong size for ChaCha20-Poly1305, which
// cannot happen for a key produced by the handshake package but is
// checked here defensively since New is part of the public surface.
func New(key [32]byte, peerPub [32]byte) (*Session, error) {
	cryptoinit.Init()

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, perr.Wrap(perr.Invariant, "construct session AEAD", err)
	}
	s := &Session{aead: aead, peerPub: peerPub, keyCopy: key}
	return s, nil
}

// PeerPublicKey returns the verified peer's long-term Ed25519 public key.
func (s *Session) PeerPublicKey() [32]byte {
	return s.peerPub
}

// PeerFingerprint renders the peer's public key as URL-safe unpadded
// Base64 (43 characters), matching Identity.Fingerprint.
func (s *Session) PeerFingerprint() string {
	return identity.Fingerprint(s.peerPub[:])
}

// SendCounter returns the current send-nonce counter.
func (s *Session) SendCounter() uint64 {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.sendCtr
}

// RecvCounter returns the current receive-nonce counter.
func (s *Session) RecvCounter() uint64 {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	return s.recvCtr
}

// Destroy wipes the Session's own copy of the session key (keyCopy)
// and makes later Send/Recv calls fail. The key held inside the
// ChaCha20-Poly1305 AEAD instance is not wiped. Safe to call more than
// once or concurrently with itself; only the first call wipes the key.
func (s *Session) Destroy() {
	if !s.destroyed.CompareAndSwap(false, true) {
		return
	}
	secmem.Zero32(&s.keyCopy)
}
