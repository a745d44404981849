package handshake

import "crypto/subtle"

// Policy bundles the peer-acceptance rules a HandshakeContext is
// bound to, per spec.md §3. A client supplies ExpectedPeer (or leaves
// it nil to trust the first key it sees); a server supplies an
// Allowlist (or leaves it nil/empty to accept any client).
type Policy struct {
	// ExpectedPeer, if non-nil, is the public key the client requires
	// the server to present. A mismatch aborts the handshake.
	ExpectedPeer *[32]byte

	// Allowlist, if non-empty, is the set of client public keys a
	// server will accept. An empty or nil Allowlist accepts any client.
	Allowlist [][32]byte
}

// allows reports whether pub is a member of p.Allowlist using a
// constant-time comparison per entry. An empty allowlist allows
// everyone.
func (p Policy) allows(pub [32]byte) bool {
	if len(p.Allowlist) == 0 {
		return true
	}
	for _, entry := range p.Allowlist {
		if subtle.ConstantTimeCompare(entry[:], pub[:]) == 1 {
			return true
		}
	}
	return false
}

// matchesExpectedPeer reports whether pub equals the client's expected
// peer, using a constant-time comparison. No expectation set means any
// peer is accepted (trust-on-first-use).
func (p Policy) matchesExpectedPeer(pub [32]byte) bool {
	if p.ExpectedPeer == nil {
		return true
	}
	return subtle.ConstantTimeCompare(p.ExpectedPeer[:], pub[:]) == 1
}
