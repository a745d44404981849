package handshake

import (
	"golang.org/x/crypto/blake2b"
)

// sessionKeyDomainTag is the literal domain-separation suffix mixed into
// every session-key derivation, per spec.md §4.4. It is 17 bytes,
// including the trailing zero byte.
var sessionKeyDomainTag = []byte("P2PNetSessionKey\x00")

// deriveSessionKey computes the post-handshake transport key as
// BLAKE2b-256 over the concatenation:
//
//	shared_secret(32) || client_identity_pub(32) || server_identity_pub(32) || domain_tag(17)
//
// The client's identity public key always goes first, regardless of
// which side — client or server — is computing the key, so both ends
// arrive at the same 32-byte output (spec.md §4.4, role-symmetric
// derivation).
func deriveSessionKey(shared [pubKeyLen]byte, clientIdentityPub [pubKeyLen]byte, serverIdentityPub [pubKeyLen]byte) [32]byte {
	input := make([]byte, 0, pubKeyLen*3+len(sessionKeyDomainTag))
	input = append(input, shared[:]...)
	input = append(input, clientIdentityPub[:]...)
	input = append(input, serverIdentityPub[:]...)
	input = append(input, sessionKeyDomainTag...)

	return blake2b.Sum256(input)
}
