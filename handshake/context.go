package handshake

import (
	"crypto/rand"
	"io"

	"golang.org/x/crypto/curve25519"

	"p2pnet/perr"
	"p2pnet/secmem"
)

// ephemeralKeyPair is the per-handshake X25519 keypair that provides
// forward secrecy (spec.md §3, HandshakeContext). Its secret half must
// be wiped on every exit path.
type ephemeralKeyPair struct {
	public  [pubKeyLen]byte
	private [pubKeyLen]byte
}

func newEphemeralKeyPair() (ephemeralKeyPair, error) {
	var kp ephemeralKeyPair
	if _, err := io.ReadFull(rand.Reader, kp.private[:]); err != nil {
		return ephemeralKeyPair{}, perr.Wrap(perr.Invariant, "generate ephemeral private key", err)
	}
	pub, err := curve25519.X25519(kp.private[:], curve25519.Basepoint)
	if err != nil {
		return ephemeralKeyPair{}, perr.Wrap(perr.Invariant, "derive ephemeral public key", err)
	}
	copy(kp.public[:], pub)
	return kp, nil
}

func (kp *ephemeralKeyPair) wipe() {
	secmem.Zero32(&kp.private)
}

// sharedSecret runs X25519 ECDH between our ephemeral private key and
// the peer's ephemeral public key, rejecting the all-zero output that
// results from a low-order point attack.
func sharedSecret(ourPrivate [pubKeyLen]byte, theirPublic [pubKeyLen]byte) ([pubKeyLen]byte, error) {
	out, err := curve25519.X25519(ourPrivate[:], theirPublic[:])
	if err != nil {
		return [pubKeyLen]byte{}, perr.Wrap(perr.BadKeyExchange, "x25519", err)
	}
	var secret [pubKeyLen]byte
	copy(secret[:], out)
	if isAllZero(secret[:]) {
		return [pubKeyLen]byte{}, perr.New(perr.BadKeyExchange, "shared secret is all-zero")
	}
	return secret, nil
}

func isAllZero(b []byte) bool {
	var acc byte
	for _, v := range b {
		acc |= v
	}
	return acc == 0
}

func newChallenge() ([challengeLen]byte, error) {
	var c [challengeLen]byte
	if _, err := io.ReadFull(rand.Reader, c[:]); err != nil {
		return c, perr.Wrap(perr.Invariant, "generate challenge", err)
	}
	return c, nil
}
