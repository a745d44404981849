package handshake

import (
	"io"

	"golang.org/x/crypto/ed25519"

	"p2pnet/cryptoinit"
	"p2pnet/framing"
	"p2pnet/identity"
	"p2pnet/perr"
	"p2pnet/secmem"
	"p2pnet/session"
)

// ClientHandshake runs the client side of the four-message handshake
// over conn, authenticating both ends against each other's long-term
// identity and deriving a fresh Session on success. conn need not be a
// net.Conn — any io.ReadWriter that carries the handshake bytes
// reliably and in order will do.
//
// On any failure the ephemeral keypair is wiped before returning; no
// partial Session is ever handed back.
func ClientHandshake(conn io.ReadWriter, id *identity.Identity, policy Policy) (*session.Session, error) {
	cryptoinit.Init()

	ephemeral, err := newEphemeralKeyPair()
	if err != nil {
		return nil, err
	}
	defer ephemeral.wipe()

	var clientIdentityPub [pubKeyLen]byte
	copy(clientIdentityPub[:], id.PublicKey())

	hello := clientHelloMsg{clientIdentityPub: clientIdentityPub}
	if err := framing.SendExact(conn, hello.marshal()); err != nil {
		return nil, err
	}

	shBuf, err := framing.RecvExact(conn, serverHelloSize)
	if err != nil {
		return nil, err
	}
	sh, err := unmarshalServerHello(shBuf)
	if err != nil {
		return nil, err
	}
	if !policy.matchesExpectedPeer(sh.serverIdentityPub) {
		return nil, perr.New(perr.PolicyReject, "server identity does not match expected peer")
	}

	// Client signature covers challenge || client_ephemeral_pub (64
	// bytes), binding this exchange to the server's challenge and to our
	// own ephemeral key so a captured signature cannot be replayed for a
	// different ephemeral key or a different role.
	clientSigInput := make([]byte, 0, challengeLen+pubKeyLen)
	clientSigInput = append(clientSigInput, sh.challenge[:]...)
	clientSigInput = append(clientSigInput, ephemeral.public[:]...)
	clientSig := ed25519.Sign(id.PrivateKey(), clientSigInput)

	kx := keyExchangeMsg{clientEphemeralPub: ephemeral.public}
	copy(kx.clientSig[:], clientSig)
	if err := framing.SendExact(conn, kx.marshal()); err != nil {
		return nil, err
	}

	acBuf, err := framing.RecvExact(conn, acceptSize)
	if err != nil {
		return nil, err
	}
	ac, err := unmarshalAccept(acBuf)
	if err != nil {
		return nil, err
	}

	// Server signature covers challenge || server_ephemeral_pub ||
	// client_ephemeral_pub (96 bytes) — a different length than the
	// client's signature, so a signature produced for one role can never
	// verify under the other role's expected input.
	serverSigInput := make([]byte, 0, challengeLen+pubKeyLen*2)
	serverSigInput = append(serverSigInput, sh.challenge[:]...)
	serverSigInput = append(serverSigInput, ac.serverEphemeralPub[:]...)
	serverSigInput = append(serverSigInput, ephemeral.public[:]...)
	if !ed25519.Verify(sh.serverIdentityPub[:], serverSigInput, ac.serverSig[:]) {
		return nil, perr.New(perr.BadSignature, "server accept signature invalid")
	}

	shared, err := sharedSecret(ephemeral.private, ac.serverEphemeralPub)
	if err != nil {
		return nil, err
	}

	key := deriveSessionKey(shared, clientIdentityPub, sh.serverIdentityPub)
	secmem.Zero32(&shared)
	defer secmem.Zero32(&key)

	return session.New(key, sh.serverIdentityPub)
}
