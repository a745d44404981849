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

// ServerHandshake runs the server side of the four-message handshake
// over conn, mirroring ClientHandshake. It issues the challenge that
// both signatures bind to and checks the client's identity against
// policy before ever signing an Accept message.
func ServerHandshake(conn io.ReadWriter, id *identity.Identity, policy Policy) (*session.Session, error) {
	cryptoinit.Init()

	ephemeral, err := newEphemeralKeyPair()
	if err != nil {
		return nil, err
	}
	defer ephemeral.wipe()

	challenge, err := newChallenge()
	if err != nil {
		return nil, err
	}

	chBuf, err := framing.RecvExact(conn, clientHelloSize)
	if err != nil {
		return nil, err
	}
	ch, err := unmarshalClientHello(chBuf)
	if err != nil {
		return nil, err
	}
	if !policy.allows(ch.clientIdentityPub) {
		return nil, perr.New(perr.PolicyReject, "client identity rejected by allowlist")
	}

	var serverIdentityPub [pubKeyLen]byte
	copy(serverIdentityPub[:], id.PublicKey())

	sh := serverHelloMsg{serverIdentityPub: serverIdentityPub, challenge: challenge}
	if err := framing.SendExact(conn, sh.marshal()); err != nil {
		return nil, err
	}

	kxBuf, err := framing.RecvExact(conn, keyExchangeSize)
	if err != nil {
		return nil, err
	}
	kx, err := unmarshalKeyExchange(kxBuf)
	if err != nil {
		return nil, err
	}

	clientSigInput := make([]byte, 0, challengeLen+pubKeyLen)
	clientSigInput = append(clientSigInput, challenge[:]...)
	clientSigInput = append(clientSigInput, kx.clientEphemeralPub[:]...)
	if !ed25519.Verify(ch.clientIdentityPub[:], clientSigInput, kx.clientSig[:]) {
		return nil, perr.New(perr.BadSignature, "client key exchange signature invalid")
	}

	serverSigInput := make([]byte, 0, challengeLen+pubKeyLen*2)
	serverSigInput = append(serverSigInput, challenge[:]...)
	serverSigInput = append(serverSigInput, ephemeral.public[:]...)
	serverSigInput = append(serverSigInput, kx.clientEphemeralPub[:]...)
	serverSig := ed25519.Sign(id.PrivateKey(), serverSigInput)

	ac := acceptMsg{serverEphemeralPub: ephemeral.public}
	copy(ac.serverSig[:], serverSig)
	if err := framing.SendExact(conn, ac.marshal()); err != nil {
		return nil, err
	}

	shared, err := sharedSecret(ephemeral.private, kx.clientEphemeralPub)
	if err != nil {
		return nil, err
	}

	key := deriveSessionKey(shared, ch.clientIdentityPub, serverIdentityPub)
	secmem.Zero32(&shared)
	defer secmem.Zero32(&key)

	return session.New(key, ch.clientIdentityPub)
}
