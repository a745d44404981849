// Package identity implements long-term Ed25519 signing keypairs: the
// thing a peer is, independent of any one connection or session.
package identity

import (
	"crypto/rand"
	"bytes"

	"golang.org/x/crypto/ed25519"

	"p2pnet/cryptoinit"
	"p2pnet/perr"
	"p2pnet/secmem"
)

// Identity is a long-term Ed25519 keypair. It is immutable after
// creation; the only permitted mutation is Destroy, which wipes both
// keys before the value is discarded.
type Identity struct {
	public  ed25519.PublicKey  // 32 bytes
	private ed25519.PrivateKey // 64 bytes: seed(32) || public(32)
}

// Generate creates a new Identity from the platform CSPRNG.
func Generate() (*Identity, error) {
	cryptoinit.Init()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, perr.Wrap(perr.Invariant, "generate ed25519 keypair", err)
	}
	return &Identity{public: pub, private: priv}, nil
}

// FromKeys builds an Identity from existing key material, verifying the
// embedded-public-key invariant before returning it.
func FromKeys(public ed25519.PublicKey, private ed25519.PrivateKey) (*Identity, error) {
	id := &Identity{public: public, private: private}
	if err := Verify(id); err != nil {
		return nil, err
	}
	return id, nil
}

// Verify confirms that the trailing 32 bytes of the secret key equal
// the embedded public key, per the Identity invariant in spec.md §3.
func Verify(id *Identity) error {
	if len(id.public) != ed25519.PublicKeySize {
		return perr.New(perr.Invariant, "public key has wrong length")
	}
	if len(id.private) != ed25519.PrivateKeySize {
		return perr.New(perr.Invariant, "private key has wrong length")
	}
	embedded := id.private[32:]
	if !bytes.Equal(embedded, id.public) {
		return perr.New(perr.Invariant, "private key does not embed the matching public key")
	}
	return nil
}

// PublicKey returns the 32-byte Ed25519 public key.
func (id *Identity) PublicKey() ed25519.PublicKey {
	return id.public
}

// PrivateKey returns the 64-byte Ed25519 private key. Borrowed, not
// copied, by the handshake package — callers must not retain it beyond
// the Identity's lifetime.
func (id *Identity) PrivateKey() ed25519.PrivateKey {
	return id.private
}

// Fingerprint returns the URL-safe, unpadded Base64 encoding of the
// public key: exactly 43 characters for a 32-byte key.
func (id *Identity) Fingerprint() string {
	return Fingerprint(id.public)
}

// Destroy wipes both keys in place. The Identity must not be used
// afterward.
func (id *Identity) Destroy() {
	secmem.Zero(id.private)
	secmem.Zero(id.public)
}
