package identity

import (
	"bufio"
	"encoding/base64"
	"os"
	"strings"

	"golang.org/x/crypto/ed25519"

	"p2pnet/perr"
)

// The file format is line-oriented ASCII, standard (padded) Base64 —
// distinct from the URL-safe, unpadded Base64 used for fingerprints.
const (
	beginPrivate = "-----BEGIN P2P PRIVATE KEY-----"
	endPrivate   = "-----END P2P PRIVATE KEY-----"
	beginPublic  = "-----BEGIN P2P PUBLIC KEY-----"
	endPublic    = "-----END P2P PUBLIC KEY-----"
)

// Save writes id to path in the §6 identity file format, restricting
// permissions to owner read/write where the host OS supports it.
func Save(id *Identity, path string) error {
	var b strings.Builder
	b.WriteString(beginPrivate)
	b.WriteByte('\n')
	b.WriteString(base64.StdEncoding.EncodeToString(id.private))
	b.WriteByte('\n')
	b.WriteString(endPrivate)
	b.WriteByte('\n')
	b.WriteString(beginPublic)
	b.WriteByte('\n')
	b.WriteString(base64.StdEncoding.EncodeToString(id.public))
	b.WriteByte('\n')
	b.WriteString(endPublic)
	b.WriteByte('\n')

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return perr.Wrap(perr.Invariant, "open identity file for write", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(b.String()); err != nil {
		return perr.Wrap(perr.Invariant, "write identity file", err)
	}
	return nil
}

// Load reads and parses path, verifies the embedded-public-key
// invariant, and returns the resulting Identity. A structurally
// malformed file or a failed Verify is a terminal Invariant error.
func Load(path string) (*Identity, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.Wrap(perr.Invariant, "open identity file", err)
	}
	defer func() { _ = f.Close() }()

	sections := map[string]string{}
	var currentBegin string
	var body strings.Builder

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case beginPrivate, beginPublic:
			currentBegin = line
			body.Reset()
		case endPrivate:
			if currentBegin != beginPrivate {
				return nil, perr.New(perr.Invariant, "unexpected END PRIVATE KEY marker")
			}
			sections[beginPrivate] = body.String()
			currentBegin = ""
		case endPublic:
			if currentBegin != beginPublic {
				return nil, perr.New(perr.Invariant, "unexpected END PUBLIC KEY marker")
			}
			sections[beginPublic] = body.String()
			currentBegin = ""
		default:
			if currentBegin != "" {
				body.WriteString(line)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, perr.Wrap(perr.Invariant, "scan identity file", err)
	}

	privB64, ok := sections[beginPrivate]
	if !ok {
		return nil, perr.New(perr.Invariant, "identity file missing private key section")
	}
	pubB64, ok := sections[beginPublic]
	if !ok {
		return nil, perr.New(perr.Invariant, "identity file missing public key section")
	}

	priv, err := base64.StdEncoding.DecodeString(privB64)
	if err != nil {
		return nil, perr.Wrap(perr.Invariant, "decode private key", err)
	}
	pub, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return nil, perr.Wrap(perr.Invariant, "decode public key", err)
	}

	return FromKeys(ed25519.PublicKey(pub), ed25519.PrivateKey(priv))
}
