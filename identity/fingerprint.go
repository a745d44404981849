package identity

import "encoding/base64"

// FingerprintLength is the fixed length of a Fingerprint: ceil(32*8/6)
// Base64 characters with no padding.
const FingerprintLength = 43

// Fingerprint renders a 32-byte public key as URL-safe, unpadded
// Base64 — the format used in logs, CLI arguments, and
// Session.PeerFingerprint.
func Fingerprint(publicKey []byte) string {
	return base64.RawURLEncoding.EncodeToString(publicKey)
}
