// Package perr defines the error kinds the p2pnet core distinguishes,
// per the failure-semantics table in spec.md §7. Every error the core
// returns across a trust boundary (handshake, transport, identity) is
// wrapped in an *Error so callers can switch on Kind without string
// matching.
package perr

import "errors"

// Kind classifies why an operation failed.
type Kind int

const (
	// IoClosed means the byte-stream reached EOF or returned 0.
	IoClosed Kind = iota
	// IoError means the byte-stream returned a negative/error result.
	IoError
	// BadFrame means a length was out of bounds, a message tag was
	// wrong, or an exact-read came up short.
	BadFrame
	// PolicyReject means the peer identity was rejected by the caller's
	// allowlist or expected-peer check.
	PolicyReject
	// BadSignature means a signature failed verification.
	BadSignature
	// BadKeyExchange means the ECDH shared secret was all-zero or the
	// ephemeral point was malformed.
	BadKeyExchange
	// ReplayOrRewind means a received nonce counter was below the
	// session's receive counter (the next expected counter), i.e. the
	// frame was replayed or arrived after a later one.
	ReplayOrRewind
	// Decrypt means AEAD tag verification failed.
	Decrypt
	// CounterExhausted means the send counter would overflow.
	CounterExhausted
	// Invariant means an Identity failed its self-consistency check.
	Invariant
)

func (k Kind) String() string {
	switch k {
	case IoClosed:
		return "IoClosed"
	case IoError:
		return "IoError"
	case BadFrame:
		return "BadFrame"
	case PolicyReject:
		return "PolicyReject"
	case BadSignature:
		return "BadSignature"
	case BadKeyExchange:
		return "BadKeyExchange"
	case ReplayOrRewind:
		return "ReplayOrRewind"
	case Decrypt:
		return "Decrypt"
	case CounterExhausted:
		return "CounterExhausted"
	case Invariant:
		return "Invariant"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type returned by the core. It carries a
// Kind for programmatic dispatch and wraps an underlying cause, if any.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Msg + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an *Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap constructs an *Error wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping as
// needed (compatible with errors.Is).
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
