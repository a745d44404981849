package perr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ErrorIncludesKindAndCause(t *testing.T) {
	cause := errors.New("short read")
	err := Wrap(BadFrame, "reading client hello", cause)

	msg := err.Error()
	if msg == "" {
		t.Fatal("expected non-empty error message")
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected Unwrap to expose cause via errors.Is")
	}
}

func TestIs_MatchesKind(t *testing.T) {
	err := New(ReplayOrRewind, "counter 4 <= 5")
	if !Is(err, ReplayOrRewind) {
		t.Fatal("expected Is to match ReplayOrRewind")
	}
	if Is(err, Decrypt) {
		t.Fatal("expected Is to reject mismatched kind")
	}
}

func TestIs_FalseForPlainError(t *testing.T) {
	if Is(errors.New("plain"), BadFrame) {
		t.Fatal("expected Is to reject a non-*Error")
	}
}

func TestIs_MatchesThroughWrapping(t *testing.T) {
	inner := New(Decrypt, "tag mismatch")
	outer := fmt.Errorf("recv failed: %w", inner)
	if !Is(outer, Decrypt) {
		t.Fatal("expected Is to see through fmt.Errorf wrapping")
	}
}

func TestKind_String(t *testing.T) {
	cases := map[Kind]string{
		IoClosed:         "IoClosed",
		IoError:          "IoError",
		BadFrame:         "BadFrame",
		PolicyReject:     "PolicyReject",
		BadSignature:     "BadSignature",
		BadKeyExchange:   "BadKeyExchange",
		ReplayOrRewind:   "ReplayOrRewind",
		Decrypt:          "Decrypt",
		CounterExhausted: "CounterExhausted",
		Invariant:        "Invariant",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
}
