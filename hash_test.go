package mwalimu

import "testing"

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint(ModeSummarize, "3")
	b := Fingerprint(ModeSummarize, "3")
	if a != b {
		t.Errorf("same input produced different keys: %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Errorf("expected 64-char hex key, got %d chars", len(a))
	}
}

func TestFingerprint_ModeNamespacing(t *testing.T) {
	sum := Fingerprint(ModeSummarize, "3")
	rev := Fingerprint(ModeRevision, "3")
	ask := Fingerprint(ModeAsk, "3")

	if sum == rev || sum == ask || rev == ask {
		t.Errorf("modes must namespace keys: summarize=%q revision=%q ask=%q", sum, rev, ask)
	}
}

func TestFingerprint_TrimsParam(t *testing.T) {
	if Fingerprint(ModeAsk, "what is osmosis?") != Fingerprint(ModeAsk, "  what is osmosis?  ") {
		t.Error("surrounding whitespace should not change the key")
	}
	if Fingerprint(ModeAsk, "what is osmosis?") == Fingerprint(ModeAsk, "what is diffusion?") {
		t.Error("different questions must not collide")
	}
}
