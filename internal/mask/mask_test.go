package mask

import "testing"

func TestRegisterNonEmptyStartsMasked(t *testing.T) {
	l := NewLedger()
	l.Register("ADMIN_PASSWORD", "hunter2")
	if l.CurrentState("ADMIN_PASSWORD") != Masked {
		t.Fatalf("non-empty value should start masked")
	}
	if got := l.Display("ADMIN_PASSWORD"); got != Placeholder {
		t.Fatalf("Display while masked: got %q", got)
	}
	if got := l.CurrentReal("ADMIN_PASSWORD"); got != "hunter2" {
		t.Fatalf("CurrentReal: got %q", got)
	}
}

func TestRegisterEmptyIsNeverMasked(t *testing.T) {
	l := NewLedger()
	l.Register("ADMIN_PASSWORD", "")
	if l.CurrentState("ADMIN_PASSWORD") != Revealed {
		t.Fatalf("empty value has nothing to hide")
	}
	if got := l.Display("ADMIN_PASSWORD"); got != "" {
		t.Fatalf("Display of empty field: got %q", got)
	}
}

func TestRevealDoesNotMutateReal(t *testing.T) {
	l := NewLedger()
	l.Register("k", "secret123")
	if got := l.Reveal("k"); got != "secret123" {
		t.Fatalf("Reveal: got %q", got)
	}
	if got := l.CurrentReal("k"); got != "secret123" {
		t.Fatalf("Reveal mutated real value: %q", got)
	}
}

func TestCommitPlaceholderRetainsPriorValue(t *testing.T) {
	l := NewLedger()
	l.Register("k", "secret123")
	// The view hands back the untouched masked display form; it must never
	// be adopted as the literal secret.
	if got := l.Commit("k", Placeholder); got != Placeholder {
		t.Fatalf("Commit display: got %q", got)
	}
	if got := l.CurrentReal("k"); got != "secret123" {
		t.Fatalf("placeholder commit lost the secret: %q", got)
	}
}

func TestCommitAdoptsEnteredValue(t *testing.T) {
	l := NewLedger()
	l.Register("k", "old")
	if got := l.Commit("k", "new-secret"); got != Placeholder {
		t.Fatalf("Commit of non-empty value should re-mask: %q", got)
	}
	if got := l.CurrentReal("k"); got != "new-secret" {
		t.Fatalf("CurrentReal: %q", got)
	}
	if l.CurrentState("k") != Masked {
		t.Fatalf("committed non-empty value should be masked again")
	}
}

func TestCommitEmptyClearsStoredValue(t *testing.T) {
	l := NewLedger()
	l.Register("k", "secret123")
	if got := l.Commit("k", ""); got != "" {
		t.Fatalf("clearing should display empty, got %q", got)
	}
	if got := l.CurrentReal("k"); got != "" {
		t.Fatalf("stale shadow value after empty commit: %q", got)
	}
	if l.CurrentState("k") != Revealed {
		t.Fatalf("cleared field has nothing left to mask")
	}
}

func TestRevealUnregisteredActsAsEmptyRegistration(t *testing.T) {
	l := NewLedger()
	if got := l.Reveal("late"); got != "" {
		t.Fatalf("Reveal of unregistered ref: got %q", got)
	}
	if got := l.Commit("late", "v"); got != Placeholder {
		t.Fatalf("field should be usable after implicit registration: %q", got)
	}
	if got := l.CurrentReal("late"); got != "v" {
		t.Fatalf("CurrentReal: %q", got)
	}
}

func TestReRegisterIsNoOp(t *testing.T) {
	l := NewLedger()
	l.Register("k", "first")
	l.Reveal("k")
	l.Register("k", "second")
	if got := l.CurrentReal("k"); got != "first" {
		t.Fatalf("remount must not clobber ledger state: %q", got)
	}
	if l.CurrentState("k") != Revealed {
		t.Fatalf("remount must not re-mask a revealed field")
	}
}

func TestDropForgetsReference(t *testing.T) {
	l := NewLedger()
	l.Register("k", "secret")
	l.Drop("k")
	if got := l.CurrentReal("k"); got != "" {
		t.Fatalf("dropped ref should read empty: %q", got)
	}
}
