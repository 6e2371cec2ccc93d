package state

import "testing"

func TestMemoryManagerDefaultsToIdle(t *testing.T) {
	mgr := NewMemoryManager()

	if got := mgr.GetState(42); got != StateIdle {
		t.Fatalf("GetState = %q, want %q", got, StateIdle)
	}
	if mgr.InProgress(42) {
		t.Fatal("InProgress = true for unknown user")
	}
	sess := mgr.Get(42)
	if sess == nil || sess.State != StateIdle {
		t.Fatalf("Get returned %+v, want idle session", sess)
	}
}

func TestMemoryManagerStateTransitions(t *testing.T) {
	const awaiting = State("awaiting_input")
	mgr := NewMemoryManager()

	mgr.SetState(7, awaiting)
	if got := mgr.GetState(7); got != awaiting {
		t.Fatalf("GetState = %q, want %q", got, awaiting)
	}
	if !mgr.InProgress(7) {
		t.Fatal("InProgress = false after SetState")
	}

	// Other users are unaffected.
	if mgr.InProgress(8) {
		t.Fatal("InProgress leaked to another user")
	}

	mgr.ClearState(7)
	if got := mgr.GetState(7); got != StateIdle {
		t.Fatalf("GetState after ClearState = %q, want %q", got, StateIdle)
	}
	if mgr.InProgress(7) {
		t.Fatal("InProgress = true after ClearState")
	}
}

func TestMemoryManagerClearRemovesSession(t *testing.T) {
	const awaiting = State("awaiting_input")
	mgr := NewMemoryManager()

	mgr.SetState(9, awaiting)
	mgr.Clear(9)
	if mgr.HasState(9) {
		t.Fatal("HasState = true after Clear")
	}
}
