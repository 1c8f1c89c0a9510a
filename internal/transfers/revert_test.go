package transfers

import (
	"errors"
	"testing"
)

func TestRevertLastTransferOut(t *testing.T) {
	e := newTestEngine(Rules{})
	s := newTestState(map[string][]Player{
		"A": {{ID: 10, FullName: "Ten", Position: "MID"}},
		"B": {{ID: 20}},
	})
	e.OpenWindow(s, 1, []string{"A", "B"})

	if err := e.TransferOut(s, "A", 10, 1); err != nil {
		t.Fatalf("transfer out: %v", err)
	}
	if err := e.RevertLastTransferOut(s); err != nil {
		t.Fatalf("revert: %v", err)
	}

	// Player is back on the roster with the markers stripped.
	var restored Player
	for _, p := range s.Rosters["A"] {
		if p.ID == 10 {
			restored = p
		}
	}
	if restored.ID != 10 {
		t.Fatal("released player not restored")
	}
	if restored.Status != "" || restored.TransferredOutGW != 0 || restored.TransferredInGW != 0 {
		t.Errorf("transfer markers survived revert: %+v", restored)
	}
	if hasPlayer(e.AvailablePlayers(s), 10) {
		t.Error("reverted player still in pool")
	}

	// The audit trail forgets the release entirely.
	if entries := e.History(s, "A"); len(entries) != 0 {
		t.Errorf("history entry survived revert: %+v", entries)
	}

	// Same manager, back in the release phase.
	if m, _ := e.CurrentManager(s); m != "A" {
		t.Errorf("expected A back on the clock, got %s", m)
	}
	if p, _ := e.CurrentPhase(s); p != PhaseOut {
		t.Errorf("expected phase reset to out, got %s", p)
	}
}

func TestRevertRequiresUnmatchedRelease(t *testing.T) {
	e := newTestEngine(Rules{})
	s := newTestState(map[string][]Player{"A": {{ID: 10}}, "B": {{ID: 20}}})

	// No window at all.
	if err := e.RevertLastTransferOut(s); !errors.Is(err, ErrNothingToRevert) {
		t.Fatalf("expected ErrNothingToRevert, got %v", err)
	}

	e.OpenWindow(s, 1, []string{"A", "B"})

	// Release phase, nothing pending.
	if err := e.RevertLastTransferOut(s); !errors.Is(err, ErrNothingToRevert) {
		t.Fatalf("expected ErrNothingToRevert, got %v", err)
	}

	// A completed pair is never unwound.
	if err := e.TransferOut(s, "A", 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.TransferIn(s, "A", 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.RevertLastTransferOut(s); !errors.Is(err, ErrNothingToRevert) {
		t.Fatalf("expected ErrNothingToRevert after completed pair, got %v", err)
	}
}

// Revert is single level: a second call right after a successful one finds
// nothing and changes nothing.
func TestRevertIsIdempotent(t *testing.T) {
	e := newTestEngine(Rules{})
	s := newTestState(map[string][]Player{"A": {{ID: 10}}})
	e.OpenWindow(s, 1, []string{"A"})

	if err := e.TransferOut(s, "A", 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.RevertLastTransferOut(s); err != nil {
		t.Fatal(err)
	}
	if err := e.RevertLastTransferOut(s); !errors.Is(err, ErrNothingToRevert) {
		t.Fatalf("second revert should find nothing, got %v", err)
	}
	if len(s.Rosters["A"]) != 1 || len(s.Transfers.AvailablePlayers) != 0 {
		t.Errorf("second revert mutated state: rosters=%v pool=%v",
			s.Rosters, s.Transfers.AvailablePlayers)
	}
}

// Release, revert, release again: the window flow continues as if the first
// release never happened.
func TestRevertThenRetry(t *testing.T) {
	e := newTestEngine(Rules{})
	s := newTestState(map[string][]Player{"A": {{ID: 10}, {ID: 11}}})
	e.OpenWindow(s, 1, []string{"A"})

	if err := e.TransferOut(s, "A", 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.RevertLastTransferOut(s); err != nil {
		t.Fatal(err)
	}
	if err := e.TransferOut(s, "A", 11, 1); err != nil {
		t.Fatalf("release after revert: %v", err)
	}
	if err := e.TransferIn(s, "A", 11, 1); err != nil {
		t.Fatalf("claim after revert: %v", err)
	}
	entries := e.History(s, "A")
	if len(entries) != 2 {
		t.Fatalf("expected exactly the retried pair in history, got %+v", entries)
	}
	if entries[0].OutPlayer == nil || entries[0].OutPlayer.ID != 11 {
		t.Errorf("history still references the reverted release: %+v", entries[0])
	}
}
