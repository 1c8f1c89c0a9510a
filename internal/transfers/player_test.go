package transfers

import (
	"testing"
	"time"
)

func TestNormalizePlayer(t *testing.T) {
	got := NormalizePlayer(Player{ID: 10}, 5)
	if got.Status != StatusActive {
		t.Errorf("expected status active, got %q", got.Status)
	}
	if want := []int{1, 2, 3, 4, 5}; !equalInts(got.GWsActive, want) {
		t.Errorf("expected gws_active %v, got %v", want, got.GWsActive)
	}
	if got.TransferredInGW != 1 {
		t.Errorf("expected transferred_in_gw 1, got %d", got.TransferredInGW)
	}
}

func TestNormalizePlayerKeepsExistingFields(t *testing.T) {
	p := Player{
		ID:              10,
		Status:          StatusTransferOut,
		GWsActive:       []int{3, 4},
		TransferredInGW: 3,
	}
	got := NormalizePlayer(p, 8)
	if got.Status != StatusTransferOut {
		t.Errorf("status overwritten: %q", got.Status)
	}
	if !equalInts(got.GWsActive, []int{3, 4}) {
		t.Errorf("gws_active overwritten: %v", got.GWsActive)
	}
	if got.TransferredInGW != 3 {
		t.Errorf("transferred_in_gw overwritten: %d", got.TransferredInGW)
	}
}

func TestNormalizeAll(t *testing.T) {
	e := newTestEngine(Rules{})
	s := newTestState(map[string][]Player{
		"A": {{ID: 1}, {ID: 2, Status: StatusActive, GWsActive: []int{1}, TransferredInGW: 1}},
		"B": {{ID: 3}},
	})

	e.NormalizeAll(s, 3)

	for manager, roster := range s.Rosters {
		for _, p := range roster {
			if p.Status == "" || len(p.GWsActive) == 0 || p.TransferredInGW == 0 {
				t.Errorf("%s player %d not normalized: %+v", manager, p.ID, p)
			}
		}
	}
}

func TestHistoryFilters(t *testing.T) {
	e := newTestEngine(Rules{})
	s := newTestState(map[string][]Player{"A": {{ID: 10}}, "B": {{ID: 20}}})
	e.OpenWindow(s, 1, []string{"A", "B"})

	if err := e.TransferOut(s, "A", 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.TransferIn(s, "A", 10, 1); err != nil {
		t.Fatal(err)
	}
	if err := e.TransferOut(s, "B", 20, 1); err != nil {
		t.Fatal(err)
	}

	if got := e.History(s, ""); len(got) != 3 {
		t.Errorf("expected 3 entries, got %d", len(got))
	}
	if got := e.History(s, "A"); len(got) != 2 {
		t.Errorf("expected 2 entries for A, got %d", len(got))
	}
	if got := e.History(s, "C"); len(got) != 0 {
		t.Errorf("expected no entries for C, got %d", len(got))
	}

	// All entries carry the fixed clock's day.
	if got := e.HistoryOn(s, testClock()); len(got) != 3 {
		t.Errorf("expected 3 entries today, got %d", len(got))
	}
	if got := e.HistoryOn(s, testClock().AddDate(0, 0, -1)); len(got) != 0 {
		t.Errorf("expected no entries yesterday, got %d", len(got))
	}
}

func TestHistoryOnUsesUTCDay(t *testing.T) {
	e := newTestEngine(Rules{})
	s := NewState()
	s.Transfers.History = []HistoryEntry{{
		ID:        "x",
		Manager:   "A",
		Action:    ActionTransferOut,
		Timestamp: time.Date(2026, 8, 30, 23, 30, 0, 0, time.UTC),
	}}

	// 01:30 on the 31st in UTC+2 is still the 30th in UTC.
	local := time.Date(2026, 8, 31, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	if got := e.HistoryOn(s, local); len(got) != 1 {
		t.Errorf("expected the entry to match its UTC day, got %d entries", len(got))
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
