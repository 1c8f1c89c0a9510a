package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/valdraft/transferdesk/internal/transfers"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "transferdesk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLoadMissingLeague(t *testing.T) {
	st := openTestStore(t)

	s, err := st.Load(context.Background(), "ucl")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s == nil || s.Rosters == nil || s.Transfers.History == nil || s.Transfers.AvailablePlayers == nil {
		t.Fatalf("missing league should yield a shaped empty state, got %+v", s)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	s := transfers.NewState()
	s.Rosters["A"] = []transfers.Player{{ID: 10, FullName: "Ten", Position: "MID"}}
	s.Transfers.AvailablePlayers = []transfers.Player{{ID: 20, Status: transfers.StatusTransferOut}}
	s.Transfers.ActiveWindow = &transfers.Window{
		TriggerGW:     4,
		TotalRounds:   3,
		CurrentRound:  2,
		ManagersOrder: []string{"A", "B"},
		Phase:         transfers.PhaseIn,
	}

	if err := st.Save(ctx, "top4", s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load(ctx, "top4")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(got.Rosters["A"]) != 1 || got.Rosters["A"][0].ID != 10 {
		t.Errorf("roster lost in roundtrip: %+v", got.Rosters)
	}
	if len(got.Transfers.AvailablePlayers) != 1 || got.Transfers.AvailablePlayers[0].ID != 20 {
		t.Errorf("pool lost in roundtrip: %+v", got.Transfers.AvailablePlayers)
	}
	w := got.Transfers.ActiveWindow
	if w == nil || w.TriggerGW != 4 || w.TotalRounds != 3 || w.CurrentRound != 2 || w.Phase != transfers.PhaseIn {
		t.Errorf("window lost in roundtrip: %+v", w)
	}
}

func TestSaveIsolatesLeagues(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	a := transfers.NewState()
	a.Rosters["A"] = []transfers.Player{{ID: 1}}
	b := transfers.NewState()
	b.Rosters["B"] = []transfers.Player{{ID: 2}}

	if err := st.Save(ctx, "ucl", a); err != nil {
		t.Fatal(err)
	}
	if err := st.Save(ctx, "epl", b); err != nil {
		t.Fatal(err)
	}

	got, err := st.Load(ctx, "ucl")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.Rosters["B"]; ok {
		t.Error("epl roster leaked into ucl document")
	}

	leagues, err := st.Leagues(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(leagues) != 2 || leagues[0] != "epl" || leagues[1] != "ucl" {
		t.Errorf("unexpected league list %v", leagues)
	}
}

func TestUpdateAppliesMutation(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, err := st.Update(ctx, "ucl", func(s *transfers.State) error {
		s.Rosters["A"] = []transfers.Player{{ID: 10}}
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := st.Load(ctx, "ucl")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rosters["A"]) != 1 {
		t.Errorf("update not persisted: %+v", got.Rosters)
	}
}

func TestUpdateRollsBackOnError(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	seed := transfers.NewState()
	seed.Rosters["A"] = []transfers.Player{{ID: 10}}
	if err := st.Save(ctx, "ucl", seed); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	_, err := st.Update(ctx, "ucl", func(s *transfers.State) error {
		s.Rosters["A"] = nil
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error back, got %v", err)
	}

	got, err := st.Load(ctx, "ucl")
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rosters["A"]) != 1 {
		t.Error("failed update leaked a partial write")
	}
}

func TestEnsureDSNOptions(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"file.db", "file.db?_fk=1&_txlock=immediate"},
		{"file.db?_fk=0", "file.db?_fk=0&_txlock=immediate"},
		{"file.db?_txlock=deferred", "file.db?_txlock=deferred&_fk=1"},
		{"file.db?_fk=1&_txlock=immediate", "file.db?_fk=1&_txlock=immediate"},
	}
	for _, tt := range tests {
		if got := ensureDSNOptions(tt.in); got != tt.want {
			t.Errorf("ensureDSNOptions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
