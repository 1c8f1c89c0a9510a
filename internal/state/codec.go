// internal/state/codec.go
package state

import (
	"encoding/json"

	"github.com/valdraft/transferdesk/internal/transfers"
)

// Older deployments kept a second, flat copy of the turn state alongside
// the canonical window. Readers of old documents still exist, so the codec
// keeps that mirror alive at the serialization boundary: decode reconciles
// a stale or missing canonical window from the mirror, encode re-derives
// the mirror from the canonical window. Nothing above this package ever
// sees the legacy shape.

type legacyWindow struct {
	Active           bool     `json:"active"`
	ParticipantOrder []string `json:"participant_order"`
	CurrentIndex     int      `json:"current_index"`
	CurrentUser      string   `json:"current_user"`
	TransferPhase    string   `json:"transfer_phase"`
}

type wireState struct {
	Rosters   map[string][]transfers.Player `json:"rosters"`
	Transfers transfers.Ledger              `json:"transfers"`
	Legacy    *legacyWindow                 `json:"transfer_window,omitempty"`
}

func decodeState(doc []byte) (*transfers.State, error) {
	var w wireState
	if err := json.Unmarshal(doc, &w); err != nil {
		return nil, err
	}

	s := &transfers.State{
		Rosters:   w.Rosters,
		Transfers: w.Transfers,
	}
	if s.Rosters == nil {
		s.Rosters = map[string][]transfers.Player{}
	}
	if s.Transfers.History == nil {
		s.Transfers.History = []transfers.HistoryEntry{}
	}
	if s.Transfers.AvailablePlayers == nil {
		s.Transfers.AvailablePlayers = []transfers.Player{}
	}
	reconcileLegacy(s, w.Legacy)
	return s, nil
}

func encodeState(s *transfers.State) ([]byte, error) {
	w := wireState{
		Rosters:   s.Rosters,
		Transfers: s.Transfers,
		Legacy:    deriveLegacy(s.Transfers.ActiveWindow),
	}
	return json.Marshal(w)
}

// reconcileLegacy rebuilds a usable canonical window from the mirror when
// the canonical one is missing or has lost its manager order. Documents
// written before the canonical window existed only carry the mirror.
func reconcileLegacy(s *transfers.State, legacy *legacyWindow) {
	if legacy == nil || !legacy.Active || len(legacy.ParticipantOrder) == 0 {
		return
	}
	w := s.Transfers.ActiveWindow
	if w != nil && len(w.ManagersOrder) > 0 {
		return
	}

	phase := transfers.Phase(legacy.TransferPhase)
	if phase != transfers.PhaseIn {
		phase = transfers.PhaseOut
	}
	idx := legacy.CurrentIndex
	if idx < 0 || idx >= len(legacy.ParticipantOrder) {
		idx = 0
	}
	// The mirror never carried round bookkeeping; a reconciled window is a
	// single-round window resuming at the mirrored turn.
	s.Transfers.ActiveWindow = &transfers.Window{
		TotalRounds:         1,
		CurrentRound:        1,
		ManagersOrder:       legacy.ParticipantOrder,
		CurrentManagerIndex: idx,
		Phase:               phase,
	}
}

func deriveLegacy(w *transfers.Window) *legacyWindow {
	if w == nil || len(w.ManagersOrder) == 0 || w.CurrentRound > w.TotalRounds {
		return &legacyWindow{Active: false}
	}
	current := ""
	if w.CurrentManagerIndex >= 0 && w.CurrentManagerIndex < len(w.ManagersOrder) {
		current = w.ManagersOrder[w.CurrentManagerIndex]
	}
	return &legacyWindow{
		Active:           true,
		ParticipantOrder: w.ManagersOrder,
		CurrentIndex:     w.CurrentManagerIndex,
		CurrentUser:      current,
		TransferPhase:    w.Phase.String(),
	}
}
