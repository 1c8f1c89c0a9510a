// internal/transfers/types.go
package transfers

import (
	"strings"
	"time"
)

// Phase is the step a manager is on within their transfer turn.
type Phase string

const (
	PhaseOut Phase = "out"
	PhaseIn  Phase = "in"
)

func (p Phase) String() string {
	return string(p)
}

// Action tags a history entry so scoring can tell organic transfers apart
// from administrative repairs.
type Action string

const (
	ActionTransferOut  Action = "transfer_out"
	ActionTransferIn   Action = "transfer_in"
	ActionPickTransfer Action = "pick_transfer_player"
)

// PlayerStatus values carried on roster and pool entries.
const (
	StatusActive      = "active"
	StatusTransferOut = "transfer_out"
	StatusTransferIn  = "transfer_in"
)

// Player is one roster or pool entry. A player record lives in exactly one
// roster or in the available pool, never both.
type Player struct {
	ID               int     `json:"playerId"`
	FullName         string  `json:"fullName,omitempty"`
	ClubName         string  `json:"clubName,omitempty"`
	Position         string  `json:"position,omitempty"`
	Price            float64 `json:"price,omitempty"`
	Status           string  `json:"status,omitempty"`
	GWsActive        []int   `json:"gws_active,omitempty"`
	TransferredInGW  int     `json:"transferred_in_gw,omitempty"`
	TransferredOutGW int     `json:"transferred_out_gw,omitempty"`
}

// Window is the single in-flight transfer window for a league.
type Window struct {
	TriggerGW           int       `json:"gw"`
	TotalRounds         int       `json:"total_rounds"`
	CurrentRound        int       `json:"current_round"`
	ManagersOrder       []string  `json:"managers_order"`
	CurrentManagerIndex int       `json:"current_manager_index"`
	Phase               Phase     `json:"transfer_phase"`
	StartedAt           time.Time `json:"started_at"`
}

// HistoryEntry is one append-only audit record.
type HistoryEntry struct {
	ID        string    `json:"id"`
	GW        int       `json:"gw"`
	Manager   string    `json:"manager"`
	Action    Action    `json:"action"`
	OutPlayer *Player   `json:"out_player,omitempty"`
	InPlayer  *Player   `json:"in_player,omitempty"`
	Timestamp time.Time `json:"ts"`
	League    string    `json:"league"`
}

// Ledger holds everything transfer related for one league.
type Ledger struct {
	History          []HistoryEntry `json:"history"`
	AvailablePlayers []Player       `json:"available_players"`
	ActiveWindow     *Window        `json:"active_window"`
}

// State is the full persisted document for one league: rosters plus the
// transfer ledger. Every operation takes a State, mutates it in memory and
// hands it back to the store for an atomic replace.
type State struct {
	Rosters   map[string][]Player `json:"rosters"`
	Transfers Ledger              `json:"transfers"`
}

// NewState returns an empty but fully shaped league state.
func NewState() *State {
	s := &State{}
	s.ensureShape()
	return s
}

// ensureShape backfills nil containers so callers never branch on them.
func (s *State) ensureShape() {
	if s.Rosters == nil {
		s.Rosters = map[string][]Player{}
	}
	if s.Transfers.History == nil {
		s.Transfers.History = []HistoryEntry{}
	}
	if s.Transfers.AvailablePlayers == nil {
		s.Transfers.AvailablePlayers = []Player{}
	}
}

// OwnedIDs returns every player id currently held by a roster.
func (s *State) OwnedIDs() map[int]struct{} {
	owned := make(map[int]struct{})
	for _, roster := range s.Rosters {
		for _, p := range roster {
			owned[p.ID] = struct{}{}
		}
	}
	return owned
}

// Rules are the per-league knobs the executor honors.
type Rules struct {
	// MaxGW bounds the gws_active range stamped on incoming players.
	MaxGW int
	// AllowUndrafted lets transfer_in claim never-drafted catalog players
	// in addition to the released pool.
	AllowUndrafted bool
	// EnforcePositions requires a transfer_in to match the position of the
	// manager's pending transfer_out.
	EnforcePositions bool
}

// DefaultRules mirrors a 38-gameweek domestic season.
func DefaultRules() Rules {
	return Rules{MaxGW: 38}
}

// Catalog is the player-catalog collaborator. It is consulted to enrich
// placeholder records and to expose the never-drafted set; a nil catalog is
// tolerated everywhere.
type Catalog interface {
	PlayerByID(id int) (Player, bool)
	Players() []Player
}

func trimOrder(order []string) []string {
	trimmed := make([]string, 0, len(order))
	for _, m := range order {
		if m = strings.TrimSpace(m); m != "" {
			trimmed = append(trimmed, m)
		}
	}
	return trimmed
}
