// internal/transfers/executor.go
package transfers

import (
	"github.com/google/uuid"
)

// TransferOut releases a player from the manager's roster into the shared
// pool and flips the manager's phase to in. Preconditions: window active,
// manager on the clock, release phase. When the roster lookup misses (a
// corrupted or rebuilt roster) a minimal placeholder record is synthesized
// (enriched from the catalog when one is wired) instead of blocking the
// whole window; the miss is logged loudly for later repair.
func (e *Engine) TransferOut(s *State, manager string, playerID, gw int) error {
	s.ensureShape()

	if err := e.requireTurn(s, manager, PhaseOut); err != nil {
		return err
	}

	out, found := removeFromRoster(s, manager, playerID)
	if !found {
		out = e.placeholderPlayer(playerID)
		e.logger.Warn().
			Str("manager", manager).
			Int("player_id", playerID).
			Msg("Player missing from roster on transfer out, synthesizing placeholder record")
	}

	out.Status = StatusTransferOut
	out.TransferredOutGW = gw
	s.Transfers.AvailablePlayers = append(s.Transfers.AvailablePlayers, out)

	e.appendHistory(s, HistoryEntry{
		GW:        gw,
		Manager:   manager,
		Action:    ActionTransferOut,
		OutPlayer: &out,
	})

	e.Advance(s)
	return nil
}

// TransferIn claims a replacement for the manager's pending release, appends
// it to their roster and yields the turn to the next manager. The player
// must come from the released pool or, for leagues that allow it, from the
// never-drafted catalog set.
func (e *Engine) TransferIn(s *State, manager string, playerID, gw int) error {
	s.ensureShape()

	if err := e.requireTurn(s, manager, PhaseIn); err != nil {
		return err
	}

	in, source, found := e.takeClaimable(s, playerID)
	if !found {
		return validationErr(ReasonPlayerUnavailable, "player %d is not claimable", playerID)
	}

	if e.rules.EnforcePositions {
		if pending := e.pendingRelease(s, manager); pending != nil && pending.OutPlayer != nil {
			if in.Position != pending.OutPlayer.Position {
				// Undo the pool removal before rejecting.
				if source == sourcePool {
					s.Transfers.AvailablePlayers = append(s.Transfers.AvailablePlayers, in)
				}
				return validationErr(ReasonPositionMismatch, "position mismatch: %s -> %s",
					pending.OutPlayer.Position, in.Position)
			}
		}
	}

	in.Status = StatusActive
	in.TransferredInGW = gw
	in.TransferredOutGW = 0
	in.GWsActive = append(in.GWsActive, gwRange(gw, e.rules.MaxGW)...)
	s.Rosters[manager] = append(s.Rosters[manager], in)

	e.appendHistory(s, HistoryEntry{
		GW:       gw,
		Manager:  manager,
		Action:   ActionTransferIn,
		InPlayer: &in,
	})

	e.Advance(s)
	return nil
}

// PickTransferPlayer claims a pool player without turn enforcement. This is
// the administrative backfill path: always logged under its own action tag
// so scoring can separate organic transfers from repairs.
func (e *Engine) PickTransferPlayer(s *State, manager string, playerID, gw int) error {
	s.ensureShape()

	picked, found := removeFromPool(s, playerID)
	if !found {
		return validationErr(ReasonPlayerUnavailable, "player %d is not in the transfer pool", playerID)
	}

	picked.Status = StatusActive
	picked.TransferredInGW = gw
	picked.TransferredOutGW = 0
	picked.GWsActive = append(picked.GWsActive, gwRange(gw, e.rules.MaxGW)...)
	s.Rosters[manager] = append(s.Rosters[manager], picked)

	e.appendHistory(s, HistoryEntry{
		GW:       gw,
		Manager:  manager,
		Action:   ActionPickTransfer,
		InPlayer: &picked,
	})
	return nil
}

// requireTurn validates the window/turn/phase preconditions shared by the
// strict transfer operations.
func (e *Engine) requireTurn(s *State, manager string, want Phase) error {
	if !e.IsActive(s) {
		return validationErr(ReasonWindowInactive, "no transfer window is active")
	}
	current, _ := e.CurrentManager(s)
	if current != manager {
		return validationErr(ReasonNotYourTurn, "it is %s's turn, not %s's", current, manager)
	}
	if phase, _ := e.CurrentPhase(s); phase != want {
		return validationErr(ReasonWrongPhase, "expected phase %s, window is in phase %s", want, phase)
	}
	return nil
}

type claimSource int

const (
	sourcePool claimSource = iota
	sourceUndrafted
)

// takeClaimable resolves where an incoming player comes from: the released
// pool first, then, for leagues that allow it, the never-drafted catalog
// set. The union is computed at read time; undrafted players are never
// duplicated into the pool store.
func (e *Engine) takeClaimable(s *State, playerID int) (Player, claimSource, bool) {
	if p, ok := removeFromPool(s, playerID); ok {
		return p, sourcePool, true
	}
	if !e.rules.AllowUndrafted || e.catalog == nil {
		return Player{}, sourcePool, false
	}
	p, ok := e.catalog.PlayerByID(playerID)
	if !ok {
		return Player{}, sourceUndrafted, false
	}
	if _, owned := s.OwnedIDs()[p.ID]; owned {
		return Player{}, sourceUndrafted, false
	}
	return p, sourceUndrafted, true
}

// pendingRelease returns the manager's most recent transfer_out entry with
// no matching transfer_in, or nil.
func (e *Engine) pendingRelease(s *State, manager string) *HistoryEntry {
	history := s.Transfers.History
	for i := len(history) - 1; i >= 0; i-- {
		entry := &history[i]
		if entry.Manager != manager {
			continue
		}
		switch entry.Action {
		case ActionTransferIn:
			return nil
		case ActionTransferOut:
			return entry
		}
	}
	return nil
}

func (e *Engine) placeholderPlayer(playerID int) Player {
	if e.catalog != nil {
		if p, ok := e.catalog.PlayerByID(playerID); ok {
			return p
		}
	}
	return Player{ID: playerID}
}

func (e *Engine) appendHistory(s *State, entry HistoryEntry) {
	entry.ID = uuid.NewString()
	entry.Timestamp = e.now()
	entry.League = e.league
	s.Transfers.History = append(s.Transfers.History, entry)
}

func removeFromRoster(s *State, manager string, playerID int) (Player, bool) {
	roster := s.Rosters[manager]
	for i, p := range roster {
		if p.ID == playerID {
			s.Rosters[manager] = append(roster[:i:i], roster[i+1:]...)
			return p, true
		}
	}
	return Player{}, false
}

func removeFromPool(s *State, playerID int) (Player, bool) {
	pool := s.Transfers.AvailablePlayers
	for i, p := range pool {
		if p.ID == playerID {
			s.Transfers.AvailablePlayers = append(pool[:i:i], pool[i+1:]...)
			return p, true
		}
	}
	return Player{}, false
}
