// internal/transfers/revert.go
package transfers

// RevertLastTransferOut is the administrative escape hatch for an accidental
// release: it undoes the current manager's most recent transfer_out that has
// no matching transfer_in. The player leaves the pool, rejoins the original
// roster with the transfer markers stripped, the history entry is deleted
// and the phase resets to out for the same manager, with no index or round
// change. Exactly one level of undo; completed turns are never unwound.
func (e *Engine) RevertLastTransferOut(s *State) error {
	s.ensureShape()

	if phase, ok := e.CurrentPhase(s); !ok || phase != PhaseIn {
		return ErrNothingToRevert
	}
	manager, _ := e.CurrentManager(s)

	history := s.Transfers.History
	entryIdx := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Manager == manager && history[i].Action == ActionTransferOut {
			entryIdx = i
			break
		}
	}
	if entryIdx == -1 || history[entryIdx].OutPlayer == nil {
		return ErrNothingToRevert
	}

	playerID := history[entryIdx].OutPlayer.ID
	restored, inPool := removeFromPool(s, playerID)
	if !inPool {
		// The release was already matched or repaired some other way.
		return ErrNothingToRevert
	}

	restored.Status = ""
	restored.TransferredOutGW = 0
	restored.TransferredInGW = 0

	roster := s.Rosters[manager]
	alreadyThere := false
	for _, p := range roster {
		if p.ID == playerID {
			alreadyThere = true
			break
		}
	}
	if !alreadyThere {
		s.Rosters[manager] = append(roster, restored)
	}

	s.Transfers.History = append(history[:entryIdx:entryIdx], history[entryIdx+1:]...)

	w := s.Transfers.ActiveWindow
	w.Phase = PhaseOut
	for i, m := range w.ManagersOrder {
		if m == manager {
			w.CurrentManagerIndex = i
			break
		}
	}

	e.logger.Info().
		Str("manager", manager).
		Int("player_id", playerID).
		Msg("Reverted unmatched transfer out")
	return nil
}
