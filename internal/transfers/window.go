// internal/transfers/window.go
package transfers

// Window lifecycle: OpenWindow creates the single active window for a
// league, Advance moves it through out/in phases and rounds, CloseWindow
// destroys it. Turns advance only as a side effect of a validated action;
// there is no timer anywhere in this package.

// OpenWindow opens a transfer window at gw with the given manager order
// (worst team first). It returns false without touching state when a window
// is already active, when the schedule unlocks no rounds for gw, or when the
// order is empty after trimming blanks.
func (e *Engine) OpenWindow(s *State, gw int, managersOrder []string) bool {
	s.ensureShape()

	if e.IsActive(s) {
		e.logger.Warn().Int("gw", gw).Msg("transfer window already active, not reopening")
		return false
	}
	rounds := e.schedule.RoundsFor(gw)
	if rounds == 0 {
		e.logger.Debug().Int("gw", gw).Msg("no transfer rounds scheduled for gameweek")
		return false
	}
	order := trimOrder(managersOrder)
	if len(order) == 0 {
		e.logger.Warn().Int("gw", gw).Msg("refusing to open window with empty manager order")
		return false
	}

	s.Transfers.ActiveWindow = &Window{
		TriggerGW:           gw,
		TotalRounds:         rounds,
		CurrentRound:        1,
		ManagersOrder:       order,
		CurrentManagerIndex: 0,
		Phase:               PhaseOut,
		StartedAt:           e.now(),
	}
	e.logger.Info().
		Int("gw", gw).
		Int("rounds", rounds).
		Strs("order", order).
		Msg("Transfer window opened")
	return true
}

// IsActive reports whether a window is open with rounds left to play.
func (e *Engine) IsActive(s *State) bool {
	w := s.Transfers.ActiveWindow
	return w != nil && len(w.ManagersOrder) > 0 && w.CurrentRound <= w.TotalRounds
}

// CurrentManager returns the manager on the clock. ok is false when no
// window is active.
func (e *Engine) CurrentManager(s *State) (string, bool) {
	if !e.IsActive(s) {
		return "", false
	}
	w := s.Transfers.ActiveWindow
	if w.CurrentManagerIndex < 0 || w.CurrentManagerIndex >= len(w.ManagersOrder) {
		return "", false
	}
	return w.ManagersOrder[w.CurrentManagerIndex], true
}

// CurrentPhase returns the phase the manager on the clock is in.
func (e *Engine) CurrentPhase(s *State) (Phase, bool) {
	if !e.IsActive(s) {
		return "", false
	}
	return s.Transfers.ActiveWindow.Phase, true
}

// Advance performs one turn transition and reports whether anything moved:
//
//	out -> in    same manager (a release must be matched before yielding)
//	in  -> out   next manager; round rollover at the end of the order;
//	             window closes when the final round is exhausted
//
// Calling Advance with no active window is a no-op returning false.
func (e *Engine) Advance(s *State) bool {
	if !e.IsActive(s) {
		return false
	}
	w := s.Transfers.ActiveWindow

	if w.Phase == PhaseOut {
		w.Phase = PhaseIn
		return true
	}

	w.Phase = PhaseOut
	w.CurrentManagerIndex++
	if w.CurrentManagerIndex < len(w.ManagersOrder) {
		return true
	}
	if w.CurrentRound < w.TotalRounds {
		w.CurrentRound++
		w.CurrentManagerIndex = 0
		e.logger.Info().Int("round", w.CurrentRound).Int("of", w.TotalRounds).Msg("Transfer round complete, starting next")
		return true
	}

	e.logger.Info().Int("gw", w.TriggerGW).Msg("Transfer rounds exhausted, closing window")
	e.CloseWindow(s)
	return true
}

// CloseWindow destroys the active window unconditionally. Used on round
// exhaustion and by administrative override.
func (e *Engine) CloseWindow(s *State) {
	s.Transfers.ActiveWindow = nil
}
