package transfers

// AvailablePlayers returns the released-but-unclaimed pool. Pool membership
// is the sole source of truth for "claimable now".
func (e *Engine) AvailablePlayers(s *State) []Player {
	s.ensureShape()
	out := make([]Player, len(s.Transfers.AvailablePlayers))
	copy(out, s.Transfers.AvailablePlayers)
	return out
}

// ClaimablePlayers is the read-time union transfer_in draws from: the pool
// plus, for leagues that allow it, every catalog player no roster holds.
func (e *Engine) ClaimablePlayers(s *State) []Player {
	claimable := e.AvailablePlayers(s)
	if !e.rules.AllowUndrafted || e.catalog == nil {
		return claimable
	}

	owned := s.OwnedIDs()
	pooled := make(map[int]struct{}, len(claimable))
	for _, p := range claimable {
		pooled[p.ID] = struct{}{}
	}
	for _, p := range e.catalog.Players() {
		if _, ok := owned[p.ID]; ok {
			continue
		}
		if _, ok := pooled[p.ID]; ok {
			continue
		}
		claimable = append(claimable, p)
	}
	return claimable
}
