package transfers

// NormalizePlayer backfills the transfer bookkeeping fields on a roster
// entry. Records drafted before the transfer system existed are treated as
// active since the start of the season.
func NormalizePlayer(p Player, currentGW int) Player {
	if p.Status == "" {
		p.Status = StatusActive
	}
	if len(p.GWsActive) == 0 {
		p.GWsActive = gwRange(1, currentGW)
	}
	if p.TransferredInGW == 0 {
		p.TransferredInGW = 1
	}
	return p
}

// NormalizeAll normalizes every roster entry in the state.
func (e *Engine) NormalizeAll(s *State, currentGW int) {
	s.ensureShape()
	for manager, roster := range s.Rosters {
		for i := range roster {
			roster[i] = NormalizePlayer(roster[i], currentGW)
		}
		s.Rosters[manager] = roster
	}
}

// ActiveGWs returns the gameweeks a player counts for scoring.
func ActiveGWs(p Player) []int {
	return p.GWsActive
}

func gwRange(from, to int) []int {
	if to < from {
		return nil
	}
	gws := make([]int, 0, to-from+1)
	for gw := from; gw <= to; gw++ {
		gws = append(gws, gw)
	}
	return gws
}
