package transfers

// Schedule maps a trigger gameweek to the number of transfer rounds it
// unlocks. A gameweek missing from the table opens nothing.
type Schedule map[int]int

// RoundsFor returns the unlocked round count for gw, or 0 when the gameweek
// is not a transfer trigger point.
func (s Schedule) RoundsFor(gw int) int {
	if s == nil {
		return 0
	}
	rounds, ok := s[gw]
	if !ok || rounds < 0 {
		return 0
	}
	return rounds
}

// DefaultSchedules are the built-in trigger tables per league tag. Config
// may override any of them.
func DefaultSchedules() map[string]Schedule {
	return map[string]Schedule{
		// Champions-League style: one transfer after each early matchday,
		// a double window before the knockout rounds.
		"ucl": {2: 1, 3: 1, 4: 1, 5: 1, 6: 1, 7: 1, 8: 2},
		// Cross-league top-four draft: three-round windows at the season
		// breaks.
		"top4": {4: 3, 12: 3, 20: 3, 28: 3},
		// Domestic league: single-round windows roughly every quarter.
		"epl": {9: 1, 19: 1, 29: 1},
	}
}
