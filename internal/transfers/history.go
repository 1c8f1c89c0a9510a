package transfers

import "time"

// History returns the audit log, optionally filtered to one manager. The
// returned slice is a copy; history itself is append-only outside of
// RevertLastTransferOut.
func (e *Engine) History(s *State, manager string) []HistoryEntry {
	s.ensureShape()
	if manager == "" {
		out := make([]HistoryEntry, len(s.Transfers.History))
		copy(out, s.Transfers.History)
		return out
	}
	var out []HistoryEntry
	for _, entry := range s.Transfers.History {
		if entry.Manager == manager {
			out = append(out, entry)
		}
	}
	return out
}

// HistoryOn filters the log to entries stamped on the given calendar day
// (UTC). Leagues with in-season noise use this as their visibility rule.
func (e *Engine) HistoryOn(s *State, day time.Time) []HistoryEntry {
	s.ensureShape()
	y, m, d := day.UTC().Date()
	var out []HistoryEntry
	for _, entry := range s.Transfers.History {
		ey, em, ed := entry.Timestamp.UTC().Date()
		if ey == y && em == m && ed == d {
			out = append(out, entry)
		}
	}
	return out
}
