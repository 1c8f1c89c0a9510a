// internal/standings/standings.go
// Package standings derives the transfer turn order for a league. The rule
// is worst team first: ascending total points, with a stable name tie-break
// so two equal teams always line up the same way.
package standings

import (
	"sort"
	"strings"
)

// Row is one manager's season total.
type Row struct {
	Manager string `json:"manager"`
	Points  int    `json:"points"`
}

// Ranker supplies season totals for a league. Implementations pull from a
// scoring service, a spreadsheet export, whatever the league actually uses.
type Ranker interface {
	Standings(league string) ([]Row, error)
}

// Order returns the managers worst first. Managers in fallback but absent
// from rows are appended at the end in fallback order, so a league whose
// scoring lags its draft still seats everyone. With no rows at all the
// fallback order is returned unchanged.
func Order(rows []Row, fallback []string) []string {
	if len(rows) == 0 {
		out := make([]string, len(fallback))
		copy(out, fallback)
		return out
	}

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Points != sorted[j].Points {
			return sorted[i].Points < sorted[j].Points
		}
		return sorted[i].Manager < sorted[j].Manager
	})

	seen := make(map[string]struct{}, len(sorted))
	order := make([]string, 0, len(sorted)+len(fallback))
	for _, row := range sorted {
		manager := strings.TrimSpace(row.Manager)
		if manager == "" {
			continue
		}
		if _, dup := seen[manager]; dup {
			continue
		}
		seen[manager] = struct{}{}
		order = append(order, manager)
	}
	for _, manager := range fallback {
		if _, dup := seen[manager]; dup {
			continue
		}
		seen[manager] = struct{}{}
		order = append(order, manager)
	}
	return order
}

// StaticRanker serves fixed rows, for leagues configured by hand and for
// tests.
type StaticRanker map[string][]Row

func (r StaticRanker) Standings(league string) ([]Row, error) {
	return r[league], nil
}
