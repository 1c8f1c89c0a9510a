// internal/catalog/catalog.go
// Package catalog loads the per-league player catalog from a JSON export.
// The catalog enriches placeholder records and backs the undrafted claim
// set; a league without one simply runs with reduced leniency.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/valdraft/transferdesk/internal/transfers"
)

type Catalog struct {
	players []transfers.Player
	byID    map[int]transfers.Player
}

// LoadFile reads a catalog JSON file: either a bare array of players or an
// object with a "players" key, matching the two export formats in the wild.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var players []transfers.Player
	if err := json.Unmarshal(data, &players); err != nil {
		var wrapped struct {
			Players []transfers.Player `json:"players"`
		}
		if werr := json.Unmarshal(data, &wrapped); werr != nil {
			return nil, fmt.Errorf("error parsing catalog: %w", err)
		}
		players = wrapped.Players
	}
	return New(players), nil
}

// New builds a catalog from an in-memory player list. Later entries with a
// duplicate id win, matching last-write semantics of the exports.
func New(players []transfers.Player) *Catalog {
	c := &Catalog{
		players: players,
		byID:    make(map[int]transfers.Player, len(players)),
	}
	for _, p := range players {
		c.byID[p.ID] = p
	}
	return c
}

func (c *Catalog) PlayerByID(id int) (transfers.Player, bool) {
	p, ok := c.byID[id]
	return p, ok
}

func (c *Catalog) Players() []transfers.Player {
	out := make([]transfers.Player, len(c.players))
	copy(out, c.players)
	return out
}

func (c *Catalog) Len() int {
	return len(c.byID)
}
