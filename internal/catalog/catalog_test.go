package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/valdraft/transferdesk/internal/transfers"
)

func TestParseBareArray(t *testing.T) {
	c, err := Parse([]byte(`[
		{"playerId": 1, "fullName": "One", "position": "GK"},
		{"playerId": 2, "fullName": "Two", "position": "DEF"}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 players, got %d", c.Len())
	}
	p, ok := c.PlayerByID(2)
	if !ok || p.FullName != "Two" {
		t.Errorf("lookup failed: %+v ok=%v", p, ok)
	}
}

func TestParseWrappedObject(t *testing.T) {
	c, err := Parse([]byte(`{"players": [{"playerId": 7, "fullName": "Seven"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := c.PlayerByID(7); !ok {
		t.Error("wrapped player not indexed")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse([]byte(`{"nope": true`)); err == nil {
		t.Error("expected parse error")
	}
}

func TestDuplicateIDsLastWins(t *testing.T) {
	c := New([]transfers.Player{
		{ID: 1, FullName: "Old"},
		{ID: 1, FullName: "New"},
	})
	p, _ := c.PlayerByID(1)
	if p.FullName != "New" {
		t.Errorf("expected last duplicate to win, got %q", p.FullName)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 unique id, got %d", c.Len())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	if err := os.WriteFile(path, []byte(`[{"playerId": 3}]`), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := c.PlayerByID(3); !ok {
		t.Error("player not loaded from file")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
