package standings

import (
	"reflect"
	"testing"
)

func TestOrderWorstFirst(t *testing.T) {
	rows := []Row{
		{Manager: "alice", Points: 120},
		{Manager: "bob", Points: 80},
		{Manager: "carol", Points: 95},
	}
	got := Order(rows, nil)
	want := []string{"bob", "carol", "alice"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestOrderTieBreaksByName(t *testing.T) {
	rows := []Row{
		{Manager: "zoe", Points: 50},
		{Manager: "amy", Points: 50},
		{Manager: "mia", Points: 50},
	}
	got := Order(rows, nil)
	want := []string{"amy", "mia", "zoe"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestOrderFallbackWhenNoRows(t *testing.T) {
	fallback := []string{"carol", "alice", "bob"}
	got := Order(nil, fallback)
	if !reflect.DeepEqual(got, fallback) {
		t.Errorf("Order = %v, want fallback %v", got, fallback)
	}
	// The fallback slice itself must not be shared with the result.
	got[0] = "mutated"
	if fallback[0] != "carol" {
		t.Error("Order aliased the fallback slice")
	}
}

func TestOrderAppendsMissingManagers(t *testing.T) {
	rows := []Row{
		{Manager: "bob", Points: 10},
		{Manager: "alice", Points: 30},
	}
	got := Order(rows, []string{"alice", "bob", "carol", "dan"})
	want := []string{"bob", "alice", "carol", "dan"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestOrderSkipsBlanksAndDuplicates(t *testing.T) {
	rows := []Row{
		{Manager: "  ", Points: 5},
		{Manager: "bob", Points: 10},
		{Manager: "bob", Points: 99},
	}
	got := Order(rows, []string{"bob"})
	want := []string{"bob"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Order = %v, want %v", got, want)
	}
}

func TestStaticRanker(t *testing.T) {
	r := StaticRanker{"ucl": {{Manager: "alice", Points: 1}}}
	rows, err := r.Standings("ucl")
	if err != nil || len(rows) != 1 {
		t.Fatalf("Standings = %v, %v", rows, err)
	}
	rows, err = r.Standings("unknown")
	if err != nil || rows != nil {
		t.Errorf("unknown league should yield nil rows, got %v, %v", rows, err)
	}
}
