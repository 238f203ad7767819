package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestDiffStats(t *testing.T) {
	tests := []struct {
		name   string
		before Stats
		after  Stats
		want   StatsDelta
	}{
		{
			name:   "No Changes",
			before: Stats{Nodes: map[NodeKind]int{KindToken: 2}, Relations: map[RelationKind]int{Dominance: 2}},
			after:  Stats{Nodes: map[NodeKind]int{KindToken: 2}, Relations: map[RelationKind]int{Dominance: 2}},
			want:   StatsDelta{},
		},
		{
			name:   "Dedup Removes Constituent",
			before: Stats{Nodes: map[NodeKind]int{KindToken: 2, KindConstituent: 2}, Relations: map[RelationKind]int{Dominance: 4}},
			after:  Stats{Nodes: map[NodeKind]int{KindToken: 2, KindConstituent: 1}, Relations: map[RelationKind]int{Dominance: 2}},
			want: StatsDelta{
				Nodes:     map[string]int{"constituent": -1},
				Relations: map[string]int{"dominance": -2},
			},
		},
		{
			name:   "Scaffolds Added And Scratch Consumed",
			before: Stats{Nodes: map[NodeKind]int{KindConstituent: 2}, Scratch: 3},
			after:  Stats{Nodes: map[NodeKind]int{KindConstituent: 2, KindScaffold: 1}, Relations: map[RelationKind]int{Dominance: 2}},
			want: StatsDelta{
				Nodes:     map[string]int{"scaffold": 1},
				Relations: map[string]int{"dominance": 2},
				Scratch:   -3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffStats(tt.before, tt.after)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DiffStats() = %+v, want %+v", got, tt.want)
			}
			if got.IsEmpty() != tt.want.IsEmpty() {
				t.Errorf("IsEmpty() = %v, want %v", got.IsEmpty(), tt.want.IsEmpty())
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	g := NewGraph()
	t1 := g.AddToken("t1", "Hello")
	c := g.AddNode(KindConstituent, "edu1")
	c.Annotate(NamespaceScratch, AnnoExternalID, "1")
	c.Annotate(NamespaceDefault, AnnoKind, "edu")
	if _, err := g.AddRelation(Dominance, c.ID, t1.ID); err != nil {
		t.Fatal(err)
	}

	s := Summarize(g)
	if s.Nodes[KindToken] != 1 || s.Nodes[KindConstituent] != 1 {
		t.Errorf("Summarize().Nodes = %v", s.Nodes)
	}
	if s.Relations[Dominance] != 1 {
		t.Errorf("Summarize().Relations = %v", s.Relations)
	}
	if s.Scratch != 1 {
		t.Errorf("Summarize().Scratch = %d, want 1", s.Scratch)
	}
}

func TestStatsDeltaJSONSerialization(t *testing.T) {
	t.Run("Empty Delta Omitted", func(t *testing.T) {
		bytes, _ := json.Marshal(StatsDelta{})
		if string(bytes) != "{}" {
			t.Errorf("JSON should be empty for no changes, got: %s", string(bytes))
		}
	})

	t.Run("Kinds By Name", func(t *testing.T) {
		bytes, _ := json.Marshal(StatsDelta{Nodes: map[string]int{"signal": 2}})
		if !strings.Contains(string(bytes), `"signal":2`) {
			t.Errorf("JSON should key nodes by kind name, got: %s", string(bytes))
		}
	})
}
