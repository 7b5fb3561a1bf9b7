package callgraph

import (
	"reflect"
	"testing"
)

func TestReduceUnderBudget(t *testing.T) {
	g := buildGraph(t, []string{"a", "b"}, [][2]string{{"a", "b"}})

	reduced := g.Reduce(10)
	if !reflect.DeepEqual(reduced.Snapshot(), g.Snapshot()) {
		t.Error("graph within budget must come back unchanged")
	}
}

func TestReduceTopDegree(t *testing.T) {
	// Hub a with three spokes; b/c/d tie at degree 1.
	g := buildGraph(t,
		[]string{"a", "b", "c", "d"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"a", "d"}},
	)

	reduced := g.Reduce(2)
	if got := reduced.NodeIDs(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("nodes = %v, want [a b] (hub plus lowest-ID tie)", got)
	}
	if reduced.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1 induced edge", reduced.EdgeCount())
	}
}

func TestReduceInducedEdgesOnly(t *testing.T) {
	g := buildGraph(t,
		[]string{"x", "y", "z"},
		[][2]string{{"x", "y"}, {"y", "z"}},
	)

	// y has degree 2, x and z tie at 1; x wins by ID.
	reduced := g.Reduce(2)
	if got := reduced.NodeIDs(); !reflect.DeepEqual(got, []string{"x", "y"}) {
		t.Fatalf("nodes = %v, want [x y]", got)
	}
	if got := reduced.Callees("y"); got != nil {
		t.Errorf("y->z must not survive without z, got callees %v", got)
	}
	if got := reduced.Callees("x"); !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("x->y should survive, got %v", got)
	}
}

func TestReduceDoesNotMutateReceiver(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"b", "c"}},
	)
	before := g.Snapshot()

	_ = g.Reduce(1)

	if !reflect.DeepEqual(g.Snapshot(), before) {
		t.Error("Reduce mutated its receiver")
	}
}

func TestReduceDeterministic(t *testing.T) {
	g := buildGraph(t,
		[]string{"a", "b", "c", "d", "e"},
		[][2]string{{"a", "b"}, {"c", "d"}, {"e", "a"}},
	)

	first := g.Reduce(3).Snapshot()
	for i := 0; i < 5; i++ {
		if got := g.Reduce(3).Snapshot(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d selected different nodes", i)
		}
	}
}
