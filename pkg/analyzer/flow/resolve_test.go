package flow

import (
	"testing"

	"github.com/panbanda/callflow/pkg/callgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkDef(id, name, class string, sites ...string) callgraph.Definition {
	d := callgraph.Definition{ID: id, Name: name, EnclosingClass: class, IsMethod: class != ""}
	for _, s := range sites {
		d.CallSites = append(d.CallSites, callgraph.CallSite{Callee: s})
	}
	return d
}

func TestResolveUniqueGlobal(t *testing.T) {
	defs := []callgraph.Definition{
		mkDef("a.py:caller:1", "caller", "", "target"),
		mkDef("b.py:target:1", "target", ""),
	}

	edges, res := Resolve(defs)
	require.Len(t, edges, 1)
	assert.Equal(t, callgraph.Edge{From: "a.py:caller:1", To: "b.py:target:1"}, edges[0])
	assert.Equal(t, Resolution{Resolved: 1}, res)
}

func TestResolveUnknownDropped(t *testing.T) {
	defs := []callgraph.Definition{
		mkDef("a.py:f:1", "f", "", "print", "len"),
	}

	edges, res := Resolve(defs)
	assert.Empty(t, edges)
	assert.Equal(t, Resolution{Unresolved: 2}, res)
}

func TestResolveAmbiguousDropped(t *testing.T) {
	defs := []callgraph.Definition{
		mkDef("a.py:f:1", "f", "", "dup"),
		mkDef("b.py:dup:1", "dup", ""),
		mkDef("c.py:dup:1", "dup", ""),
	}

	edges, res := Resolve(defs)
	assert.Empty(t, edges, "multiple candidates without class affinity must not guess")
	assert.Equal(t, Resolution{Ambiguous: 1}, res)
}

func TestResolveSameClassPreference(t *testing.T) {
	defs := []callgraph.Definition{
		mkDef("a.py:W.run:2", "run", "W", "self.step"),
		mkDef("a.py:W.step:5", "step", "W"),
		mkDef("b.py:step:1", "step", ""),
	}

	edges, res := Resolve(defs)
	require.Len(t, edges, 1)
	assert.Equal(t, "a.py:W.step:5", edges[0].To,
		"self receiver must prefer the same-class definition")
	assert.Equal(t, Resolution{Resolved: 1}, res)
}

func TestResolveSelfFallsThroughWithoutClassMatch(t *testing.T) {
	// self.step with no step in class W: the single global candidate wins.
	defs := []callgraph.Definition{
		mkDef("a.py:W.run:2", "run", "W", "self.step"),
		mkDef("b.py:step:1", "step", ""),
	}

	edges, res := Resolve(defs)
	require.Len(t, edges, 1)
	assert.Equal(t, "b.py:step:1", edges[0].To)
	assert.Equal(t, Resolution{Resolved: 1}, res)
}

func TestResolveSelfMultipleSameClassAmbiguous(t *testing.T) {
	// Two same-name same-class definitions (conditional redefinition).
	defs := []callgraph.Definition{
		mkDef("a.py:W.run:2", "run", "W", "self.step"),
		mkDef("a.py:W.step:5", "step", "W"),
		mkDef("a.py:W.step:9", "step", "W"),
	}

	edges, res := Resolve(defs)
	assert.Empty(t, edges)
	assert.Equal(t, Resolution{Ambiguous: 1}, res)
}

func TestResolveForeignReceiverIgnoresClass(t *testing.T) {
	// obj.step has a receiver, but not self/cls; with two candidates it is
	// ambiguous even though the caller sits in a class holding one of them.
	defs := []callgraph.Definition{
		mkDef("a.py:W.run:2", "run", "W", "obj.step"),
		mkDef("a.py:W.step:5", "step", "W"),
		mkDef("b.py:step:1", "step", ""),
	}

	edges, res := Resolve(defs)
	assert.Empty(t, edges)
	assert.Equal(t, Resolution{Ambiguous: 1}, res)
}

func TestResolveDedupEdges(t *testing.T) {
	defs := []callgraph.Definition{
		mkDef("a.py:f:1", "f", "", "g", "g", "g"),
		mkDef("a.py:g:9", "g", ""),
	}

	edges, res := Resolve(defs)
	assert.Len(t, edges, 1, "repeated call sites collapse to one edge")
	assert.Equal(t, 3, res.Resolved, "every site still counts in the tally")
}

func TestResolveSelfLoop(t *testing.T) {
	defs := []callgraph.Definition{
		mkDef("a.py:rec:1", "rec", "", "rec"),
	}

	edges, _ := Resolve(defs)
	require.Len(t, edges, 1)
	assert.Equal(t, edges[0].From, edges[0].To)
}

func TestResolveEdgesSorted(t *testing.T) {
	defs := []callgraph.Definition{
		mkDef("z.py:f:1", "f", "", "a", "b"),
		mkDef("a.py:a:1", "a", "", "b"),
		mkDef("b.py:b:1", "b", ""),
	}

	edges, _ := Resolve(defs)
	require.Len(t, edges, 3)
	for i := 1; i < len(edges); i++ {
		prev, cur := edges[i-1], edges[i]
		ordered := prev.From < cur.From || (prev.From == cur.From && prev.To < cur.To)
		assert.True(t, ordered, "edges must be sorted by (from, to)")
	}
}
