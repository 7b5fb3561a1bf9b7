package callgraph

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDanglingEdge is returned when an edge references a node that was never
// added. The analyzer adds every node before any edge, so hitting this
// indicates a bug in graph construction, not bad input.
var ErrDanglingEdge = errors.New("edge references unknown node")

// Graph is a directed call graph. The reverse index is derived from the
// forward edges and always equals their transpose.
type Graph struct {
	nodes   map[string]Definition
	forward map[string]map[string]struct{}
	reverse map[string]map[string]struct{}
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]Definition),
		forward: make(map[string]map[string]struct{}),
		reverse: make(map[string]map[string]struct{}),
	}
}

// AddNode adds a definition to the node set. Re-adding an ID replaces the
// stored definition; IDs are unique by construction upstream.
func (g *Graph) AddNode(def Definition) {
	g.nodes[def.ID] = def
}

// AddEdge adds a directed call edge. Both endpoints must already be nodes.
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: %s", ErrDanglingEdge, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: %s", ErrDanglingEdge, to)
	}

	if g.forward[from] == nil {
		g.forward[from] = make(map[string]struct{})
	}
	g.forward[from][to] = struct{}{}

	if g.reverse[to] == nil {
		g.reverse[to] = make(map[string]struct{})
	}
	g.reverse[to][from] = struct{}{}
	return nil
}

// HasNode reports whether an ID is in the node set.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the definition for an ID.
func (g *Graph) Node(id string) (Definition, bool) {
	def, ok := g.nodes[id]
	return def, ok
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, targets := range g.forward {
		n += len(targets)
	}
	return n
}

// NodeIDs returns all node IDs in ascending order. Every algorithm that
// iterates nodes goes through this so repeated runs produce identical output.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Callees returns the IDs called by a node, ascending.
func (g *Graph) Callees(id string) []string {
	return sortedKeys(g.forward[id])
}

// Callers returns the IDs that call a node, ascending.
func (g *Graph) Callers(id string) []string {
	return sortedKeys(g.reverse[id])
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stats computes summary statistics for the graph.
func (g *Graph) Stats() Stats {
	s := Stats{
		Nodes: len(g.nodes),
		Edges: g.EdgeCount(),
	}

	for id, def := range g.nodes {
		if def.IsAsync {
			s.AsyncDefs++
		}
		if len(g.forward[id]) == 0 && len(g.reverse[id]) == 0 {
			s.Isolated++
		}
	}

	if s.Nodes > 0 {
		s.AvgOutDegree = float64(s.Edges) / float64(s.Nodes)
	}
	return s
}

// FindCycles detects circular call chains with a depth-first search from
// every node in ascending-ID order. A back edge to a node on the current
// recursion stack yields the stack slice from that node to the top, closed
// by repeating the entry node. Cycles are deduplicated by node set so the
// same loop found from different start nodes is reported once, and the
// search halts after maxCycles distinct cycles; elementary cycle counts are
// exponential in pathological graphs, so the cap is not optional.
func (g *Graph) FindCycles(maxCycles int) [][]string {
	if maxCycles <= 0 || len(g.nodes) == 0 {
		return nil
	}

	var cycles [][]string
	seen := make(map[string]struct{})
	visited := make(map[string]bool)
	onStack := make(map[string]bool)

	type dfsFrame struct {
		id   string
		next int
	}

	for _, root := range g.NodeIDs() {
		if visited[root] {
			continue
		}

		stack := []dfsFrame{{id: root}}
		var path []string
		visited[root] = true
		onStack[root] = true
		path = append(path, root)

		for len(stack) > 0 {
			frame := &stack[len(stack)-1]
			callees := g.Callees(frame.id)

			if frame.next < len(callees) {
				next := callees[frame.next]
				frame.next++

				if !visited[next] {
					visited[next] = true
					onStack[next] = true
					path = append(path, next)
					stack = append(stack, dfsFrame{id: next})
					continue
				}

				if onStack[next] {
					start := 0
					for i, id := range path {
						if id == next {
							start = i
							break
						}
					}
					cycle := append(append([]string{}, path[start:]...), next)
					key := cycleKey(cycle)
					if _, dup := seen[key]; !dup {
						seen[key] = struct{}{}
						cycles = append(cycles, cycle)
						if len(cycles) >= maxCycles {
							return cycles
						}
					}
				}
				continue
			}

			onStack[frame.id] = false
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}

	return cycles
}

// cycleKey builds a rotation-invariant key from a cycle's node set.
func cycleKey(cycle []string) string {
	members := make([]string, 0, len(cycle))
	uniq := make(map[string]struct{}, len(cycle))
	for _, id := range cycle {
		if _, ok := uniq[id]; !ok {
			uniq[id] = struct{}{}
			members = append(members, id)
		}
	}
	sort.Strings(members)
	return strings.Join(members, "\x00")
}

// Subgraph extracts the nodes reachable from the root set within maxDepth
// hops, following both forward and reverse edges, plus the induced edges
// between them. Depth 0 returns just the roots (and any edges directly
// between two roots). Roots absent from the graph are ignored.
func (g *Graph) Subgraph(rootIDs []string, maxDepth int) *Graph {
	included := make(map[string]struct{})

	type queued struct {
		id    string
		depth int
	}
	var queue []queued

	roots := append([]string{}, rootIDs...)
	sort.Strings(roots)
	for _, id := range roots {
		if g.HasNode(id) {
			queue = append(queue, queued{id: id})
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if _, ok := included[cur.id]; ok {
			continue
		}
		included[cur.id] = struct{}{}

		if cur.depth >= maxDepth {
			continue
		}
		for _, next := range g.Callees(cur.id) {
			if _, ok := included[next]; !ok {
				queue = append(queue, queued{id: next, depth: cur.depth + 1})
			}
		}
		for _, next := range g.Callers(cur.id) {
			if _, ok := included[next]; !ok {
				queue = append(queue, queued{id: next, depth: cur.depth + 1})
			}
		}
	}

	return g.induced(included)
}

// induced builds a new graph restricted to the given node set. Only edges
// with both endpoints in the set survive; none are fabricated.
func (g *Graph) induced(ids map[string]struct{}) *Graph {
	out := New()
	for id := range ids {
		if def, ok := g.nodes[id]; ok {
			out.AddNode(def)
		}
	}
	for from := range ids {
		for to := range g.forward[from] {
			if _, ok := ids[to]; ok {
				// Endpoints verified above; error impossible here.
				_ = out.AddEdge(from, to)
			}
		}
	}
	return out
}

// Snapshot returns the lossless serializable form of the graph.
func (g *Graph) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make([]Definition, 0, len(g.nodes)),
		Stats: g.Stats(),
	}
	for _, id := range g.NodeIDs() {
		snap.Nodes = append(snap.Nodes, g.nodes[id])
	}
	for _, from := range g.NodeIDs() {
		for _, to := range g.Callees(from) {
			snap.Edges = append(snap.Edges, Edge{From: from, To: to})
		}
	}
	return snap
}

// FromSnapshot rebuilds a graph from its serialized form.
func FromSnapshot(snap Snapshot) (*Graph, error) {
	g := New()
	for _, def := range snap.Nodes {
		g.AddNode(def)
	}
	for _, e := range snap.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, err
		}
	}
	return g, nil
}
