package callgraph

import "sort"

// Reduce restricts the graph to the maxNodes highest-degree nodes for
// visualization. Score is in-degree plus out-degree; ties break by ID
// ascending so repeated runs select the same nodes. Only edges with both
// endpoints selected survive. Nodes disconnected by the cutoff are an
// accepted outcome, not corrected for.
//
// The receiver is never mutated; callers keep the full graph for statistics.
func (g *Graph) Reduce(maxNodes int) *Graph {
	if maxNodes < 0 {
		maxNodes = 0
	}
	if len(g.nodes) <= maxNodes {
		return g.induced(allIDs(g.nodes))
	}

	type scored struct {
		id    string
		score int
	}
	ranked := make([]scored, 0, len(g.nodes))
	for id := range g.nodes {
		ranked = append(ranked, scored{
			id:    id,
			score: len(g.forward[id]) + len(g.reverse[id]),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	selected := make(map[string]struct{}, maxNodes)
	for _, s := range ranked[:maxNodes] {
		selected[s.id] = struct{}{}
	}
	return g.induced(selected)
}

func allIDs(nodes map[string]Definition) map[string]struct{} {
	ids := make(map[string]struct{}, len(nodes))
	for id := range nodes {
		ids[id] = struct{}{}
	}
	return ids
}
