package callgraph

import (
	"sort"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Metrics are optional connectivity and ranking figures computed on top of
// the base statistics.
type Metrics struct {
	Components       int        `json:"components"`
	LargestComponent int        `json:"largest_component"`
	Ranks            []NodeRank `json:"ranks"`
}

// NodeRank pairs a node with its PageRank score and degrees.
type NodeRank struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Rank      float64 `json:"rank"`
	InDegree  int     `json:"in_degree"`
	OutDegree int     `json:"out_degree"`
}

// gonumView holds the gonum representation and ID mappings.
type gonumView struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	toGonum    map[string]int64
	fromGonum  map[int64]string
}

// toGonum converts the graph to gonum types, assigning sequential int64 IDs
// in ascending node-ID order.
func (g *Graph) toGonum() *gonumView {
	v := &gonumView{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		toGonum:    make(map[string]int64, len(g.nodes)),
		fromGonum:  make(map[int64]string, len(g.nodes)),
	}

	for i, id := range g.NodeIDs() {
		gid := int64(i)
		v.toGonum[id] = gid
		v.fromGonum[gid] = id
		v.directed.AddNode(simple.Node(gid))
		v.undirected.AddNode(simple.Node(gid))
	}

	// gonum simple graphs reject self-loops; skip them here.
	for _, from := range g.NodeIDs() {
		for _, to := range g.Callees(from) {
			f, t := v.toGonum[from], v.toGonum[to]
			if f == t {
				continue
			}
			v.directed.SetEdge(simple.Edge{F: simple.Node(f), T: simple.Node(t)})
			if !v.undirected.HasEdgeBetween(f, t) {
				v.undirected.SetEdge(simple.Edge{F: simple.Node(f), T: simple.Node(t)})
			}
		}
	}

	return v
}

// Metrics computes weak connectivity and PageRank hub ranking. Ranks are
// sorted by score descending, ties by ID ascending.
func (g *Graph) Metrics() *Metrics {
	m := &Metrics{}
	if len(g.nodes) == 0 {
		return m
	}

	view := g.toGonum()

	components := topo.ConnectedComponents(view.undirected)
	m.Components = len(components)
	for _, comp := range components {
		if len(comp) > m.LargestComponent {
			m.LargestComponent = len(comp)
		}
	}

	rankMap := network.PageRank(view.directed, 0.85, 1e-6)

	m.Ranks = make([]NodeRank, 0, len(g.nodes))
	for _, id := range g.NodeIDs() {
		def := g.nodes[id]
		m.Ranks = append(m.Ranks, NodeRank{
			ID:        id,
			Name:      def.Name,
			Rank:      rankMap[view.toGonum[id]],
			InDegree:  len(g.reverse[id]),
			OutDegree: len(g.forward[id]),
		})
	}
	sort.Slice(m.Ranks, func(i, j int) bool {
		if m.Ranks[i].Rank != m.Ranks[j].Rank {
			return m.Ranks[i].Rank > m.Ranks[j].Rank
		}
		return m.Ranks[i].ID < m.Ranks[j].ID
	})

	return m
}
