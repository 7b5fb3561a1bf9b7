// Package callgraph holds the call-graph data structure and its algorithms:
// statistics, bounded cycle detection, subgraph extraction, and node-budget
// reduction. Graphs are built once by the analyzer and read-only afterward.
package callgraph

import "fmt"

// Definition describes one function or method found in source.
type Definition struct {
	// ID is unique within a run and derived from the file path, enclosing
	// scope path, simple name, and definition line, so same-named siblings
	// never collide.
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	File           string     `json:"file"`
	Line           uint32     `json:"line"`
	EnclosingClass string     `json:"class,omitempty"`
	IsAsync        bool       `json:"is_async"`
	IsMethod       bool       `json:"is_method"`
	CallSites      []CallSite `json:"call_sites,omitempty"`
}

// CallSite is a raw, unresolved call expression found in a definition body.
type CallSite struct {
	// Callee is the callee expression text as written: a bare name, or
	// "receiver.method" when the receiver is a simple identifier.
	Callee string `json:"callee"`
	Line   uint32 `json:"line"`
}

// Edge is a resolved caller -> callee pair. Multiple call sites between the
// same pair collapse to one edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ParseIssue records a per-file failure. Issues are aggregated and reported
// alongside the graph; they never abort a run.
type ParseIssue struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

func (i ParseIssue) String() string {
	return fmt.Sprintf("%s: %s", i.File, i.Reason)
}

// Stats summarizes a graph.
type Stats struct {
	Nodes        int     `json:"nodes"`
	Edges        int     `json:"edges"`
	AsyncDefs    int     `json:"async_defs"`
	Isolated     int     `json:"isolated"`
	AvgOutDegree float64 `json:"avg_out_degree"`
}

// Snapshot is the lossless serializable form of a graph: nodes sorted by ID
// and edges sorted by (from, to). It round-trips through JSON for caching
// and for handing the graph to external visualizers.
type Snapshot struct {
	Nodes []Definition `json:"nodes"`
	Edges []Edge       `json:"edges"`
	Stats Stats        `json:"stats"`
}
