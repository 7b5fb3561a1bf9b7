package main

import (
	"fmt"
	"sort"

	"github.com/panbanda/callflow/internal/output"
	"github.com/panbanda/callflow/pkg/analyzer/flow"
	"github.com/panbanda/callflow/pkg/callgraph"
	"github.com/urfave/cli/v2"
)

func statsCmd() *cli.Command {
	return &cli.Command{
		Name:      "stats",
		Usage:     "Summarize the call graph: counts, degrees, most-connected nodes",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "Show top N most-connected nodes",
			},
			&cli.StringFlag{
				Name:  "load",
				Usage: "Analyze a previously saved snapshot instead of source paths",
			},
		},
		Action: runStatsCmd,
	}
}

func runStatsCmd(c *cli.Context) error {
	graph, report, err := resolveGraph(c)
	if err != nil {
		return err
	}

	stats := graph.Stats()
	top := topConnected(graph, c.Int("top"))

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Structured() {
		return formatter.Output(struct {
			Stats        callgraph.Stats `json:"stats" toon:"stats"`
			TopConnected []connectedNode `json:"top_connected" toon:"top_connected"`
			Report       *flow.Report    `json:"report,omitempty" toon:"report"`
		}{stats, top, report})
	}

	summary := [][]string{
		{"Nodes", fmt.Sprintf("%d", stats.Nodes)},
		{"Edges", fmt.Sprintf("%d", stats.Edges)},
		{"Async definitions", fmt.Sprintf("%d", stats.AsyncDefs)},
		{"Isolated nodes", fmt.Sprintf("%d", stats.Isolated)},
		{"Avg out-degree", fmt.Sprintf("%.2f", stats.AvgOutDegree)},
	}
	if report != nil {
		summary = append(summary,
			[]string{"Files analyzed", fmt.Sprintf("%d", report.FilesAnalyzed)},
			[]string{"Unresolved calls", fmt.Sprintf("%d", report.Resolution.Unresolved)},
			[]string{"Ambiguous calls", fmt.Sprintf("%d", report.Resolution.Ambiguous)},
		)
	}
	if err := formatter.Table("Call Graph Statistics", []string{"Metric", "Value"}, summary); err != nil {
		return err
	}

	if len(top) > 0 {
		var rows [][]string
		for _, node := range top {
			rows = append(rows, []string{
				node.Name,
				node.Location,
				fmt.Sprintf("%d", node.InDegree),
				fmt.Sprintf("%d", node.OutDegree),
			})
		}
		if err := formatter.Table(fmt.Sprintf("Most Connected (Top %d)", len(top)), []string{"Function", "Location", "Callers", "Callees"}, rows); err != nil {
			return err
		}
	}

	return nil
}

type connectedNode struct {
	ID        string `json:"id" toon:"id"`
	Name      string `json:"name" toon:"name"`
	Location  string `json:"location" toon:"location"`
	InDegree  int    `json:"in_degree" toon:"in_degree"`
	OutDegree int    `json:"out_degree" toon:"out_degree"`
}

// topConnected ranks nodes by total degree, ties broken by ID ascending.
func topConnected(graph *callgraph.Graph, n int) []connectedNode {
	if n <= 0 {
		return nil
	}

	nodes := make([]connectedNode, 0, graph.NodeCount())
	for _, id := range graph.NodeIDs() {
		def, _ := graph.Node(id)
		in := len(graph.Callers(id))
		out := len(graph.Callees(id))
		if in+out == 0 {
			continue
		}
		nodes = append(nodes, connectedNode{
			ID:        id,
			Name:      displayName(def),
			Location:  shortLocation(def.File, def.Line),
			InDegree:  in,
			OutDegree: out,
		})
	}

	// NodeIDs is ascending, so a stable sort keeps ID-order ties.
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].InDegree+nodes[i].OutDegree > nodes[j].InDegree+nodes[j].OutDegree
	})
	if len(nodes) > n {
		nodes = nodes[:n]
	}
	return nodes
}
