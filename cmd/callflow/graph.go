package main

import (
	"fmt"

	"github.com/panbanda/callflow/internal/output"
	"github.com/panbanda/callflow/pkg/callgraph"
	"github.com/urfave/cli/v2"
)

func graphCmd() *cli.Command {
	return &cli.Command{
		Name:      "graph",
		Aliases:   []string{"build"},
		Usage:     "Build the call graph and render it (Mermaid, JSON, or TOON)",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "max-nodes",
				Usage:       "Reduce the graph to at most N nodes before rendering (0 = no limit)",
				DefaultText: "analysis.max_nodes, 100",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Include connectivity and PageRank metrics",
			},
			&cli.StringFlag{
				Name:  "load",
				Usage: "Render a previously saved snapshot instead of analyzing",
			},
		},
		Action: runGraphCmd,
	}
}

func runGraphCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	graph, report, err := resolveGraph(c)
	if err != nil {
		return err
	}

	if maxNodes := intSetting(c, "max-nodes", cfg.Analysis.MaxNodes); maxNodes > 0 {
		graph = graph.Reduce(maxNodes)
	}

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Structured() {
		if c.Bool("metrics") {
			return formatter.Output(struct {
				Graph   callgraph.Snapshot `json:"graph" toon:"graph"`
				Metrics *callgraph.Metrics `json:"metrics" toon:"metrics"`
			}{graph.Snapshot(), graph.Metrics()})
		}
		return formatter.Output(graph.Snapshot())
	}

	// Mermaid for text/markdown output.
	fmt.Fprintln(formatter.Writer(), "```mermaid")
	fmt.Fprint(formatter.Writer(), graph.ToMermaid())
	fmt.Fprintln(formatter.Writer(), "```")

	stats := graph.Stats()
	fmt.Fprintln(formatter.Writer())
	formatter.Info("Graph: %d nodes, %d edges", stats.Nodes, stats.Edges)
	if report != nil && len(report.Issues) > 0 {
		formatter.Warning("%d files had parse issues (run with --verbose for details)", len(report.Issues))
	}

	if c.Bool("metrics") {
		metrics := graph.Metrics()
		fmt.Fprintln(formatter.Writer())
		formatter.Info("Connectivity: %d components, largest %d nodes", metrics.Components, metrics.LargestComponent)

		if len(metrics.Ranks) > 0 {
			top := metrics.Ranks
			if len(top) > 5 {
				top = top[:5]
			}
			formatter.Info("Top nodes by PageRank:")
			for _, nm := range top {
				fmt.Fprintf(formatter.Writer(), "  %s: %.4f (in: %d, out: %d)\n",
					nm.Name, nm.Rank, nm.InDegree, nm.OutDegree)
			}
		}
	}

	return nil
}
