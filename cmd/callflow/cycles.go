package main

import (
	"fmt"
	"strings"

	"github.com/panbanda/callflow/internal/output"
	"github.com/urfave/cli/v2"
)

func cyclesCmd() *cli.Command {
	return &cli.Command{
		Name:      "cycles",
		Usage:     "Detect circular call chains",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "max-cycles",
				Usage:       "Stop after reporting N distinct cycles",
				DefaultText: "analysis.max_cycles, 100",
			},
			&cli.StringFlag{
				Name:  "load",
				Usage: "Analyze a previously saved snapshot instead of source paths",
			},
		},
		Action: runCyclesCmd,
	}
}

func runCyclesCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	graph, _, err := resolveGraph(c)
	if err != nil {
		return err
	}

	maxCycles := intSetting(c, "max-cycles", cfg.Analysis.MaxCycles)
	cycles := graph.FindCycles(maxCycles)

	formatter, err := output.NewFormatter(output.ParseFormat(c.String("format")), c.String("output"), true)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if formatter.Structured() {
		return formatter.Output(struct {
			Cycles [][]string `json:"cycles" toon:"cycles"`
			Count  int        `json:"count" toon:"count"`
		}{cycles, len(cycles)})
	}

	if len(cycles) == 0 {
		formatter.Success("No call cycles found")
		return nil
	}

	var rows [][]string
	for i, cycle := range cycles {
		names := make([]string, 0, len(cycle))
		for _, id := range cycle {
			if def, ok := graph.Node(id); ok {
				names = append(names, displayName(def))
			} else {
				names = append(names, id)
			}
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", len(cycle)-1),
			truncate(strings.Join(names, " -> "), 100),
		})
	}

	if err := formatter.Table("Call Cycles", []string{"#", "Length", "Chain"}, rows); err != nil {
		return err
	}
	formatter.Warning("%d cycles found (capped at %d)", len(cycles), maxCycles)
	return nil
}
