package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"msort/internal/msort"
)

var planSize int

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "print the goroutine split tree thread_bounded builds for --threads",
	RunE: func(cmd *cobra.Command, args []string) error {
		root := msort.PlanBudget(planSize, runCfg.Sort.Threads)

		tree := treeprint.NewWithRoot(planLabel(root))
		addPlan(tree, root)
		fmt.Print(tree.String())
		fmt.Printf("goroutines spawned: %d\n", root.Goroutines())
		return nil
	},
}

func init() {
	planCmd.Flags().IntVar(&planSize, "n", 1_000_000, "sequence length")
}

func planLabel(p *msort.PlanNode) string {
	kind := "sequential"
	if p.Parallel {
		kind = "parallel"
	}
	return fmt.Sprintf("n=%s budget=%d %s", humanize.Comma(int64(p.Size)), p.Budget, kind)
}

func addPlan(tree treeprint.Tree, p *msort.PlanNode) {
	for _, c := range p.Children {
		if c.Parallel {
			addPlan(tree.AddBranch(planLabel(c)), c)
		} else {
			tree.AddNode(planLabel(c))
		}
	}
}
