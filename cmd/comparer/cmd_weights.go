package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/scoring"
)

func newWeightsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Inspect and rebalance criterion weights in a local JSON file",
	}
	cmd.AddCommand(newWeightsShowCommand())
	cmd.AddCommand(newWeightsRedistributeCommand())
	return cmd
}

func newWeightsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <comparative.json>",
		Short: "List criterion weights and the visible weight sum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readComparative(args[0])
			if err != nil {
				return err
			}
			if err := scoring.ValidateWeights(c.Criteria); err != nil {
				return err
			}
			printWeights(cmd, c.Criteria)
			return nil
		},
	}
}

func newWeightsRedistributeCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "redistribute <comparative.json>",
		Short: "Spread 100 weight points evenly over the visible criteria",
		Long: `Redistribute assigns each visible criterion an equal share of 100 weight
points. The remainder goes to the first criteria in display order, so the
visible weights always sum to exactly 100. Hidden criteria get weight 0.

The file is left untouched unless --write is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := readComparative(args[0])
			if err != nil {
				return err
			}
			c.Criteria = scoring.RedistributeWeights(c.Criteria)
			if write {
				if err := writeComparative(args[0], c); err != nil {
					return err
				}
			}
			printWeights(cmd, c.Criteria)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write the new weights back to the file")
	return cmd
}

func printWeights(cmd *cobra.Command, criteria []domain.Criterion) {
	rows := make([][]string, 0, len(criteria))
	for _, cr := range sortedByOrder(criteria) {
		visible := "no"
		if cr.IsVisible {
			visible = "yes"
		}
		rows = append(rows, []string{cr.ID, cr.Name, string(cr.Type), visible, strconv.Itoa(cr.Weight)})
	}

	out := cmd.OutOrStdout()
	printTable(out, []string{"ID", "NAME", "TYPE", "VISIBLE", "WEIGHT"}, rows)
	fmt.Fprintf(out, "\nVisible weight sum: %d\n", scoring.VisibleWeightSum(criteria)) //nolint:errcheck
}
