package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-compare/internal/application"
	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

func newComparativeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "comparative",
		Aliases: []string{"cmp"},
		Short:   "Work with comparatives in the configured repository",
		Long: `Comparative commands read and edit comparatives stored in the configured
repository. Every edit runs under a per-comparative lock, is validated,
rescored, and saved with an optimistic version check.`,
	}

	cmd.AddCommand(newImportCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newShowCommand(opts))
	cmd.AddCommand(newRecomputeCommand(opts))
	cmd.AddCommand(newSetValueCommand(opts))
	cmd.AddCommand(newSetWinnerCommand(opts))
	cmd.AddCommand(newSetMethodCommand(opts))
	cmd.AddCommand(newHighlightCommand(opts))
	cmd.AddCommand(newRedistributeCommand(opts))
	cmd.AddCommand(newSetCriteriaCommand(opts))

	return cmd
}

func newImportCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <comparative.json>...",
		Short: "Validate, score, and store comparatives from JSON files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				for _, path := range args {
					c, err := readComparative(path)
					if err != nil {
						return err
					}
					stored, res, err := rt.service.Create(ctx, c)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					printMutation(cmd.OutOrStdout(), stored, res)
				}
				return nil
			})
		},
	}
}

func newListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored comparative IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				ids, err := rt.service.List(ctx)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id) //nolint:errcheck
				}
				return nil
			})
		},
	}
}

func newShowCommand(opts *rootOptions) *cobra.Command {
	format := formatTable

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the current scores of a stored comparative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, err := rt.service.Get(ctx, args[0])
				if err != nil {
					return err
				}
				res, err := rt.service.Scores(ctx, args[0])
				if err != nil {
					return err
				}
				if format == formatJSON {
					return writeJSON(cmd.OutOrStdout(), newScoreReport(c, res))
				}
				printScores(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table or json")
	return cmd
}

func newRecomputeCommand(opts *rootOptions) *cobra.Command {
	var (
		all          bool
		printMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "recompute [id...]",
		Short: "Rescore stored comparatives in parallel",
		Long: `Recompute rescores the named comparatives, or every stored comparative with
--all, and persists the new scores, ranks, and winners. Parallelism and pacing
come from the recompute section of the configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("pass comparative IDs or --all, not both or neither")
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				ids := args
				if all {
					var err error
					if ids, err = rt.service.List(ctx); err != nil {
						return err
					}
				}

				results, err := rt.service.RecomputeMany(ctx, ids)
				printBatch(cmd.OutOrStdout(), results)
				if err != nil {
					return err
				}

				if printMetrics {
					if err := rt.writeMetrics(cmd.OutOrStdout()); err != nil {
						return err
					}
				}

				failed := 0
				for _, r := range results {
					if r.Err != nil {
						failed++
					}
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d recomputes failed", failed, len(results))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Recompute every stored comparative")
	cmd.Flags().BoolVar(&printMetrics, "print-metrics", false, "Print collected metrics when metrics.enabled is set")
	return cmd
}

func newSetValueCommand(opts *rootOptions) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "set-value <id> <item-id> <criterion-id> [value]",
		Short: "Set one item's value for one criterion",
		Long: `Set-value stores a raw value for an item. The value is read as JSON when it
parses (42, 4.5, true, "quoted text") and as a plain string otherwise, so
"$1,299" and "yes" are accepted as typed. --clear removes the value.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any
			switch {
			case remove && len(args) == 4:
				return errors.New("--clear takes no value")
			case !remove && len(args) == 3:
				return errors.New("missing value; use --clear to remove it")
			case !remove:
				value = parseValue(args[3])
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, res, err := rt.service.SetItemValue(ctx, args[0], args[1], args[2], value)
				if err != nil {
					return err
				}
				printMutation(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&remove, "clear", false, "Remove the value instead of setting it")
	return cmd
}

func newSetWinnerCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-winner <id> [item-id]",
		Short: "Pick the winner manually, or clear it when no item is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID := ""
			if len(args) == 2 {
				itemID = args[1]
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, res, err := rt.service.SetWinner(ctx, args[0], itemID)
				if err != nil {
					return err
				}
				printMutation(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}
}

func newSetMethodCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-method <id> <weighted_average|simple_average|sum|none>",
		Short: "Change the scoring method",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := domain.ParseScoringMethod(args[1])
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, res, err := rt.service.SetScoringMethod(ctx, args[0], method)
				if err != nil {
					return err
				}
				printMutation(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}
}

func newHighlightCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "highlight <id> <on|off>",
		Short: "Toggle automatic winner selection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseToggle(args[1])
			if err != nil {
				return err
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, res, err := rt.service.SetHighlightWinner(ctx, args[0], on)
				if err != nil {
					return err
				}
				printMutation(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}
}

func newRedistributeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "redistribute <id>",
		Short: "Spread 100 weight points evenly over the visible criteria",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, res, err := rt.service.RedistributeWeights(ctx, args[0])
				if err != nil {
					return err
				}
				printMutation(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}
}

func newSetCriteriaCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-criteria <id> <criteria.json>",
		Short: "Replace the criteria configuration from a JSON array",
		Long: `Set-criteria replaces every criterion of a stored comparative. Item values
keyed by criteria that are no longer present are dropped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filepath.Clean(args[1]))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			var criteria []domain.Criterion
			if err := json.Unmarshal(data, &criteria); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[1], err)
			}
			return withRuntime(cmd, opts, func(ctx context.Context, rt *runtime) error {
				c, res, err := rt.service.UpdateCriteria(ctx, args[0], criteria)
				if err != nil {
					return err
				}
				printMutation(cmd.OutOrStdout(), c, res)
				return nil
			})
		},
	}
}

// parseValue reads s as JSON when it parses and as a plain string otherwise.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v.(type) {
		case float64, bool, string:
			return v
		}
	}
	return s
}

func parseToggle(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	on, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return on, nil
}

func printMutation(w io.Writer, c domain.Comparative, res domain.ScoreResult) {
	winner := res.WinnerID
	if winner == "" {
		winner = "none"
	}
	fmt.Fprintf(w, "%s: version %d, %d items, winner %s\n", c.ID, c.Version, len(c.Items), winner) //nolint:errcheck
	for _, warn := range res.Warnings {
		fmt.Fprintf(w, "  - %s\n", warn) //nolint:errcheck
	}
}

func printBatch(w io.Writer, results []application.BatchResult) {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status, winner := "ok", r.WinnerID
		switch {
		case r.Err != nil && ports.IsRetryable(r.Err):
			status, winner = "unavailable: "+r.Err.Error(), ""
		case r.Err != nil:
			status, winner = r.Err.Error(), ""
		}
		rows = append(rows, []string{
			r.ID,
			strconv.FormatInt(r.Version, 10),
			winner,
			strconv.Itoa(len(r.Warnings)),
			strconv.Itoa(r.Attempts),
			status,
		})
	}
	printTable(w, []string{"ID", "VERSION", "WINNER", "WARNINGS", "ATTEMPTS", "STATUS"}, rows)
}
