package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/scoring"
)

type scoreOptions struct {
	format string
	output string
	method string
	strict bool
}

func newScoreCommand() *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score <comparative.json>",
		Short: "Score and rank a comparative stored in a local JSON file",
		Long: `Score runs the scoring engine on a comparative read from a JSON file and
prints the ranked items.

Nothing is persisted unless --output is given, in which case the scored
comparative (normalized values, scores, ranks, and winner) is written there.
With --strict the command exits with status 1 when scoring surfaces
degenerate-input warnings such as weights that do not sum to 100.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "Output format: table or json")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the scored comparative to this file")
	cmd.Flags().StringVar(&opts.method, "method", "", "Override the scoring method for this run")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when scoring surfaces degenerate-input warnings")

	return cmd
}

func runScore(cmd *cobra.Command, path string, opts *scoreOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}

	c, err := readComparative(path)
	if err != nil {
		return err
	}
	if opts.method != "" {
		m, err := domain.ParseScoringMethod(opts.method)
		if err != nil {
			return err
		}
		c.ScoringMethod = m
	}
	if err := scoring.ValidateComparative(c); err != nil {
		return err
	}

	scored, res := scoring.NewEngine().Apply(c)

	if opts.output != "" {
		if err := writeComparative(opts.output, scored); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.format == formatJSON {
		if err := writeJSON(out, newScoreReport(scored, res)); err != nil {
			return err
		}
	} else {
		printScores(out, scored, res)
	}

	if opts.strict && res.HasWarnings() {
		return &DegenerateInputError{Count: len(res.Warnings)}
	}
	return nil
}

// readComparative decodes a comparative from a JSON file. Unknown fields are
// rejected so misspelled keys do not silently drop data.
func readComparative(path string) (domain.Comparative, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return domain.Comparative{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	var c domain.Comparative
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return domain.Comparative{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return c, nil
}

func writeComparative(path string, c domain.Comparative) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode comparative: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
