// Command comparer scores comparison tables, manages criteria templates, and
// drives batch recomputes against the configured storage backends.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess    = 0 // Scoring completed without warnings
	ExitDegenerate = 1 // Scoring completed but --strict found warnings
	ExitError      = 2 // Configuration, input, or runtime error
)

// DegenerateInputError indicates that scoring succeeded but surfaced
// degenerate-input warnings while running in strict mode.
type DegenerateInputError struct {
	Count int
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("scoring surfaced %d degenerate-input warning(s)", e.Count)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var degenerate *DegenerateInputError
		if errors.As(err, &degenerate) {
			os.Exit(ExitDegenerate)
		}
		os.Exit(ExitError)
	}
}
