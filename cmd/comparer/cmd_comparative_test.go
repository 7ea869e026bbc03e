package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/application"
	"github.com/ahrav/go-compare/internal/domain"
	"github.com/ahrav/go-compare/internal/ports"
)

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "laptops.json", laptopsJSON)

	out, err := runCLI(t, "comparative", "import", path)
	require.NoError(t, err)
	assert.Equal(t, "laptops: version 1, 2 items, winner air\n", out)
}

func TestImportCommand_RejectsDuplicateIDs(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "laptops.json", laptopsJSON)

	// The in-memory repository lives for one invocation, so importing the
	// same file twice in one call hits the duplicate.
	_, err := runCLI(t, "cmp", "import", path, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestRecomputeCommand_Arguments(t *testing.T) {
	_, err := runCLI(t, "comparative", "recompute")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both or neither")

	_, err = runCLI(t, "comparative", "recompute", "--all", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not both or neither")
}

func TestRecomputeCommand_ReportsFailures(t *testing.T) {
	out, err := runCLI(t, "comparative", "recompute", "missing-1", "missing-2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 recomputes failed")
	assert.Contains(t, out, "missing-1")
	assert.Contains(t, out, "STATUS")
}

func TestRecomputeCommand_AllOnEmptyRepository(t *testing.T) {
	out, err := runCLI(t, "comparative", "recompute", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
}

func TestSetValueCommand_Arguments(t *testing.T) {
	_, err := runCLI(t, "comparative", "set-value", "c", "item", "crit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing value")

	_, err = runCLI(t, "comparative", "set-value", "--clear", "c", "item", "crit", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "takes no value")
}

func TestSetMethodCommand_RejectsUnknownMethod(t *testing.T) {
	_, err := runCLI(t, "comparative", "set-method", "c", "median")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownScoringMethod)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", 42.0},
		{"4.5", 4.5},
		{"true", true},
		{`"quoted"`, "quoted"},
		{"$1,299", "$1,299"},
		{"yes", "yes"},
		{"[1,2]", "[1,2]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValue(tt.in))
		})
	}
}

func TestParseToggle(t *testing.T) {
	for in, want := range map[string]bool{"on": true, "off": false, "true": true, "0": false} {
		got, err := parseToggle(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseToggle("maybe")
	require.Error(t, err)
}

func TestPrintBatch(t *testing.T) {
	var buf bytes.Buffer
	printBatch(&buf, []application.BatchResult{
		{ID: "a", Version: 3, WinnerID: "x", Attempts: 1, Warnings: []domain.DegenerateInputWarning{{Code: domain.WarnWeightSumMismatch}}},
		{ID: "b", Attempts: 1, Err: errors.New("boom")},
		{ID: "c", Attempts: 3, Err: ports.NewStoreError("postgres", "get", "c", ports.ErrTimeout)},
	})
	out := buf.String()
	assert.Contains(t, out, "ATTEMPTS")
	assert.Contains(t, out, "a   3        x       1         1         ok")
	assert.Contains(t, out, "boom")
	assert.Contains(t, out, "3         unavailable: ")
}

func TestPrintMutation(t *testing.T) {
	var buf bytes.Buffer
	printMutation(&buf, domain.Comparative{ID: "c", Version: 2}, domain.ScoreResult{
		Warnings: []domain.DegenerateInputWarning{{Code: domain.WarnNoEligibleCriteria, Message: "nothing"}},
	})
	assert.Equal(t, "c: version 2, 0 items, winner none\n  - no_eligible_criteria: nothing\n", buf.String())
}
