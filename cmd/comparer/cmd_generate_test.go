package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-compare/internal/testutils"
)

func TestGenerateCommand(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.json")
	second := filepath.Join(dir, "nested", "second.json")

	out, err := runCLI(t, "generate", "--size", "12", "--seed", "42", "--output", first)
	require.NoError(t, err)
	assert.Contains(t, out, "- Total comparatives: 12")
	assert.Contains(t, out, "- Seed: 42")

	_, err = runCLI(t, "generate", "-n", "12", "--seed", "42", "-o", second)
	require.NoError(t, err)

	a, err := testutils.LoadComparativeDataset(first)
	require.NoError(t, err)
	b, err := testutils.LoadComparativeDataset(second)
	require.NoError(t, err)
	assert.Equal(t, a.Comparatives, b.Comparatives, "same seed, same dataset")
	assert.Equal(t, 12, a.Metadata.Size)
}

func TestGenerateCommand_RejectsBadSize(t *testing.T) {
	_, err := runCLI(t, "generate", "--size", "0", "--output", filepath.Join(t.TempDir(), "x.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--size must be positive")
}
