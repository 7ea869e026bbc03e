package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintTable_AlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"NAME", "SCORE"}, [][]string{
		{"東京モデル", "90.00"},
		{"Basic", "10.00"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4)

	// The SCORE column starts at the same display column on every line.
	col := func(line, cell string) int {
		return runewidth.StringWidth(line[:strings.Index(line, cell)])
	}
	assert.Equal(t, col(lines[0], "SCORE"), col(lines[2], "90.00"))
	assert.Equal(t, col(lines[0], "SCORE"), col(lines[3], "10.00"))
	assert.True(t, strings.HasPrefix(lines[1], "----------  -----"))
}

func TestTruncateCell(t *testing.T) {
	long := strings.Repeat("x", maxCellWidth+10)
	got := truncateCell(long)
	assert.Equal(t, maxCellWidth, runewidth.StringWidth(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, "short", truncateCell("short"))
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"ascii", "ab", 4, "ab  "},
		{"wide", "日本", 6, "日本  "},
		{"already wide enough", "abcdef", 3, "abcdef"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, padRight(tt.in, tt.width))
		})
	}
}

func TestFormatCounts(t *testing.T) {
	assert.Equal(t, "a=2 b=1", formatCounts(map[string]int{"b": 1, "a": 2}))
	assert.Equal(t, "", formatCounts(map[string]int{}))
}
