package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const laptopTemplateYAML = `
version: "1.0.0"
name: Laptops
criteria:
  - {id: price, name: Price, type: price, weight: 60, is_visible: true}
  - {id: battery, name: Battery, type: numeric, weight: 40, higher_is_better: true, is_visible: true, order: 1}
`

// writeConfig writes a configuration that keeps templates in a SQLite file
// under dir, so state survives across command invocations.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, dir, "comparer.yaml", fmt.Sprintf(`
logging:
  level: error
templates:
  database: %s
`, filepath.Join(dir, "templates.db")))
}

func TestTemplateCommands_LoadListDelete(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	seeds := filepath.Join(dir, "seeds")
	require.NoError(t, os.MkdirAll(seeds, 0o755))
	writeFile(t, seeds, "laptops.yaml", laptopTemplateYAML)
	writeFile(t, seeds, "phones.yml", strings.Replace(laptopTemplateYAML, "name: Laptops", "name: Phones", 1))

	out, err := runCLI(t, "--config", cfg, "template", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No templates stored.")

	out, err = runCLI(t, "--config", cfg, "template", "load", seeds)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded Laptops")
	assert.Contains(t, out, "Loaded Phones")

	out, err = runCLI(t, "--config", cfg, "tpl", "list")
	require.NoError(t, err)
	assert.Equal(t, "Laptops\nPhones\n", out)

	_, err = runCLI(t, "--config", cfg, "template", "delete", "PHONES")
	require.NoError(t, err)

	out, err = runCLI(t, "--config", cfg, "template", "list")
	require.NoError(t, err)
	assert.Equal(t, "Laptops\n", out)
}

func TestTemplateValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", laptopTemplateYAML)
	bad := writeFile(t, dir, "bad.yaml", strings.Replace(laptopTemplateYAML, "type: price", "type: colour", 1))

	out, err := runCLI(t, "template", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, `template "Laptops" is valid (2 criteria)`)

	_, err = runCLI(t, "template", "validate", good, bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestTemplateApply_MissingComparative(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	seeds := filepath.Join(dir, "seeds")
	require.NoError(t, os.MkdirAll(seeds, 0o755))
	writeFile(t, seeds, "laptops.yaml", laptopTemplateYAML)

	_, err := runCLI(t, "--config", cfg, "template", "load", seeds)
	require.NoError(t, err)

	_, err = runCLI(t, "--config", cfg, "template", "apply", "missing", "laptops")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = runCLI(t, "--config", cfg, "template", "apply", "missing", "laptop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "Laptops"?`)
}
