package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCatalogValidateEmbedded(t *testing.T) {
	out, err := runRoot(t, "catalog", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "embedded: 2 clubs OK")
}

func TestCatalogValidateRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clubs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
clubs:
  - id: chess
    name: Chess
`), 0o600))

	_, err := runRoot(t, "catalog", "validate", path)
	assert.Error(t, err)
}

func TestCatalogList(t *testing.T) {
	out, err := runRoot(t, "catalog", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "tridev")
	assert.Contains(t, out, "astrophiles")
	assert.Contains(t, out, "Total members:  42")
	assert.Contains(t, out, "Largest club:   TriDev (24 members)")
}
