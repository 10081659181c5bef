package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plasmaheat/model"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestTimestepCommand(t *testing.T) {
	out := execute(t, "timestep", "--config", "../conf/config.ini", "--log-level", "warn")
	assert.Contains(t, out, "mesh       20 x 20")
	assert.Contains(t, out, "explicit")
	assert.Contains(t, out, "(x10)")
}

func TestRunCommandWritesResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	execute(t, "run", "--config", "../conf/config.ini", "--log-level", "warn", "-s", "implicit", "-t", "300", "-o", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var res model.Results
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, model.Completed, res.Status)
	assert.Equal(t, model.MeshResolution{Nr: 20, Nz: 20}, res.MeshResolution)
	assert.NotEmpty(t, res.TimeAxis)
}
