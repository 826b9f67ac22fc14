package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-norms/internal/norms"
	"github.com/mind-engage/mindengage-norms/internal/scoring"
	"github.com/mind-engage/mindengage-norms/internal/subtests"
)

// run executes normsctl with an empty config file so the caller's home
// directory is never read.
func run(t *testing.T, config string, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "normsctl.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(config), 0o644))

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", cfg}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseScores(t *testing.T) {
	got, err := parseScores([]string{"SIM=10", "voc = 12"})
	require.NoError(t, err)
	assert.Equal(t, subtests.Scores{"SIM": 10, "VOC": 12}, got)

	for _, bad := range []string{"SIM", "SIM=x", "SIM=0", "ZZZ=10"} {
		_, err := parseScores([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestBands(t *testing.T) {
	out, err := run(t, "", "bands")
	require.NoError(t, err)
	var bands []norms.Band
	require.NoError(t, json.Unmarshal([]byte(out), &bands))
	require.Len(t, bands, 4)
	assert.Equal(t, "all-ages", bands[0].ID)
}

func TestConvert(t *testing.T) {
	out, err := run(t, "", "convert", "--age-months", "100", "-s", "SIM=10", "-s", "VOC=10")
	require.NoError(t, err)
	var rep scoring.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, []string{"all-ages", "8-9"}, rep.Result.Meta.Bands)
	assert.Equal(t, 100, *rep.Result.Composites[norms.ICV])
	assert.Equal(t, norms.OverallCore7, rep.Result.Meta.Convention)

	// overall from the config file
	out, err = run(t, "overall: all10\n", "convert", "--dob", "2014-01-15", "--test-date", "2022-06-01", "-s", "SIM=10")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, "100", rep.AgeMonths)
	assert.Equal(t, norms.OverallAll10, rep.Result.Meta.Convention)

	_, err = run(t, "", "convert", "--overall", "eight")
	assert.ErrorIs(t, err, scoring.ErrBadOverall)
	_, err = run(t, "", "convert", "-s", "SIM=25")
	assert.Error(t, err)
}

func TestTablesExportCheckImport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tables")
	out, err := run(t, "", "tables", "export", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "all-ages.json")
	assert.FileExists(t, filepath.Join(dir, "manifest.json"))

	out, err = run(t, "", "tables", "check", "--strict", "--source", "dir", "--tables", dir)
	require.NoError(t, err)
	var check struct {
		Bands    []norms.Band `json:"bands"`
		Warnings []string     `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &check))
	assert.Len(t, check.Bands, 4)
	assert.Empty(t, check.Warnings)

	dsn := "file:" + filepath.Join(t.TempDir(), "norms.db") + "?_pragma=busy_timeout(5000)"
	_, err = run(t, "", "tables", "import", "--source", "dir", "--tables", dir, "--db-dsn", dsn)
	require.NoError(t, err)

	out, err = run(t, "", "bands", "--source", "db", "--db-dsn", dsn)
	require.NoError(t, err)
	var bands []norms.Band
	require.NoError(t, json.Unmarshal([]byte(out), &bands))
	assert.Len(t, bands, 4)

	_, err = run(t, "", "tables", "import", "--source", "db", "--db-dsn", dsn)
	assert.Error(t, err)
}

func TestTablesCheck_StrictFailsOnWarnings(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte(`{"tables":["a.json","b.json"]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"id":"all","minMonths":0,"maxMonths":240,"ICV":{"20":100}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"label":"no id"}`), 0o644))

	out, err := run(t, "", "tables", "check", "--source", "dir", "--tables", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "missing id")

	_, err = run(t, "", "tables", "check", "--strict", "--source", "dir", "--tables", dir)
	assert.Error(t, err)
}
