package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soundprediction/hskg/pkg/config"
	"github.com/soundprediction/hskg/pkg/graph"
	"github.com/soundprediction/hskg/pkg/ingest"
	"github.com/soundprediction/hskg/pkg/report"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsYAML = `items:
  - text: the checkout button is hidden below the fold
    modality: text
    source: ux
    category: item
  - text: dark mode setting is missing
    modality: text
    source: ux
    category: setting
  - text: keep the primary checkout button visible
    modality: text
    source: design
    category: item
  - text: group related settings on one screen
    modality: text
    source: design
    category: setting
`

func setupEnv(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("HSKG_EMBEDDING_PROVIDER", "hashing")
	t.Setenv("HSKG_STORAGE_TYPE", "sqlite")
	t.Setenv("DATABASE_URL", filepath.Join(dir, "hskg.db"))
	t.Setenv("TELEMETRY_PARQUET_PATH", filepath.Join(dir, "telemetry"))
	t.Setenv("HSKG_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildAndManageGraphs(t *testing.T) {
	dir := setupEnv(t)
	itemsPath := filepath.Join(dir, "items.yaml")
	require.NoError(t, os.WriteFile(itemsPath, []byte(itemsYAML), 0o644))
	graphPath := filepath.Join(dir, "graph.json")
	exportDir := filepath.Join(dir, "export")

	out, err := run(t, "build",
		"--items", itemsPath,
		"--name", "checkout",
		"--save",
		"--out", graphPath,
		"--export", exportDir,
		"--evaluate",
	)
	require.NoError(t, err)

	var built buildOutput
	require.NoError(t, json.Unmarshal([]byte(out), &built))
	require.NotEmpty(t, built.GraphID)
	assert.Equal(t, 4, built.Items.TotalItems)
	assert.Equal(t, 2, built.Items.UXCount)
	assert.Equal(t, "checkout", built.Report.Name)
	assert.Equal(t, 4, built.Report.Stats.NodeCount)
	// two category cliques of two items each
	assert.Equal(t, 2, built.Report.Stats.SymbolicEdges)
	require.NotNil(t, built.Evaluation)
	assert.Equal(t, 1.0, built.Evaluation.Cooccurrence)
	assert.Len(t, built.Evaluation.Ablations, 3)

	kg, err := graph.LoadFile(graphPath)
	require.NoError(t, err)
	assert.Equal(t, 4, kg.NodeCount())

	nodes, err := report.ReadNodes(filepath.Join(exportDir, report.NodesFile))
	require.NoError(t, err)
	assert.Len(t, nodes, 4)

	out, err = run(t, "graphs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, built.GraphID)
	assert.Contains(t, out, "checkout")

	out, err = run(t, "graphs", "show", built.GraphID, "--hubs", "2")
	require.NoError(t, err)
	var rep report.GraphReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 4, rep.Stats.NodeCount)
	assert.Len(t, rep.Hubs, 2)

	out, err = run(t, "graphs", "delete", built.GraphID)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+built.GraphID+"\n", out)

	_, err = run(t, "graphs", "delete", built.GraphID)
	assert.ErrorContains(t, err, "not found")

	_, err = run(t, "graphs", "show", built.GraphID)
	assert.Error(t, err)
}

func TestBuildWithoutSources(t *testing.T) {
	setupEnv(t)
	// flags persist on the package-level command between runs
	buildOpts = buildFlags{}
	t.Cleanup(func() { buildOpts = buildFlags{} })

	_, err := run(t, "build")
	assert.ErrorContains(t, err, "no items loaded")
}

func TestConcepts(t *testing.T) {
	dir := setupEnv(t)
	path := filepath.Join(dir, "guide.txt")
	require.NoError(t, os.WriteFile(path, []byte("Make the settings page easy to scan. Buttons need clear labels."), 0o644))

	out, err := run(t, "concepts", path, "--source", "design")
	require.NoError(t, err)

	items, err := ingest.ParseItems([]byte(out))
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, "design", string(item.Source))
	}
	assert.Equal(t, "setting", items[0].Category)
	assert.True(t, strings.HasPrefix(items[1].Text, "Buttons"))

	_, err = run(t, "concepts", path, "--source", "marketing")
	assert.Error(t, err)
}

func TestValidateServerConfig(t *testing.T) {
	tests := []struct {
		port    int
		wantErr bool
	}{
		{port: 8080},
		{port: 0, wantErr: true},
		{port: 70000, wantErr: true},
	}
	for _, tt := range tests {
		cfg := &config.Config{Server: config.ServerConfig{Host: "localhost", Port: tt.port}}
		err := validateServerConfig(cfg)
		if tt.wantErr {
			assert.Error(t, err, "port %d", tt.port)
		} else {
			assert.NoError(t, err, "port %d", tt.port)
		}
	}
}
