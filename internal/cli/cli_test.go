package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the command line with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--env-file", ""}, args...))
	err := root.Execute()
	return strings.TrimSpace(out.String()), err
}

// writeConfig writes a config whose store is a SQLite file in a temp dir.
func writeConfig(t *testing.T, similarity string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := similarity + "\nstore:\n  type: sqlite\n  path: " + filepath.Join(dir, "checkpoints.db") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const linearConfig = `similarity:
  type: linear
  tensor_1_dim: 2
  tensor_2_dim: 2
  combination: x,y,x*y`

func TestRootCmd_Definition(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "simfunc", root.Use)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"dim", "score", "checkpoint", "functions"})

	verbose := root.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
}

func TestDimCmd(t *testing.T) {
	t.Run("from flags", func(t *testing.T) {
		out, err := run(t, "dim", "--combination", "x,y,x*y", "--dim1", "3", "--dim2", "3")
		require.NoError(t, err)
		assert.Equal(t, "9", out)
	})

	t.Run("mismatch", func(t *testing.T) {
		_, err := run(t, "dim", "--combination", "x*y", "--dim1", "3", "--dim2", "4")
		assert.Error(t, err)
	})

	t.Run("invalid combination", func(t *testing.T) {
		_, err := run(t, "dim", "--combination", "x%y", "--dim1", "3", "--dim2", "3")
		assert.Error(t, err)
	})

	t.Run("from config as json", func(t *testing.T) {
		out, err := run(t, "--config", writeConfig(t, linearConfig), "--json", "dim")
		require.NoError(t, err)

		var got dimOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, 6, got.Dim)
		assert.Equal(t, "x,y,x*y", got.Combination)
	})

	t.Run("config with metric", func(t *testing.T) {
		_, err := run(t, "--config", writeConfig(t, "similarity:\n  type: cosine"), "dim")
		assert.Error(t, err)
	})
}

func TestScoreCmd(t *testing.T) {
	t.Run("default dot product", func(t *testing.T) {
		out, err := run(t, "score", "--x", "[1,2,3]", "--y", "[4,5,6]")
		require.NoError(t, err)
		assert.Equal(t, "32", out)
	})

	t.Run("configured metric", func(t *testing.T) {
		out, err := run(t, "--config", writeConfig(t, "similarity:\n  type: manhattan"), "score", "--x", "[0,0]", "--y", "[3,4]")
		require.NoError(t, err)
		assert.NotEqual(t, "32", out)
	})

	t.Run("needs one input kind", func(t *testing.T) {
		_, err := run(t, "score")
		assert.Error(t, err)

		_, err = run(t, "score", "--x", "[1]", "--y", "[1]", "--text-a", "a")
		assert.Error(t, err)
	})

	t.Run("bad vector", func(t *testing.T) {
		_, err := run(t, "score", "--x", "[1,", "--y", "[1]")
		assert.Error(t, err)
	})

	t.Run("unknown config key", func(t *testing.T) {
		_, err := run(t, "--config", writeConfig(t, "similarity:\n  type: cosine\n  bogus: 1"), "score", "--x", "[1]", "--y", "[1]")
		assert.Error(t, err)
	})

	t.Run("text without provider key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := run(t, "score", "--text-a", "cat", "--text-b", "dog")
		assert.Error(t, err)
	})
}

func TestCheckpointCmds(t *testing.T) {
	config := writeConfig(t, linearConfig)

	out, err := run(t, "--config", config, "checkpoint", "init", "tuned")
	require.NoError(t, err)
	assert.Len(t, out, 36, "expected a UUID")

	_, err = run(t, "--config", config, "checkpoint", "init", "tuned")
	assert.Error(t, err, "init should refuse to overwrite")

	_, err = run(t, "--config", config, "checkpoint", "init", "tuned", "--force")
	require.NoError(t, err)

	out, err = run(t, "--config", config, "checkpoint", "list")
	require.NoError(t, err)
	assert.Equal(t, "tuned", out)

	out, err = run(t, "--config", config, "--json", "checkpoint", "show", "tuned")
	require.NoError(t, err)
	var shown checkpointOutput
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "tuned", shown.Name)
	assert.Equal(t, 6, shown.Weights)
	assert.Equal(t, "linear", shown.Config["type"])

	// Zero bias and bounded weights: scoring zero vectors gives the bias
	out, err = run(t, "--config", config, "score", "--checkpoint", "tuned", "--x", "[0,0]", "--y", "[0,0]")
	require.NoError(t, err)
	assert.Equal(t, "0", out)

	_, err = run(t, "--config", config, "score", "--checkpoint", "missing", "--x", "[0,0]", "--y", "[0,0]")
	assert.Error(t, err)

	_, err = run(t, "--config", config, "checkpoint", "delete", "tuned")
	require.NoError(t, err)

	out, err = run(t, "--config", config, "--json", "checkpoint", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)

	_, err = run(t, "--config", config, "checkpoint", "show", "tuned")
	assert.Error(t, err)
}

func TestFunctionsCmd(t *testing.T) {
	out, err := run(t, "--json", "functions")
	require.NoError(t, err)

	var got functionsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Contains(t, got.Similarity, "linear")
	assert.Contains(t, got.Similarity, "cosine")
	assert.Contains(t, got.Activations, "linear")
	assert.Contains(t, got.Activations, "sigmoid")
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := loadConfig("")
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.similarity.Len())
	})

	t.Run("unknown section", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("similarity: {}\nextras: 1\n"), 0o644))
		_, err := loadConfig(path)
		assert.Error(t, err)
	})

	t.Run("store options", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  type: expirable\n  capacity: 4\n  ttl: 1m\n"), 0o644))
		cfg, err := loadConfig(path)
		require.NoError(t, err)

		store, err := cfg.openStore()
		require.NoError(t, err)
		defer store.Close()

		// The section can be opened again
		again, err := cfg.openStore()
		require.NoError(t, err)
		_ = again.Close()
	})

	t.Run("ttl in seconds", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  type: expirable\n  ttl: 60\n"), 0o644))
		cfg, err := loadConfig(path)
		require.NoError(t, err)

		store, err := cfg.openStore()
		require.NoError(t, err)
		_ = store.Close()
	})

	t.Run("bad ttl", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  type: expirable\n  ttl: soon\n"), 0o644))
		cfg, err := loadConfig(path)
		require.NoError(t, err)
		_, err = cfg.openStore()
		assert.Error(t, err)
	})

	t.Run("provider options", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "c.yaml")
		require.NoError(t, os.WriteFile(path, []byte("provider:\n  type: openai\n  api_key: sk-test\n  dimensions: 64\n"), 0o644))
		cfg, err := loadConfig(path)
		require.NoError(t, err)

		p, err := cfg.newProvider(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 8191, p.GetMaxTokens())
	})
}
