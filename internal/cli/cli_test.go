package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given args, capturing stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "--format", "xml", "describe")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRun_Text(t *testing.T) {
	out, _, err := execute(t, "run", filepath.Join("testdata", "double_square.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "Pipeline: double_square")
	assert.Contains(t, out, "Output:   36")
}

func TestRun_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "run", filepath.Join("testdata", "double_square.yaml"))
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Pipeline string `json:"pipeline"`
			RunToken string `json:"run_token"`
			Output   int    `json:"output"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "double_square", resp.Data.Pipeline)
	assert.NotEmpty(t, resp.Data.RunToken)
	assert.Equal(t, 36, resp.Data.Output)
}

func TestRun_Trace(t *testing.T) {
	out, _, err := execute(t, "run", "--trace", filepath.Join("testdata", "double_square.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "seq=1 stage=0 fn=math.double shape=scalar:int via=single_scalar")
	assert.Contains(t, out, "seq=2 stage=1 fn=math.square")
}

func TestRun_Fanout(t *testing.T) {
	out, _, err := execute(t, "run", filepath.Join("testdata", "fanout.yaml"))
	require.NoError(t, err)

	// double(2) = 4, then square and negate fan out
	assert.Contains(t, out, "Output:   [16,-4]")
}

func TestRun_UnknownFunction(t *testing.T) {
	out, _, err := execute(t, "run", filepath.Join("testdata", "unknown_fn.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E101")
	assert.Contains(t, out, "ghost.fn")
}

func TestRun_MissingManifest(t *testing.T) {
	out, _, err := execute(t, "run", filepath.Join("testdata", "no_such.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E002")
}

func TestRun_MaxStages(t *testing.T) {
	out, _, err := execute(t, "run", "--max-stages", "1", filepath.Join("testdata", "double_square.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "exceeds limit")
}

func TestRun_PersistentCache(t *testing.T) {
	db := filepath.Join(t.TempDir(), "strategies.db")
	manifestPath := filepath.Join("testdata", "double_square.yaml")

	_, _, err := execute(t, "--cache", db, "run", manifestPath)
	require.NoError(t, err)

	// Second run replays the recorded strategies from disk
	_, _, err = execute(t, "--cache", db, "run", manifestPath)
	require.NoError(t, err)

	out, _, err := execute(t, "--cache", db, "strategies", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "math.double")
	assert.Contains(t, out, "math.square")
	assert.Contains(t, out, "single_scalar")
}

func TestStrategies_RequiresCache(t *testing.T) {
	out, _, err := execute(t, "strategies", "list")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "requires --cache")
}

func TestStrategies_Prune(t *testing.T) {
	db := filepath.Join(t.TempDir(), "strategies.db")
	_, _, err := execute(t, "--cache", db, "run", filepath.Join("testdata", "double_square.yaml"))
	require.NoError(t, err)

	out, _, err := execute(t, "--cache", db, "strategies", "prune", "math.double")
	require.NoError(t, err)
	assert.Contains(t, out, "pruned 1 record(s) for math.double")

	out, _, err = execute(t, "--cache", db, "strategies", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "math.double ")
	assert.Contains(t, out, "math.square")
}

func TestValidate_OK(t *testing.T) {
	out, _, err := execute(t, "validate", filepath.Join("testdata", "double_square.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Manifest valid")
}

func TestValidate_UnknownFunction(t *testing.T) {
	out, _, err := execute(t, "validate", filepath.Join("testdata", "unknown_fn.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E101")
}

func TestValidate_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "validate", filepath.Join("testdata", "double_square.yaml"))
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
}

func TestDescribe_All(t *testing.T) {
	out, _, err := execute(t, "describe")
	require.NoError(t, err)

	assert.Contains(t, out, "math.double(n: any)")
	assert.Contains(t, out, "math.sum(values: list)")
	assert.Contains(t, out, "strings.concat(left: str, right: str) -> str")
	assert.Contains(t, out, "data.merge(left: map, right: map) -> map")
}

func TestDescribe_Single(t *testing.T) {
	out, _, err := execute(t, "describe", "data.get")
	require.NoError(t, err)
	assert.Contains(t, out, "data.get(source: map, key: str)")
	assert.NotContains(t, out, "math.double")
}

func TestDescribe_Unknown(t *testing.T) {
	out, _, err := execute(t, "describe", "no.such")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "E101")
}

func TestDescribe_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "describe", "math.add")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   []FunctionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "math.add", resp.Data[0].Identity)
	require.Len(t, resp.Data[0].Params, 2)
	assert.True(t, resp.Data[0].Params[0].Required)
}
