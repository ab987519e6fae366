package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/solver"
)

// run executes the root command with fresh flag values and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		c.Flags().VisitAll(reset)
		c.PersistentFlags().VisitAll(reset)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSolve_Text(t *testing.T) {
	out, err := run(t, "solve", "x^2 - 4", "--guess", "3", "--stop", "0.01", "--format", "text")
	require.NoError(t, err)

	assert.Contains(t, out, "| Iteration | x | f(x) | f'(x) | Error % |")
	assert.Contains(t, out, "| 4 | 2.00001")
	assert.Contains(t, out, "Root found: 2.000000 at Iteration 4")
}

func TestSolve_JSON(t *testing.T) {
	out, err := run(t, "solve", "x^2", "-", "4", "-g", "3", "-s", "0.01", "-f", "json")
	require.NoError(t, err)

	var resp gonewton.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "x^2 - 4", resp.Function)
	assert.Equal(t, solver.Converged, resp.Result.Status)
}

func TestSolve_NotConvergedExitsZero(t *testing.T) {
	out, err := run(t, "solve", "x^2 + 1", "-g", "0.5", "-s", "0.01", "-n", "5", "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, fmt.Sprintf(solver.MsgNotConverged, 5))
}

func TestSolve_RequestErrorsFail(t *testing.T) {
	out, err := run(t, "solve", "3x +* 2", "-g", "1", "-s", "1", "-f", "text")
	assert.ErrorIs(t, err, errRejected)
	assert.Contains(t, out, "Could not parse function")

	_, err = run(t, "solve", "x", "-g", "abc", "-s", "1", "-f", "text")
	assert.ErrorIs(t, err, errRejected)
}

func TestSolve_UnknownFormat(t *testing.T) {
	_, err := run(t, "solve", "x", "-g", "1", "-s", "1", "-f", "yaml")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, errRejected)
}

func TestSolve_Plot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root.png")
	_, err := run(t, "solve", "x^2 - 4", "-g", "3", "-s", "0.01", "-f", "json", "--plot", path)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 800, img.Bounds().Dx())
}

func TestSolve_ConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "newton.yaml")
	require.NoError(t, os.WriteFile(path, []byte("solver:\n  max_iterations: 3\n"), 0o644))

	out, err := run(t, "solve", "x^2 + 1", "-g", "0.5", "-s", "0.01", "-f", "json", "--config", path)
	require.NoError(t, err)

	var resp gonewton.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 3, resp.Result.MaxIterations)
	assert.Len(t, resp.Trace, 3)
}

func TestDiff(t *testing.T) {
	out, err := run(t, "diff", "x^3")
	require.NoError(t, err)
	assert.Equal(t, "f(x) = x^3\nf'(x) = 3*x^2\n", out)

	out, err = run(t, "diff", "x^3", "--order", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "f'''(x) = 6\n")

	out, err = run(t, "diff", "sqrt x", "--latex")
	require.NoError(t, err)
	assert.Contains(t, out, `f(x) = \sqrt{x}`)

	_, err = run(t, "diff", "x + y")
	assert.Error(t, err)

	_, err = run(t, "diff", "x^7", "--order", "6")
	assert.ErrorContains(t, err, "--order must be between 1 and 5")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "newton version "+gonewton.Version+"\n", out)
}
