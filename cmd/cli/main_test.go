package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/dynresolve/internal/app"
	"github.com/specialistvlad/dynresolve/internal/cli"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Resolves(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "main.hcl", "ports = [80, 443]\n")
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(context.Background(), out, errOut, []string{"-t", "list(integer)", "-output", "json", path})

	require.NoError(t, err)
	require.Contains(t, out.String(), `"name": "ports"`)
	require.Contains(t, out.String(), `"matched": true`)
}

func TestRun_Unresolved(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "main.yaml", "name: text\n")
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	err := run(context.Background(), out, errOut, []string{"-t", "bool", path})

	require.ErrorIs(t, err, app.ErrUnresolved)
	require.Contains(t, out.String(), "matched: false")
	require.Contains(t, errOut.String(), "No representation matches the requested type.")
}

func TestRun_InvalidType(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "main.hcl", "a = 1\n")
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-t", "list(", path})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, exitErr.Message, "invalid type")
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	path := writeInput(t, "main.hcl", "a = [1,\n")
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{path})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse HCL file")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
