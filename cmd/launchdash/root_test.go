package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testData = "testdata/launches.csv"

// execute runs the command tree with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "launchdash", cmd.Use)
	assert.Contains(t, cmd.Long, "scatter plot")
	assert.Equal(t, version, cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "chart", "import", "schema"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "log-level", "log-format"} {
		require.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	dataFlag := cmd.PersistentFlags().Lookup("data")
	require.NotNil(t, dataFlag)
	assert.Equal(t, "d", dataFlag.Shorthand)
}

func TestChartCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	chartCmd, _, err := cmd.Find([]string{"chart"})
	require.NoError(t, err)

	siteFlag := chartCmd.Flags().Lookup("site")
	require.NotNil(t, siteFlag)
	assert.Equal(t, "ALL", siteFlag.DefValue)

	formatFlag := chartCmd.Flags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "f", formatFlag.Shorthand)
	assert.Equal(t, "json", formatFlag.DefValue)

	outFlag := chartCmd.Flags().Lookup("out")
	require.NotNil(t, outFlag)
	assert.Equal(t, "o", outFlag.Shorthand)
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	addrFlag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addrFlag)
	assert.Equal(t, "", addrFlag.DefValue)
}

func TestChartPieCSV(t *testing.T) {
	out, err := execute(t, "--data", testData, "chart", "pie", "--site", "KSC LC-39A", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "Label,Value\n1,2\n", out)
}

func TestChartPieAllSites(t *testing.T) {
	out, err := execute(t, "--data", testData, "chart", "pie", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "Label,Value\n0,4\n1,4\n", out)
}

func TestChartScatterRange(t *testing.T) {
	out, err := execute(t, "--data", testData, "chart", "scatter", "--low", "3000", "--high", "10000", "--format", "csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header plus three launches above 3000 kg")
	assert.Equal(t, "Series,Payload Mass (kg),Success (1) / Failure (0)", lines[0])
	assert.Contains(t, out, "FT,9600,1")
	assert.Contains(t, out, "FT,3136,1")
	assert.Contains(t, out, "B4,5300,1")
}

func TestChartSVGToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "pie.svg")
	out, err := execute(t, "--data", testData, "chart", "pie", "--format", "svg", "--out", dst)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestChartErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown chart", []string{"--data", testData, "chart", "bar"}, "unknown chart"},
		{"bad format", []string{"--data", testData, "chart", "pie", "--format", "xml"}, "xml"},
		{"missing args", []string{"--data", testData, "chart"}, "accepts 1 arg"},
		{"missing dataset", []string{"--data", "testdata/nope.csv", "chart", "pie"}, "nope.csv"},
		{"bad log level", []string{"--log-level", "loud", "--data", testData, "chart", "pie"}, "loud"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestImportThenChart(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "launches.sqlite")

	out, err := execute(t, "import", testData, dst)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 8 launches")
	assert.Contains(t, out, "(import ")

	fromCSV, err := execute(t, "--data", testData, "chart", "scatter", "--format", "csv")
	require.NoError(t, err)
	fromSQLite, err := execute(t, "--data", dst, "chart", "scatter", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, fromCSV, fromSQLite)
}

func TestSchemaYAML(t *testing.T) {
	out, err := execute(t, "schema", testData)
	require.NoError(t, err)
	assert.Contains(t, out, "launch_site")
	assert.Contains(t, out, "payload_mass_kg")
}

func TestSchemaJSON(t *testing.T) {
	out, err := execute(t, "--data", testData, "schema", "--format", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, "booster_version_category")
}

func TestSchemaInvalidFormat(t *testing.T) {
	_, err := execute(t, "schema", testData, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestWriteFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, writeFile(dst, func(w io.Writer) error {
		_, err := io.WriteString(w, "Label,Value\n")
		return err
	}))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "Label,Value\n", string(data))

	writeErr := errors.New("disk full")
	err = writeFile(dst, func(io.Writer) error { return writeErr })
	assert.ErrorIs(t, err, writeErr)

	err = writeFile(filepath.Join(t.TempDir(), "missing", "out.csv"), func(io.Writer) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating output file")
}

func TestWriteFileReportsCloseError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "out.csv")
	err := writeFile(dst, func(w io.Writer) error {
		// Closing early makes the deferred close fail.
		return w.(*os.File).Close()
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing output file")
}
