package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := ProgressLoggerCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestProgressLogger_Step(t *testing.T) {
	stdout, stderr, err := run(t, "a\nb\nc\nd\ne\n", "--step", "2", "--name", "rows", "--max", "5")
	require.NoError(t, err)

	assert.Empty(t, stdout)
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "rows: 2/5 (40.0%) +2")
	assert.Contains(t, lines[1], "rows: 4/5 (80.0%) +2")
	assert.Contains(t, lines[2], "rows: finished 5/5 (100.0%)")
}

func TestProgressLogger_Echo(t *testing.T) {
	stdout, stderr, err := run(t, "one\ntwo\n", "--step", "10", "--echo", "--progress-format", "json")
	require.NoError(t, err)

	assert.Equal(t, "one\ntwo\n", stdout)
	assert.Contains(t, stderr, `"final":true`)
	assert.Contains(t, stderr, `"count":2`)
}

func TestProgressLogger_ProgressToStdout(t *testing.T) {
	stdout, _, err := run(t, "x\n", "--step", "1", "--progress-output", "stdout")
	require.NoError(t, err)

	assert.Contains(t, stdout, "lines: 1 +1")
	assert.Contains(t, stdout, "lines: finished 1")
}

func TestProgressLogger_NoCriteria(t *testing.T) {
	_, stderr, err := run(t, "x\n")

	require.Error(t, err)
	assert.Contains(t, stderr, "unable to set up progress reporting")
}

func TestProgressLogger_BadFormat(t *testing.T) {
	_, _, err := run(t, "x\n", "--step", "1", "--progress-format", "xml")

	assert.Error(t, err)
}

func TestProgressLogger_RejectsArgs(t *testing.T) {
	_, _, err := run(t, "", "--step", "1", "extra")

	assert.Error(t, err)
}
