package main

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the command's output pumps and the progress
// reporter at the same time.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr lockedBuffer
	cmd := ProgressExecCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestProgressExec_PassesStdoutThrough(t *testing.T) {
	stdout, stderr, err := execute(t, "--step", "2", "--", "sh", "-c", "printf 'a\\nb\\nc\\n'")
	require.NoError(t, err)

	assert.Equal(t, "a\nb\nc\n", stdout)
	assert.Contains(t, stderr, "lines: 2 +2")
	assert.Contains(t, stderr, "lines: finished 3")
}

func TestProgressExec_ExitCode(t *testing.T) {
	stdout, stderr, err := execute(t, "--step", "1", "--", "sh", "-c", "echo done; exit 3")

	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.code)
	assert.Equal(t, "done\n", stdout)
	assert.Contains(t, stderr, "lines: finished 1")
}

func TestProgressExec_CountStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "--step", "1", "--count", "stderr", "--progress-format", "json", "--",
		"sh", "-c", "echo out; echo err1 >&2; echo err2 >&2")
	require.NoError(t, err)

	assert.Equal(t, "out\n", stdout)
	assert.Contains(t, stderr, "err1\n")
	assert.Contains(t, stderr, `"count":2`)
	assert.Contains(t, stderr, `"final":true`)
}

func TestProgressExec_CountBoth(t *testing.T) {
	_, stderr, err := execute(t, "--step", "100", "--count", "both", "--progress-format", "json", "--",
		"sh", "-c", "echo a; echo b >&2; echo c")
	require.NoError(t, err)

	assert.Contains(t, stderr, `"count":3`)
}

func TestProgressExec_MissingCommand(t *testing.T) {
	_, stderr, err := execute(t, "--step", "1", "--", "/nonexistent/progress-exec-test")

	var ee *exitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, EXIT_ON_START_ERROR, ee.code)
	assert.Contains(t, stderr, "command failed")
}

func TestProgressExec_BadCount(t *testing.T) {
	_, _, err := execute(t, "--step", "1", "--count", "stdin", "--", "true")

	assert.Error(t, err)
}

func TestProgressExec_RequiresCommand(t *testing.T) {
	_, _, err := execute(t, "--step", "1")

	assert.Error(t, err)
}

func TestProgressExec_LongLinePassesThrough(t *testing.T) {
	stdout, stderr, err := execute(t, "--step", "100", "--progress-format", "json", "--",
		"sh", "-c", "head -c 2000000 /dev/zero | tr '\\0' x; printf '\\nlast'")
	require.NoError(t, err)

	assert.Equal(t, strings.Repeat("x", 2000000)+"\nlast", stdout)
	assert.Contains(t, stderr, `"count":2`)
	assert.Contains(t, stderr, `"final":true`)
}
