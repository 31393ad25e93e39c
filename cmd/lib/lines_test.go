package lib

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLines(t *testing.T) {
	var triggers int
	var echo bytes.Buffer

	n, err := CountLines(context.Background(), strings.NewReader("a\nb\nc"), &echo, func() error {
		triggers++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, 3, triggers)
	assert.Equal(t, "a\nb\nc", echo.String())
}

func TestCountLines_NoEcho(t *testing.T) {
	n, err := CountLines(context.Background(), strings.NewReader("a\n\nb\n"), nil, func() error { return nil })

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCountLines_TriggerError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0

	n, err := CountLines(context.Background(), strings.NewReader("a\nb\nc\n"), nil, func() error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(2), n)
}

func TestCountLines_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := CountLines(ctx, strings.NewReader("a\nb\n"), nil, func() error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), n)
}

func TestCountLines_LongLinesPassThrough(t *testing.T) {
	long := strings.Repeat("x", 2*1024*1024)
	input := "short\n" + long + "\ntail\r\nno-newline"
	var echo bytes.Buffer
	triggers := 0

	n, err := CountLines(context.Background(), strings.NewReader(input), &echo, func() error {
		triggers++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, 4, triggers)
	assert.Equal(t, len(input), echo.Len())
	assert.Equal(t, input, echo.String())
}

func TestCountLines_Empty(t *testing.T) {
	n, err := CountLines(context.Background(), strings.NewReader(""), nil, func() error { return nil })

	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
