package lib

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

const readBufferSize = 64 * 1024

// CountLines calls trigger once per line read from r, copying the input to
// echo byte for byte when echo is not nil. Lines of any length are counted,
// as is a final line without a newline. It stops at EOF, on the first error,
// or when ctx is done, and returns the number of lines read.
func CountLines(ctx context.Context, r io.Reader, echo io.Writer, trigger func() error) (int64, error) {
	reader := bufio.NewReaderSize(r, readBufferSize)

	var n int64
	partial := false
	for {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		// ReadSlice hands back at most a buffer's worth; longer lines come in
		// several chunks ending with ErrBufferFull.
		chunk, err := reader.ReadSlice('\n')
		if len(chunk) > 0 {
			partial = true
			if echo != nil {
				if _, werr := echo.Write(chunk); werr != nil {
					return n, fmt.Errorf("unable to echo line %d: %w", n+1, werr)
				}
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if !partial {
				return n, nil
			}
		default:
			return n, fmt.Errorf("unable to read input: %w", err)
		}

		partial = false
		n++
		if terr := trigger(); terr != nil {
			return n, terr
		}
		if err != nil {
			return n, nil
		}
	}
}
