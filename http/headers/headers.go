package headers

import (
	"errors"
	"io"
	"strings"

	"github.com/indigo-web/conveyor/http/status"
	"github.com/indigo-web/conveyor/kv"
)

// LineReader yields lines without their terminators. io.EOF is returned only when the
// stream ended before any byte of the line.
type LineReader interface {
	ReadLine() (string, error)
}

// Read consumes a header block up to and including the empty line terminating it. Field
// names are kept as sent, values are stripped of surrounding whitespace. Lines starting
// with a space or a tab continue the previous field's value (obsolete line folding).
//
// The stream ending before the empty line results in io.ErrUnexpectedEOF.
func Read(r LineReader, maxNumber int) (*kv.Storage, error) {
	var (
		headers = kv.New()
		key     string
		value   strings.Builder
		pending bool
	)

	flush := func() {
		if pending {
			headers.Add(key, strings.TrimSpace(value.String()))
			value.Reset()
			pending = false
		}
	}

	for {
		line, err := r.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			return nil, io.ErrUnexpectedEOF
		case err != nil:
			return nil, err
		}

		if len(line) == 0 {
			flush()
			return headers, nil
		}

		if line[0] == ' ' || line[0] == '\t' {
			if !pending {
				return nil, status.ErrBadHeader
			}

			value.WriteByte(' ')
			value.WriteString(strings.TrimSpace(line))
			continue
		}

		flush()

		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			return nil, status.ErrBadHeader
		}

		if headers.Len() >= maxNumber {
			return nil, status.ErrTooManyHeaders
		}

		key = line[:colon]
		value.WriteString(strings.TrimSpace(line[colon+1:]))
		pending = true
	}
}
