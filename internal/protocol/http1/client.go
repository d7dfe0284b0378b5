package http1

import (
	"errors"
	"io"
)

// Client is the connection the codec works on top of. Reads are exact: nothing past the
// requested line or byte count may be consumed.
type Client interface {
	ReadLine() (string, error)
	ReadFull(n int) ([]byte, error)
	Writer
}

type Writer interface {
	Write([]byte) error
	WriteString(string) error
	Flush() error
}

// unexpected converts io.EOF into io.ErrUnexpectedEOF. It's used wherever the stream
// ending means the message was cut off.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}
