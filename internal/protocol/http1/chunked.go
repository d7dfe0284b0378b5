package http1

import (
	"errors"
	"strconv"

	"github.com/indigo-web/conveyor/http/headers"
	"github.com/indigo-web/conveyor/http/status"
	"github.com/indigo-web/conveyor/internal/hexconv"
)

// ErrBadChunk is returned when a chunk-size line doesn't start with a hex digit. It can't
// be answered with a status code, as the framing of the stream is lost.
var ErrBadChunk = errors.New("malformed chunk-size line")

// maxChunkLengthDigits allows any length fitting into uint64.
const maxChunkLengthDigits = 16

var crlf = []byte("\r\n")

// ReadChunked decodes a chunked body, returning the chunks concatenated. Chunk extensions
// are ignored, the trailer is read and discarded. The accumulated length is bounded by
// maxSize.
func ReadChunked(client Client, maxFields int, maxSize int64) ([]byte, error) {
	body := make([]byte, 0, 512)

	for {
		line, err := client.ReadLine()
		if err != nil {
			return nil, unexpected(err)
		}

		length, digits, ok := hexconv.Prefix(line, maxChunkLengthDigits)
		if digits == 0 {
			return nil, ErrBadChunk
		}

		if !ok || length > uint64(maxSize-int64(len(body))) {
			return nil, status.ErrBodyTooLarge
		}

		if length == 0 {
			break
		}

		chunk, err := client.ReadFull(int(length))
		if err != nil {
			return nil, unexpected(err)
		}

		body = append(body, chunk...)

		// the CRLF terminating chunk-data
		if _, err = client.ReadLine(); err != nil {
			return nil, unexpected(err)
		}
	}

	if _, err := headers.Read(client, maxFields); err != nil {
		return nil, err
	}

	return body, nil
}

// WriteChunked encodes data as a chunked body with chunks of at most chunkSize bytes,
// terminated by the last chunk and an empty trailer. Every chunk is flushed separately.
func WriteChunked(w Writer, data []byte, chunkSize int) error {
	var sizeLine []byte

	for len(data) > 0 {
		n := min(chunkSize, len(data))
		sizeLine = append(strconv.AppendUint(sizeLine[:0], uint64(n), 16), crlf...)

		if err := w.Write(sizeLine); err != nil {
			return err
		}

		if err := w.Write(data[:n]); err != nil {
			return err
		}

		if err := w.Write(crlf); err != nil {
			return err
		}

		if err := w.Flush(); err != nil {
			return err
		}

		data = data[n:]
	}

	if err := w.WriteString("0\r\n\r\n"); err != nil {
		return err
	}

	return w.Flush()
}
