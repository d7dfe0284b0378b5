package headers

import (
	"io"
	"strings"
	"testing"

	"github.com/indigo-web/conveyor/http/status"
	"github.com/stretchr/testify/require"
)

type lines []string

func (l *lines) ReadLine() (string, error) {
	if len(*l) == 0 {
		return "", io.EOF
	}

	line := (*l)[0]
	*l = (*l)[1:]
	return line, nil
}

func newLines(block string) *lines {
	l := lines(strings.Split(block, "\n"))
	return &l
}

func TestRead(t *testing.T) {
	t.Run("simple", func(t *testing.T) {
		r := newLines("Host: example.com\nAccept:text/plain  \nAccept: */*\n\nrest")
		headers, err := Read(r, 10)
		require.NoError(t, err)
		require.Equal(t, 3, headers.Len())
		require.Equal(t, "example.com", headers.Value("host"))
		require.Equal(t, []string{"text/plain", "*/*"}, collect(headers.Values("accept")))
		require.Equal(t, lines{"rest"}, *r)
	})

	t.Run("empty block", func(t *testing.T) {
		headers, err := Read(newLines("\n"), 10)
		require.NoError(t, err)
		require.True(t, headers.Empty())
	})

	t.Run("empty value", func(t *testing.T) {
		headers, err := Read(newLines("X-Empty:\n\n"), 10)
		require.NoError(t, err)
		value, found := headers.Get("x-empty")
		require.True(t, found)
		require.Empty(t, value)
	})

	t.Run("folded value", func(t *testing.T) {
		headers, err := Read(newLines("X-Long: first\n  second\n\tthird\nHost: a\n\n"), 10)
		require.NoError(t, err)
		require.Equal(t, "first second third", headers.Value("X-Long"))
		require.Equal(t, "a", headers.Value("Host"))
	})

	t.Run("colon in value", func(t *testing.T) {
		headers, err := Read(newLines("Host: localhost:8080\n\n"), 10)
		require.NoError(t, err)
		require.Equal(t, "localhost:8080", headers.Value("Host"))
	})

	t.Run("no colon", func(t *testing.T) {
		_, err := Read(newLines("Host example.com\n\n"), 10)
		require.ErrorIs(t, err, status.ErrBadHeader)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := Read(newLines(": value\n\n"), 10)
		require.ErrorIs(t, err, status.ErrBadHeader)
	})

	t.Run("leading fold", func(t *testing.T) {
		_, err := Read(newLines(" value\n\n"), 10)
		require.ErrorIs(t, err, status.ErrBadHeader)
	})

	t.Run("too many", func(t *testing.T) {
		_, err := Read(newLines("A: 1\nB: 2\nC: 3\n\n"), 2)
		require.ErrorIs(t, err, status.ErrTooManyHeaders)
	})

	t.Run("unexpected eof", func(t *testing.T) {
		_, err := Read(newLines("Host: example.com"), 10)
		require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	})
}

func collect(seq func(func(string) bool)) (values []string) {
	for value := range seq {
		values = append(values, value)
	}

	return values
}
