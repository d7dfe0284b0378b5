package protocol

import "github.com/indigo-web/conveyor/http"

// Parser reads requests off a connection, one at a time. Clean end of the stream before
// a request line is reported as (nil, nil).
type Parser interface {
	Parse() (*http.Request, error)
}

// Serializer converts an HTTP response builder into bytes and writes it
type Serializer interface {
	Write(response *http.Response) error
}

// Suit is a general pair of a parser and a serializer. Usually consists of both belonging
// to a same protocol major version
type Suit interface {
	Parser
	Serializer
}
