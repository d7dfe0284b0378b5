package http

import (
	"errors"
	"strings"

	"github.com/indigo-web/conveyor/http/proto"
	"github.com/indigo-web/conveyor/kv"
)

type (
	Headers = *kv.Storage
	Header  = kv.Pair
)

var (
	ErrEmptyMethod = errors.New("request method must not be empty")
	ErrEmptyPath   = errors.New("request path must not be empty")
)

// Request represents a parsed HTTP request. It's never modified after being constructed.
type Request struct {
	method  string
	path    string
	headers Headers
	body    Body
	proto   proto.Proto
}

// NewRequest validates and constructs a request. Nil headers are replaced by empty ones.
func NewRequest(method, path string, protocol proto.Proto, headers Headers, body Body) (*Request, error) {
	if len(strings.TrimSpace(method)) == 0 {
		return nil, ErrEmptyMethod
	}

	if len(strings.TrimSpace(path)) == 0 {
		return nil, ErrEmptyPath
	}

	if headers == nil {
		headers = kv.New()
	}

	return &Request{
		method:  method,
		path:    path,
		headers: headers,
		body:    body,
		proto:   protocol,
	}, nil
}

// Method returns the method token exactly as it was received.
func (r *Request) Method() string {
	return r.method
}

// Path returns the request target exactly as it was received, without any decoding.
func (r *Request) Path() string {
	return r.path
}

func (r *Request) Proto() proto.Proto {
	return r.proto
}

// Headers returns request headers in order they were received. They must not be modified.
func (r *Request) Headers() Headers {
	return r.headers
}

func (r *Request) Body() Body {
	return r.body
}

// Respond returns a new 200 OK response. It's a shorthand for handlers.
func (r *Request) Respond() *Response {
	return NewResponse()
}
