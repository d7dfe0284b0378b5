package main

import (
	"github.com/indigo-web/conveyor/http"
)

type echoedHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type echoed struct {
	Method   string         `json:"method"`
	Path     string         `json:"path"`
	Protocol string         `json:"protocol"`
	Headers  []echoedHeader `json:"headers"`
	Body     string         `json:"body"`
	Binary   bool           `json:"binary"`
}

// echo describes the request in the response body as JSON.
func echo(request *http.Request) *http.Response {
	headers := make([]echoedHeader, 0, request.Headers().Len())
	for name, value := range request.Headers().Pairs() {
		headers = append(headers, echoedHeader{name, value})
	}

	return request.Respond().JSON(echoed{
		Method:   request.Method(),
		Path:     request.Path(),
		Protocol: request.Proto().String(),
		Headers:  headers,
		Body:     request.Body().String(),
		Binary:   request.Body().IsBinary(),
	})
}
