package http

// Handler produces a response for every request. It's called synchronously on the
// goroutine of the connection the request came from, so blocking in it blocks the
// connection as well. Returning nil or panicking is answered with 500 Internal Server Error.
type Handler func(request *Request) *Response
