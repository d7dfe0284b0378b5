package http

import (
	"fmt"

	"github.com/indigo-web/conveyor/http/mime"
	"github.com/indigo-web/conveyor/http/status"
	"github.com/indigo-web/conveyor/kv"
	json "github.com/json-iterator/go"
)

// Fields are the values a Response was built with.
type Fields struct {
	Headers Headers
	Status  string
	Body    Body
	Code    status.Code
}

func (f *Fields) String() string {
	return fmt.Sprintf(
		"Response(code=%d, message=%s, headers=%s, body=%s)", f.Code, f.Status, f.Headers, f.Body,
	)
}

type Response struct {
	fields *Fields
}

// NewResponse returns a new instance of the Response object with status code set to 200 OK,
// no headers and an empty text body.
func NewResponse() *Response {
	return &Response{
		&Fields{
			Code:    status.OK,
			Status:  status.Text(status.OK),
			Headers: kv.New(),
		},
	}
}

// Code sets a Response code and a corresponding reason phrase. Codes without a known reason
// phrase get an empty one, call Status explicitly in order to set it.
func (r *Response) Code(code status.Code) *Response {
	r.fields.Code = code
	r.fields.Status = status.Text(code)
	return r
}

// Status sets a custom reason phrase. It must be called after Code, as the latter resets it.
func (r *Response) Status(status string) *Response {
	r.fields.Status = status
	return r
}

// Header adds header values to a key. In case it already exists, the values will be
// appended, not replaced.
func (r *Response) Header(key string, values ...string) *Response {
	for _, value := range values {
		r.fields.Headers.Add(key, value)
	}

	return r
}

// Headers merges passed headers into the Response. Keys are added in lexicographical order.
func (r *Response) Headers(headers map[string][]string) *Response {
	for _, pair := range kv.NewFromMap(headers).Expose() {
		r.fields.Headers.Add(pair.Key, pair.Value)
	}

	return r
}

// ContentType sets the Content-Type header, replacing the previous one if any.
func (r *Response) ContentType(value mime.MIME) *Response {
	r.fields.Headers.Set("Content-Type", value)
	return r
}

// String sets the response's body to the passed text.
func (r *Response) String(body string) *Response {
	return r.Body(Text(body))
}

// Bytes sets the response's body to passed slice WITHOUT COPYING. Changing
// the passed slice later will affect the response by itself.
func (r *Response) Bytes(body []byte) *Response {
	return r.Body(Binary(body))
}

func (r *Response) Body(body Body) *Response {
	r.fields.Body = body
	return r
}

// TryJSON serializes the model into the response's body and returns the Response and
// an error, if any. The body is binary, as JSON is UTF-8 encoded.
func (r *Response) TryJSON(model any) (*Response, error) {
	data, err := json.ConfigCompatibleWithStandardLibrary.Marshal(model)
	if err != nil {
		return r, err
	}

	return r.ContentType(mime.JSON).Bytes(data), nil
}

// JSON does the same as TryJSON does, except returned error is being implicitly wrapped
// by Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error returns a response builder with an error set. If passed err is nil, nothing will happen.
// If an instance of status.HTTPError is passed, its code is set and its message becomes the
// body if the error is public. Otherwise, the code is either the first passed one or
// status.InternalServerError, and the error message becomes the body.
func (r *Response) Error(err error, code ...status.Code) *Response {
	if err == nil {
		return r
	}

	if http, ok := err.(status.HTTPError); ok {
		r.Code(http.Code)
		if http.Public {
			r.String(http.Message)
		}

		return r
	}

	c := status.InternalServerError
	if len(code) > 0 {
		// peek the first, ignore the rest
		c = code[0]
	}

	return r.
		Code(c).
		String(err.Error())
}

// Reveal returns the values, filled by builder. Used mostly in internal purposes.
func (r *Response) Reveal() *Fields {
	return r.fields
}

// Respond is a predicate to request.Respond(). May be used as a dummy handler
func Respond(request *Request) *Response {
	return request.Respond()
}

// Code is a predicate to request.Respond().Code(...)
func Code(request *Request, code status.Code) *Response {
	return request.Respond().Code(code)
}
