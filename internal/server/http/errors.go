package http

import (
	"errors"
	"fmt"
)

// ErrNilResponse is the fault of a handler returned no response.
var ErrNilResponse = errors.New("handler returned nil response")

// PanicError is the fault of a handler which panicked.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("recovered from panic: %v", e.Value)
}

func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func recoverPanic(err *error) {
	r := recover()
	if r == nil {
		return
	}

	perr := PanicError{
		Value: r,
	}
	if *err == nil {
		*err = perr
		return
	}
	*err = errors.Join(*err, perr)
}
