// Package httpkit re-exports the platform handler helpers for service modules
// modules import this rather than internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "customerlens/internal/platform/net/http"
	"customerlens/internal/platform/net/http/bind"
)

type (
	// Envelope is the JSON envelope every endpoint answers with
	Envelope = phttp.Envelope

	// Response is the return style handler result
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error maps err to a status and error envelope
func Error(err error) Response { return phttp.Error(err) }

// Blob returns raw bytes with a content type
func Blob(contentType string, b []byte) Response { return phttp.Blob(contentType, b) }

// Handle adapts a Response returning function
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// JSON binds and validates T, fn may return a Response to control status or body
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		in, err := bind.ParseJSON[T](r)
		if err != nil {
			return Error(err)
		}
		return wrap(fn(r, in))
	})
}

// Call adapts a handler that takes no JSON body
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		return wrap(fn(r))
	})
}

func wrap(out any, err error) Response {
	if err != nil {
		return Error(err)
	}
	if resp, ok := out.(Response); ok {
		return resp
	}
	return OK(out)
}

// URLParam returns the named path parameter
func URLParam(r *http.Request, name string) string { return phttp.URLParam(r, name) }
