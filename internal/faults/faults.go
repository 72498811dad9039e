// Package faults defines the error taxonomy shared by the fetch and
// presentation layers. None of these errors are recovered locally; they
// propagate to the caller, which aborts the render cycle and surfaces a
// single failure message. No partial map is ever shown.
package faults

import (
	"errors"
	"net/http"
)

// RequestError wraps a network or HTTP-level failure from a remote source.
type RequestError struct {
	Source string // "acs" or "boundary"
	Err    error
}

func (e *RequestError) Error() string {
	return e.Source + ": request failed: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

// ParseError wraps a malformed tabular statistics response.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "acs: malformed response: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }

// FormatError wraps a geometry payload that could not be decoded.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string { return "boundary: malformed geometry: " + e.Err.Error() }

func (e *FormatError) Unwrap() error { return e.Err }

// DataError reports a degenerate statistical value, such as a zero or
// missing median home value that would make the derived ratios undefined.
type DataError struct {
	FIPS   string
	Detail string
}

func (e *DataError) Error() string {
	return "acs: degenerate data for county " + e.FIPS + ": " + e.Detail
}

// IsRequest reports whether any error in the chain is a RequestError.
func IsRequest(err error) bool {
	var re *RequestError
	return errors.As(err, &re)
}

// IsParse reports whether any error in the chain is a ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsFormat reports whether any error in the chain is a FormatError.
func IsFormat(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsData reports whether any error in the chain is a DataError.
func IsData(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

// HTTPStatus maps a fetch-cycle error to the status code the web layer
// responds with. Upstream failures are gateway errors from the client's
// point of view; degenerate data is unprocessable.
func HTTPStatus(err error) int {
	switch {
	case IsRequest(err), IsParse(err), IsFormat(err):
		return http.StatusBadGateway
	case IsData(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
