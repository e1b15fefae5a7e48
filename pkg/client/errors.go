package client

import (
	"errors"
	"fmt"
)

// ErrInvalidPageRequest is returned for a negative page index or a
// non-positive page size.
var ErrInvalidPageRequest = errors.New("invalid page request")

// ErrorClass classifies fetch failures for logs and metrics. Callers treat
// every class the same way.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassNetwork represents transport failures and timeouts.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents a body that is not a valid artworks page.
	ErrorClassDecode ErrorClass = "decode"
)

// FetchError is returned when a page could not be obtained.
type FetchError struct {
	// Page is the 0-based page index that was requested.
	Page       int
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch artworks page %d: %s error", e.Page, e.Class)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap supports errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status to an error class. It returns "" for
// statuses that are not failures.
func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
