// Package errorspkg provides common app errors.
package errorspkg

import "errors"

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrTimeout indicates that the request deadline passed before the operation finished.
	ErrTimeout = errors.New("request timed out")
)
