package store

import "errors"

var (
	ErrNotFound = errors.New("store: document not found")
	// ErrStaleVersion is returned by conditional writes when the document
	// has moved past the caller's base version.
	ErrStaleVersion = errors.New("store: document changed since base version")
)

// ContentReadError reports a failed fetch or subscription. Callers recover
// by substituting the default content.
type ContentReadError struct {
	Op  string
	Err error
}

func (e *ContentReadError) Error() string {
	return "content read (" + e.Op + "): " + e.Err.Error()
}

func (e *ContentReadError) Unwrap() error { return e.Err }

// ContentWriteError reports a failed save. The caller's copy of the
// content is never modified by a failed write.
type ContentWriteError struct {
	Op  string
	Err error
}

func (e *ContentWriteError) Error() string {
	return "content write (" + e.Op + "): " + e.Err.Error()
}

func (e *ContentWriteError) Unwrap() error { return e.Err }
