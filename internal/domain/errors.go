package domain

import "errors"

// ErrNotFound is returned for lookups of unknown or deleted job ids.
var ErrNotFound = errors.New("job not found")

// ErrDuplicateID is returned when inserting a job whose id already exists.
// Must not happen under correct id generation.
var ErrDuplicateID = errors.New("duplicate job id")

// DetectErrorKind distinguishes the two failure classes of the detection
// capability. Both are retried the same way; the split exists for the
// error message and the decode-failure counter only.
type DetectErrorKind string

const (
    DetectDecode    DetectErrorKind = "decode"
    DetectInference DetectErrorKind = "inference"
)

// DetectError wraps a detection failure with its kind.
type DetectError struct {
    Kind DetectErrorKind
    Err  error
}

func (e *DetectError) Error() string {
    return string(e.Kind) + " failure: " + e.Err.Error()
}

func (e *DetectError) Unwrap() error { return e.Err }

// IsDecodeFailure reports whether err is an audio decoding failure.
func IsDecodeFailure(err error) bool {
    var de *DetectError
    return errors.As(err, &de) && de.Kind == DetectDecode
}
