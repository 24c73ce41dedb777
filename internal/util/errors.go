package util

import "errors"

var (
	// ErrShapeMismatch means the scoring backend did not return exactly three
	// label scores for every text in a batch.
	ErrShapeMismatch = errors.New("scoring backend returned wrong label count")

	// ErrBackendUnavailable means the scoring backend could not be reached;
	// the inference stage recovers by switching to the rule-based classifier.
	ErrBackendUnavailable = errors.New("scoring backend unavailable")

	// ErrNoUpload means a run was requested before any CSV was uploaded to
	// the caller's workspace.
	ErrNoUpload = errors.New("no CSV file uploaded")

	ErrMissingColumn = errors.New("required column missing")
)
