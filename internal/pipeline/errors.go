// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import "fmt"

// ErrorKind names the stage at which a query failed.
type ErrorKind string

const (
	KindRetrieval  ErrorKind = "retrieval"
	KindSynthesis  ErrorKind = "synthesis"
	KindFormatting ErrorKind = "formatting"
	KindExport     ErrorKind = "export"
)

// QueryError is returned by Submit when a stage fails. The session is left
// as it was before the submission.
type QueryError struct {
	Kind ErrorKind
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Kind, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Notice returns a message suitable for showing to the person who asked.
func (e *QueryError) Notice() string {
	switch e.Kind {
	case KindRetrieval:
		return "FemCite couldn't reach the library right now. Please try again in a moment."
	case KindSynthesis:
		return "FemCite couldn't compose an answer right now. Please try again."
	case KindFormatting:
		return "FemCite couldn't format the reference list right now. Please try again."
	case KindExport:
		return "FemCite couldn't save the transcript and citation files. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
