package ingest

import (
	"errors"
	"fmt"
)

// Kind categorizes ingestion failures. Record-level and file-level soft
// failures are absorbed into the run summary; only the fatal kinds abort
// before a summary is produced.
type Kind string

const (
	// KindSourceNotFound: a named input file is missing. Fatal, surfaced
	// immediately on explicit load calls.
	KindSourceNotFound Kind = "SOURCE_NOT_FOUND"

	// KindSchemaInvalid: the file-level structural check failed. The file
	// is rejected; the run continues with the next file.
	KindSchemaInvalid Kind = "SCHEMA_INVALID"

	// KindRecordInvalid: a required field is missing or blank on one
	// record. The record is skipped and counted; the load continues.
	KindRecordInvalid Kind = "RECORD_INVALID"

	// KindDuplicateKey: a uniqueness violation on insert. The record is
	// skipped and counted; the load continues.
	KindDuplicateKey Kind = "DUPLICATE_KEY"

	// KindParseFailure: malformed content prevented reading any records.
	// Fatal for that file; nothing from it is committed.
	KindParseFailure Kind = "PARSE_FAILURE"

	// KindTransientIO: a discovery/listing error. Retried with bounded
	// attempts and delay, surfaced only once exhausted.
	KindTransientIO Kind = "TRANSIENT_IO"
)

// Error is a categorized ingestion error.
type Error struct {
	Kind Kind
	File string
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s: %s (file=%s)", e.Kind, e.Msg, e.File)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the ingestion Kind from err, or "" if err is not an
// ingestion error.
func KindOf(err error) Kind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

func newError(kind Kind, file, msg string, cause error) *Error {
	return &Error{Kind: kind, File: file, Msg: msg, Err: cause}
}
