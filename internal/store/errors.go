package store

import "errors"

var (
	// ErrSectionNotFound indicates the section doesn't exist in the
	// effective partition.
	ErrSectionNotFound = errors.New("section not found")
	// ErrRecordingNotFound indicates the recording doesn't exist in the
	// effective partition.
	ErrRecordingNotFound = errors.New("recording not found")
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrStorageWriteFailed indicates the persistence layer rejected a
	// snapshot write. In-memory state remains authoritative for the session.
	ErrStorageWriteFailed = errors.New("storage write failed")
)
