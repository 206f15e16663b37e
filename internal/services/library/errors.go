// File: internal/services/library/errors.go
package library

import "errors"

var (
	// ErrNotOwner is returned when a user touches another user's book.
	ErrNotOwner = errors.New("book does not belong to this user")
	// ErrUnsupportedFormat is returned for uploads that are neither PDF
	// nor plain text.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrEmptyUpload is returned when an uploaded file has no content.
	ErrEmptyUpload = errors.New("uploaded file is empty")
)
