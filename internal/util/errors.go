package util

import "errors"

var (
	ErrNoExtractableText = errors.New("no extractable text found in PDF")

	ErrTooManyDocuments = errors.New("too many documents")
	ErrInvalidManifest  = errors.New("invalid document manifest")
	ErrRunNotFound      = errors.New("analysis run not found")
	ErrPathEscapesRoot  = errors.New("path escapes root directory")
)
