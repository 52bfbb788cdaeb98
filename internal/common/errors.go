// Package common defines shared constants and sentinel errors used across
// the docshare server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Identifier errors.
	ErrMalformedIdentifier = errors.New("malformed identifier")

	// Startup errors. A missing signing key or upstream URL for an enabled
	// feature must abort the process.
	ErrConfiguration = errors.New("configuration error")

	// Session negotiation errors.
	ErrUnknownExample = errors.New("unknown example")
	ErrDocumentGone   = errors.New("document no longer exists")

	// Remote collaborator errors.
	ErrUploadFailed          = errors.New("upload failed")
	ErrPropertiesCheckFailed = errors.New("properties check failed")
	ErrProtocol              = errors.New("malformed response from document engine")
)
