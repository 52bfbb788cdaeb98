// Package shareid encodes and decodes shareable ids: the compact, URL-safe
// string that names a remote document, the collaboration layer a viewer
// writes to and, optionally, the example that produced it.
//
// Wire form:
//
//	documentId "." layerName [ "." exampleFingerprint ]
//
// Segments never contain the delimiter, so splitting is lossless.
package shareid

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/docshare/internal/common"
)

// Delimiter separates the segments of a shareable id.
const Delimiter = "."

const (
	layerNameBytes   = 16
	fingerprintBytes = 3
)

// ID is the decoded form of a shareable id. ExampleFingerprint is empty for
// documents uploaded by users.
type ID struct {
	DocumentID         string
	LayerName          string
	ExampleFingerprint string
}

// IsCustom reports whether the id carries no example fingerprint.
func (id ID) IsCustom() bool {
	return id.ExampleFingerprint == ""
}

// String returns the wire form of id.
func (id ID) String() string {
	if id.ExampleFingerprint == "" {
		return id.DocumentID + Delimiter + id.LayerName
	}
	return id.DocumentID + Delimiter + id.LayerName + Delimiter + id.ExampleFingerprint
}

// MalformedError is returned by Decode. It keeps the rejected input for
// diagnostics and matches common.ErrMalformedIdentifier.
type MalformedError struct {
	Input  string
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed shareable id %q: %s", e.Input, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return common.ErrMalformedIdentifier
}

// Encode joins documentID and layerName, appending the fingerprint of
// exampleName when it is not empty. The caller guarantees that neither
// documentID nor layerName contains the delimiter.
func Encode(documentID, layerName, exampleName string) string {
	id := ID{DocumentID: documentID, LayerName: layerName}
	if exampleName != "" {
		id.ExampleFingerprint = Fingerprint(exampleName)
	}
	return id.String()
}

// Decode parses the wire form. Exactly two or three non-empty segments are
// accepted; anything else yields a *MalformedError.
func Decode(s string) (ID, error) {
	segments := strings.Split(s, Delimiter)

	var id ID
	switch len(segments) {
	case 2:
		id = ID{DocumentID: segments[0], LayerName: segments[1]}
	case 3:
		if segments[2] == "" {
			return ID{}, &MalformedError{Input: s, Reason: "empty example fingerprint"}
		}
		id = ID{DocumentID: segments[0], LayerName: segments[1], ExampleFingerprint: segments[2]}
	default:
		return ID{}, &MalformedError{Input: s, Reason: fmt.Sprintf("expected 2 or 3 segments, got %d", len(segments))}
	}

	if id.DocumentID == "" || id.LayerName == "" {
		return ID{}, &MalformedError{Input: s, Reason: "empty document id or layer name"}
	}

	return id, nil
}

// GenerateLayerName returns 128 random bits as unpadded base64url.
// Sixteen bytes always encode to 22 characters followed by exactly "==",
// so dropping padding altogether is identical to stripping that pair.
func GenerateLayerName() string {
	return base64.RawURLEncoding.EncodeToString(common.GenerateRandByteArray(layerNameBytes))
}

// Fingerprint hashes exampleName with SHA-256 and returns the first three
// bytes as base64url: always four characters, no padding.
func Fingerprint(exampleName string) string {
	sum := sha256.Sum256([]byte(exampleName))
	return base64.RawURLEncoding.EncodeToString(sum[:fingerprintBytes])
}
