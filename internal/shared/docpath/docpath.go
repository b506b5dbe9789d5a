// Package docpath resolves slash-delimited store paths into backend
// collection names and document ids.
package docpath

import (
	"strings"

	"panchayat-docstore/internal/shared/errors"
)

// CollectionSeparator joins the segments of a nested collection path into one
// backend collection name.
const CollectionSeparator = "."

// Split breaks a path into its non-empty segments.
func Split(path string) []string {
	if path == "" {
		return []string{}
	}

	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// Clean returns the canonical form of path: no leading, trailing or repeated separators.
func Clean(path string) string {
	return strings.Join(Split(path), "/")
}

// Join concatenates path fragments and returns the canonical result.
func Join(fragments ...string) string {
	return Clean(strings.Join(fragments, "/"))
}

// CollectionName maps a collection path to its backend collection name.
//
//	members              -> members
//	villages/v1/members  -> villages.v1.members
func CollectionName(collectionPath string) (string, error) {
	segments := Split(collectionPath)
	if len(segments) == 0 {
		return "", errors.NewValidationError("collection path cannot be empty").
			WithCause(errors.ErrInvalidPath)
	}
	return strings.Join(segments, CollectionSeparator), nil
}

// SplitDocument maps a document path to its backend collection name and document id.
func SplitDocument(documentPath string) (collection string, id string, err error) {
	segments := Split(documentPath)
	if len(segments) < 2 {
		return "", "", errors.NewValidationError("document path needs a collection and an id").
			WithDetail("path", documentPath).
			WithCause(errors.ErrInvalidPath)
	}

	last := len(segments) - 1
	return strings.Join(segments[:last], CollectionSeparator), segments[last], nil
}

// Parent returns the collection path holding documentPath, or "" for a top-level path.
func Parent(documentPath string) string {
	segments := Split(documentPath)
	if len(segments) <= 1 {
		return ""
	}
	return strings.Join(segments[:len(segments)-1], "/")
}
