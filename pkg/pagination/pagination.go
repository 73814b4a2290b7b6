// Package pagination defines the page shape shared by the catalog client
// and the cache, and the opaque cursor codec for upstream continuation
// tokens.
package pagination

import (
	"encoding/base64"
	"fmt"
)

// Page is one slice of a larger result set. An empty Cursor means this is
// the last page.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Cursor string `json:"cursor,omitempty"`
}

// EncodeCursor wraps an upstream continuation token in an opaque cursor.
// Empty tokens encode to an empty cursor.
func EncodeCursor(token string) string {
	if token == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(token))
}

// DecodeCursor recovers the upstream continuation token from a cursor
// produced by EncodeCursor.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", nil
	}
	token, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("decode cursor: %w", err)
	}
	return string(token), nil
}
