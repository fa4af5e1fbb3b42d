// Package storage keeps uploaded certificate files, either on the local disk
// or in a Google Cloud Storage bucket.
package storage

import (
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
	ErrInvalidKey     = errors.New("invalid object key")
)

type ObjectInfo struct {
	Key     string
	ModTime time.Time
}

// NewKey names a stored object by a random uuid, keeping the upload's extension.
func NewKey(filename string) string {
	return uuid.New().String() + strings.ToLower(path.Ext(filename))
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return goerr.Wrap(ErrInvalidKey, "object key must be a plain file name", goerr.V("key", key))
	}
	return nil
}
