package storage

import (
	"errors"

	"github.com/minio/minio-go/v7"
)

var (
	// ErrNotFound marks 404-class store errors. Delete flows treat it as
	// "already gone" rather than a failure.
	ErrNotFound = errors.New("not found")

	// ErrPermission marks 403-class store errors. Never retried.
	ErrPermission = errors.New("permission denied")
)

// classifyBlobError maps provider responses onto the error taxonomy. Errors
// outside the two known classes pass through unchanged and are treated as
// transient by callers.
func classifyBlobError(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.StatusCode {
	case 403:
		return ErrPermission
	case 404:
		return ErrNotFound
	}
	switch resp.Code {
	case "AccessDenied":
		return ErrPermission
	case "NoSuchKey", "NoSuchBucket":
		return ErrNotFound
	}
	return err
}
