package storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestClassifyBlobError(t *testing.T) {
	assert.NoError(t, classifyBlobError(nil))

	assert.ErrorIs(t, classifyBlobError(minio.ErrorResponse{StatusCode: 403}), ErrPermission)
	assert.ErrorIs(t, classifyBlobError(minio.ErrorResponse{StatusCode: 404}), ErrNotFound)
	assert.ErrorIs(t, classifyBlobError(minio.ErrorResponse{Code: "AccessDenied"}), ErrPermission)
	assert.ErrorIs(t, classifyBlobError(minio.ErrorResponse{Code: "NoSuchKey"}), ErrNotFound)
	assert.ErrorIs(t, classifyBlobError(minio.ErrorResponse{Code: "NoSuchBucket"}), ErrNotFound)

	// Anything else passes through for the caller to treat as transient.
	transient := errors.New("connection reset")
	assert.Equal(t, transient, classifyBlobError(transient))
}
