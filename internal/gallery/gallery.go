// Package gallery holds the dual-store coordination logic: reconciling the
// metadata store with direct blob enumeration on reads, and the best-effort
// delete-from-both routine. The two stores share no transaction; every
// routine here attempts both sides independently and reports exactly what
// succeeded.
package gallery

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"

	"github.com/sonu/mediashare/internal/models"
	"github.com/sonu/mediashare/internal/storage"
)

var tracer = otel.Tracer("mediashare-gallery")

// MetadataStore is the document-database surface the gallery depends on.
// Implemented by storage.MetadataStore.
type MetadataStore interface {
	Create(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error)
	GetAll(ctx context.Context) ([]models.MediaRecord, error)
	GetByType(ctx context.Context, mediaType models.MediaType) ([]models.MediaRecord, error)
	GetByID(ctx context.Context, id string, mediaType models.MediaType) (*models.MediaRecord, error)
	Update(ctx context.Context, id string, patch map[string]interface{}, mediaType models.MediaType) (*models.MediaRecord, error)
	Delete(ctx context.Context, id string, mediaType models.MediaType) (bool, error)
	FindByName(ctx context.Context, name string) (*models.MediaRecord, error)
}

// BlobStore is the object-storage surface the gallery depends on.
// Implemented by storage.BlobStore.
type BlobStore interface {
	Upload(ctx context.Context, containerName, blobName string, reader io.Reader, size int64, contentType string, progress storage.ProgressFunc) (string, error)
	Delete(ctx context.Context, containerName, blobName string) (bool, error)
	List(ctx context.Context, containerName string) ([]storage.BlobInfo, error)
}
