package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/models"
	"github.com/sonu/mediashare/internal/storage"
)

// Uploader coordinates an upload: validation, duplicate check, blob write,
// then metadata create. The blob write happens first; the record is only
// created once the bytes are safely stored.
type Uploader struct {
	metadata MetadataStore
	blobs    BlobStore
}

// NewUploader creates an upload coordinator over the two stores.
func NewUploader(metadata MetadataStore, blobs BlobStore) *Uploader {
	return &Uploader{metadata: metadata, blobs: blobs}
}

// Upload validates and stores a file and returns its media record. If a
// record already exists for the file name, that record is returned and no
// bytes are written (repeat uploads are idempotent). Progress is reported via
// the callback as a percentage.
func (u *Uploader) Upload(ctx context.Context, fileName, contentType string, size int64, reader io.Reader, progress storage.ProgressFunc) (models.MediaRecord, error) {
	ctx, span := tracer.Start(ctx, "gallery.upload",
		trace.WithAttributes(
			attribute.String("file_name", fileName),
			attribute.Int64("size_bytes", size),
			attribute.String("content_type", contentType),
		),
	)
	defer span.End()

	cfg, err := ValidateUpload(fileName, contentType, size)
	if err != nil {
		span.RecordError(err)
		return models.MediaRecord{}, err
	}

	// Best-effort duplicate check; an erroring metadata store does not
	// block the upload.
	existing, err := u.metadata.FindByName(ctx, fileName)
	if err == nil && existing != nil {
		log.Printf("File %s already has a record, using existing record %s", fileName, existing.ID)
		span.SetAttributes(attribute.Bool("already_exists", true))
		return *existing, nil
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Warning: duplicate check failed for %s: %v", fileName, err)
	}

	now := time.Now()
	blobName := models.NewBlobName(now, fileName)

	log.Printf("Uploading %s (%s) to container %s as %s", fileName, models.FormatFileSize(size), cfg.Name, blobName)
	blobURL, err := u.blobs.Upload(ctx, cfg.Name, blobName, reader, size, contentType, progress)
	if err != nil {
		span.RecordError(err)
		return models.MediaRecord{}, fmt.Errorf("failed to upload %s: %w", fileName, err)
	}

	record := models.MediaRecord{
		ID:            models.NewRecordID(now, fileName),
		MediaType:     models.MediaTypeFromContentType(contentType),
		Title:         strings.TrimSuffix(fileName, filepath.Ext(fileName)),
		Tags:          []string{},
		FileName:      fileName,
		BlobName:      blobName,
		BlobURL:       blobURL,
		ContentType:   contentType,
		FileSize:      size,
		ContainerName: cfg.Name,
		UploadDate:    now,
	}

	created, err := u.metadata.Create(ctx, record)
	if err != nil {
		// The blob is stored but unindexed; it stays reachable through
		// the fallback listing until a record is written.
		span.RecordError(err)
		return models.MediaRecord{}, fmt.Errorf("failed to save metadata for %s: %w", fileName, err)
	}

	span.SetAttributes(attribute.String("record_id", created.ID))
	return created, nil
}
