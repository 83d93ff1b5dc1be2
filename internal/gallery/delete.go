package gallery

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/models"
)

// DeleteResult reports which of the two independent deletes succeeded. The
// stores share no transaction, so both sides are always attempted and the
// caller is told precisely what was achieved.
type DeleteResult struct {
	MetadataDeleted bool `json:"metadataDeleted"`
	BlobDeleted     bool `json:"blobDeleted"`
}

// Outcome is the user-facing classification of a delete.
type Outcome string

const (
	OutcomeDeleted    Outcome = "deleted"     // removed from both stores
	OutcomeRecordOnly Outcome = "record_only" // record removed, storage file remains
	OutcomeBlobOnly   Outcome = "blob_only"   // storage file removed, record remains
	OutcomeFailed     Outcome = "failed"      // removed from neither
)

// Outcome classifies the result.
func (r DeleteResult) Outcome() Outcome {
	switch {
	case r.MetadataDeleted && r.BlobDeleted:
		return OutcomeDeleted
	case r.MetadataDeleted:
		return OutcomeRecordOnly
	case r.BlobDeleted:
		return OutcomeBlobOnly
	default:
		return OutcomeFailed
	}
}

// Message returns the toast text for the result.
func (r DeleteResult) Message() string {
	switch r.Outcome() {
	case OutcomeDeleted:
		return "File deleted successfully from both the database and storage."
	case OutcomeRecordOnly:
		return "File record deleted from database, but the storage file could not be removed."
	case OutcomeBlobOnly:
		return "File deleted from storage, but the database record could not be removed."
	default:
		return "Failed to delete file. Please try again."
	}
}

// Succeeded reports whether at least one store accepted the delete.
func (r DeleteResult) Succeeded() bool {
	return r.MetadataDeleted || r.BlobDeleted
}

// Deleter coordinates removal of a media item from both stores.
type Deleter struct {
	metadata MetadataStore
	blobs    BlobStore
}

// NewDeleter creates a deletion coordinator over the two stores.
func NewDeleter(metadata MetadataStore, blobs BlobStore) *Deleter {
	return &Deleter{metadata: metadata, blobs: blobs}
}

// Delete removes the item identified by blobName from both stores. The
// metadata side searches every collection for a record matching the name on
// any of its key fields and deletes it with the store's alternate-key retry;
// the blob side deletes from the named container. The two attempts are
// independent: a failure on one never aborts the other, and "already gone" is
// not a failure.
func (d *Deleter) Delete(ctx context.Context, blobName, containerName string, mediaType models.MediaType) DeleteResult {
	ctx, span := tracer.Start(ctx, "gallery.delete",
		trace.WithAttributes(
			attribute.String("blob_name", blobName),
			attribute.String("container", containerName),
			attribute.String("media_type", string(mediaType)),
		),
	)
	defer span.End()

	var result DeleteResult

	// Metadata first: it has the higher chance of success.
	record, err := d.metadata.FindByName(ctx, blobName)
	if err != nil {
		log.Printf("No matching record found for %s: %v", blobName, err)
	} else {
		log.Printf("Found record to delete: id=%s blobName=%s fileName=%s", record.ID, record.BlobName, record.FileName)
		deleted, err := d.metadata.Delete(ctx, record.ID, mediaType)
		if err != nil {
			log.Printf("Error deleting record %s: %v", record.ID, err)
			span.RecordError(err)
		}
		result.MetadataDeleted = deleted
	}

	deleted, err := d.blobs.Delete(ctx, containerName, blobName)
	if err != nil {
		log.Printf("Error deleting blob %s from %s: %v", blobName, containerName, err)
		span.RecordError(err)
	} else if !deleted {
		log.Printf("Blob %s already absent from %s", blobName, containerName)
	}
	result.BlobDeleted = deleted

	span.SetAttributes(
		attribute.Bool("metadata_deleted", result.MetadataDeleted),
		attribute.Bool("blob_deleted", result.BlobDeleted),
		attribute.String("outcome", string(result.Outcome())),
	)
	return result
}
