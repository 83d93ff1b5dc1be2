package gallery

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/models"
)

// Reconciler produces a single authoritative listing from the two
// independently-updatable sources. Metadata-store records are preferred; when
// the store is empty or erroring the blob containers are enumerated directly
// and minimal records are synthesized.
type Reconciler struct {
	metadata MetadataStore
	blobs    BlobStore
}

// NewReconciler creates a reconciler over the two stores.
func NewReconciler(metadata MetadataStore, blobs BlobStore) *Reconciler {
	return &Reconciler{metadata: metadata, blobs: blobs}
}

// List returns the deduplicated listing for the requested media type
// ("all" for everything). Every call re-queries the remote stores.
func (r *Reconciler) List(ctx context.Context, mediaType models.MediaType) ([]models.MediaRecord, error) {
	ctx, span := tracer.Start(ctx, "gallery.list",
		trace.WithAttributes(attribute.String("media_type", string(mediaType))),
	)
	defer span.End()

	records, err := r.metadata.GetByType(ctx, mediaType)
	if err != nil {
		log.Printf("Metadata store query failed, falling back to blob enumeration: %v", err)
		span.RecordError(err)
		records = nil
	}

	if len(records) > 0 {
		deduplicated := Dedupe(records)
		span.SetAttributes(
			attribute.String("source", "metadata"),
			attribute.Int("record_count", len(deduplicated)),
		)
		return deduplicated, nil
	}

	synthesized, err := r.listFromBlobs(ctx, mediaType)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("source", "blob_fallback"),
		attribute.Int("record_count", len(synthesized)),
	)
	return synthesized, nil
}

// listFromBlobs enumerates every container and synthesizes a minimal record
// per blob, then filters to the requested type. True creation times are not
// available without extra calls, so the current time stands in and the sort
// effectively yields enumeration order.
func (r *Reconciler) listFromBlobs(ctx context.Context, mediaType models.MediaType) ([]models.MediaRecord, error) {
	requested := models.NormalizeMediaType(string(mediaType))

	var records []models.MediaRecord
	for _, t := range models.MediaTypes {
		cfg, _ := models.ContainerFor(t)
		blobs, err := r.blobs.List(ctx, cfg.Name)
		if err != nil {
			// One unreachable container should not empty the rest.
			log.Printf("Warning: failed to list container %s: %v", cfg.Name, err)
			continue
		}
		for _, blob := range blobs {
			records = append(records, SynthesizeRecord(t, cfg.Name, blob.Name, blob.URL, time.Now()))
		}
	}

	if requested != models.MediaTypeAll {
		filtered := records[:0]
		for _, rec := range records {
			if rec.MediaType == requested {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	sortNewestFirst(records)
	return records, nil
}

// SynthesizeRecord builds the minimal stand-in record for a blob that has no
// metadata-store entry.
func SynthesizeRecord(mediaType models.MediaType, containerName, blobName, blobURL string, now time.Time) models.MediaRecord {
	ext := "unknown"
	if i := strings.LastIndex(blobName, "."); i >= 0 && i < len(blobName)-1 {
		ext = blobName[i+1:]
	}
	return models.MediaRecord{
		ID:            fmt.Sprintf("%s-%s", mediaType, blobName),
		MediaType:     mediaType,
		Title:         models.DisplayName(blobName),
		FileName:      blobName,
		BlobName:      blobName,
		BlobURL:       blobURL,
		ContentType:   fmt.Sprintf("%s/%s", mediaType, ext),
		ContainerName: containerName,
		UploadDate:    now,
	}
}

// Dedupe collapses duplicate records. The key is the file name, falling back
// to the blob URL, then the id; entries with none of the three are dropped.
// First-seen wins unless a later duplicate carries a URL the kept entry
// lacks, in which case the richer record replaces it. Input order is
// preserved otherwise.
func Dedupe(records []models.MediaRecord) []models.MediaRecord {
	type slot struct {
		index  int
		record models.MediaRecord
	}
	seen := make(map[string]*slot, len(records))
	var order []string

	for _, record := range records {
		key := record.FileName
		if key == "" {
			key = record.BlobURL
		}
		if key == "" {
			key = record.ID
		}
		if key == "" {
			continue
		}

		existing, ok := seen[key]
		if !ok {
			seen[key] = &slot{index: len(order), record: record}
			order = append(order, key)
			continue
		}
		if existing.record.BlobURL == "" && record.BlobURL != "" {
			existing.record = record
		}
	}

	result := make([]models.MediaRecord, 0, len(order))
	for _, key := range order {
		result = append(result, seen[key].record)
	}
	return result
}

func sortNewestFirst(records []models.MediaRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadDate.After(records[j].UploadDate)
	})
}
