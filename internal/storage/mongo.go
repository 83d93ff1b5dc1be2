package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/models"
)

const (
	imagesCollectionName = "imagesContainer"
	audioCollectionName  = "audioContainer"
	videoCollectionName  = "videoContainer"
)

// MetadataStore wraps the document database holding MediaRecords, one
// collection per media type, with tracing.
type MetadataStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMetadataStore connects to the document database and verifies the
// connection.
func NewMetadataStore(ctx context.Context, uri, dbName string) (*MetadataStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to metadata store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping metadata store: %w", err)
	}
	return &MetadataStore{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects from the metadata store.
func (ms *MetadataStore) Close(ctx context.Context) error {
	return ms.client.Disconnect(ctx)
}

// collectionFor returns the collection for a canonical media type, or nil for
// anything outside the three known types.
func (ms *MetadataStore) collectionFor(t models.MediaType) *mongo.Collection {
	switch models.NormalizeMediaType(string(t)) {
	case models.MediaTypeImage:
		return ms.db.Collection(imagesCollectionName)
	case models.MediaTypeAudio:
		return ms.db.Collection(audioCollectionName)
	case models.MediaTypeVideo:
		return ms.db.Collection(videoCollectionName)
	default:
		return nil
	}
}

// collections returns every logical collection in the fixed enumeration
// order (image, audio, video).
func (ms *MetadataStore) collections() []*mongo.Collection {
	cols := make([]*mongo.Collection, 0, len(models.MediaTypes))
	for _, t := range models.MediaTypes {
		cols = append(cols, ms.collectionFor(t))
	}
	return cols
}

// Create inserts a media record into the collection matching its media type.
// The create is idempotent: if a record with the same id or blobName already
// exists, the existing record is returned unchanged and nothing is inserted.
// Records whose media type cannot be resolved to image, audio or video are
// rejected rather than guessed into a default collection.
func (ms *MetadataStore) Create(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error) {
	ctx, span := tracer.Start(ctx, "metadata.create",
		trace.WithAttributes(
			attribute.String("record_id", record.ID),
			attribute.String("blob_name", record.BlobName),
		),
	)
	defer span.End()

	mediaType := models.NormalizeMediaType(string(record.MediaType))
	if !mediaType.IsValid() && record.ContentType != "" {
		mediaType = models.MediaTypeFromContentType(record.ContentType)
	}
	if !mediaType.IsValid() {
		err := fmt.Errorf("unknown media type %q for record %s", record.MediaType, record.ID)
		span.RecordError(err)
		return models.MediaRecord{}, err
	}
	record.MediaType = mediaType

	collection := ms.collectionFor(mediaType)

	var existing models.MediaRecord
	err := collection.FindOne(ctx, bson.M{
		"$or": bson.A{
			bson.M{"id": record.ID},
			bson.M{"blobName": record.BlobName},
		},
	}).Decode(&existing)
	if err == nil {
		log.Printf("Record already exists for blob %s, skipping creation", record.BlobName)
		span.SetAttributes(attribute.Bool("already_exists", true))
		return existing, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		// The duplicate check is best-effort; proceed with creation.
		log.Printf("Warning: duplicate check failed for %s: %v", record.ID, err)
	}

	if _, err := collection.InsertOne(ctx, record); err != nil {
		span.RecordError(err)
		return models.MediaRecord{}, fmt.Errorf("failed to insert record: %w", err)
	}

	span.SetAttributes(attribute.Bool("insert_success", true))
	return record, nil
}

// GetAll queries every logical collection and concatenates the results,
// sorted by upload date descending. Records without a date sort oldest.
func (ms *MetadataStore) GetAll(ctx context.Context) ([]models.MediaRecord, error) {
	ctx, span := tracer.Start(ctx, "metadata.get_all")
	defer span.End()

	var all []models.MediaRecord
	for _, collection := range ms.collections() {
		records, err := ms.queryAll(ctx, collection)
		if err != nil {
			// A single unreachable collection should not empty the
			// whole listing.
			log.Printf("Warning: failed to query collection %s: %v", collection.Name(), err)
			span.RecordError(err)
			continue
		}
		all = append(all, records...)
	}

	sortByUploadDate(all)
	span.SetAttributes(attribute.Int("record_count", len(all)))
	return all, nil
}

// GetByType queries a single logical collection. "all" is equivalent to
// GetAll; unknown types return an empty sequence, not an error.
func (ms *MetadataStore) GetByType(ctx context.Context, mediaType models.MediaType) ([]models.MediaRecord, error) {
	if models.NormalizeMediaType(string(mediaType)) == models.MediaTypeAll {
		return ms.GetAll(ctx)
	}

	ctx, span := tracer.Start(ctx, "metadata.get_by_type",
		trace.WithAttributes(attribute.String("media_type", string(mediaType))),
	)
	defer span.End()

	collection := ms.collectionFor(mediaType)
	if collection == nil {
		span.SetAttributes(attribute.Bool("known_type", false))
		return []models.MediaRecord{}, nil
	}

	records, err := ms.queryAll(ctx, collection)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query %s records: %w", mediaType, err)
	}

	sortByUploadDate(records)
	span.SetAttributes(attribute.Int("record_count", len(records)))
	return records, nil
}

// GetByID looks up a record by id. A filtered query is tried first; a direct
// point read on the document key is the fallback.
func (ms *MetadataStore) GetByID(ctx context.Context, id string, mediaType models.MediaType) (*models.MediaRecord, error) {
	ctx, span := tracer.Start(ctx, "metadata.get_by_id",
		trace.WithAttributes(attribute.String("record_id", id)),
	)
	defer span.End()

	collection := ms.collectionFor(mediaType)
	if collection == nil {
		span.SetAttributes(attribute.Bool("found", false))
		return nil, ErrNotFound
	}

	var record models.MediaRecord
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err == nil {
		span.SetAttributes(attribute.Bool("found", true))
		return &record, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query record %s: %w", id, err)
	}

	// Fallback: direct point read.
	err = collection.FindOne(ctx, bson.M{"_id": id}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		span.SetAttributes(attribute.Bool("found", false))
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read record %s: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("found", true))
	return &record, nil
}

// Update merges the patch fields into the stored record and replaces it. A
// patched content type re-derives the media type.
func (ms *MetadataStore) Update(ctx context.Context, id string, patch map[string]interface{}, mediaType models.MediaType) (*models.MediaRecord, error) {
	ctx, span := tracer.Start(ctx, "metadata.update",
		trace.WithAttributes(attribute.String("record_id", id)),
	)
	defer span.End()

	collection := ms.collectionFor(mediaType)
	if collection == nil {
		return nil, ErrNotFound
	}

	var raw bson.M
	err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		span.SetAttributes(attribute.Bool("found", false))
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to query record %s: %w", id, err)
	}

	for key, value := range patch {
		if key == "id" || key == "_id" {
			continue
		}
		raw[key] = value
	}
	if contentType, ok := patch["contentType"].(string); ok && contentType != "" {
		raw["mediaType"] = string(models.MediaTypeFromContentType(contentType))
	}

	if _, err := collection.ReplaceOne(ctx, bson.M{"id": id}, raw); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to replace record %s: %w", id, err)
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode record %s: %w", id, err)
	}
	var updated models.MediaRecord
	if err := bson.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("failed to decode updated record %s: %w", id, err)
	}

	span.SetAttributes(attribute.Bool("update_success", true))
	return &updated, nil
}

// Delete removes the record with the given id. The hinted media type is only
// a hint: legacy records sometimes sit in the wrong collection, so every
// collection is searched in fixed order. For the matched record a plain point
// delete is tried first; on failure every field of the stored document is
// tried once as an alternate key qualifier, and if the record turns out to be
// gone afterwards (a concurrent delete or an earlier partial attempt) that
// counts as success. Returns false when no record matched anywhere.
func (ms *MetadataStore) Delete(ctx context.Context, id string, mediaType models.MediaType) (bool, error) {
	ctx, span := tracer.Start(ctx, "metadata.delete",
		trace.WithAttributes(
			attribute.String("record_id", id),
			attribute.String("media_type_hint", string(mediaType)),
		),
	)
	defer span.End()

	for _, collection := range ms.collections() {
		var raw bson.M
		err := collection.FindOne(ctx, bson.M{"id": id}).Decode(&raw)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			log.Printf("Warning: error searching collection %s: %v", collection.Name(), err)
			continue
		}

		deleted, err := ms.deleteFromCollection(ctx, collection, id, raw)
		if err != nil {
			span.RecordError(err)
			return false, err
		}
		span.SetAttributes(attribute.Bool("delete_success", deleted))
		return deleted, nil
	}

	log.Printf("Record %s not found in any collection", id)
	span.SetAttributes(attribute.Bool("found", false))
	return false, nil
}

func (ms *MetadataStore) deleteFromCollection(ctx context.Context, collection *mongo.Collection, id string, raw bson.M) (bool, error) {
	result, err := collection.DeleteOne(ctx, bson.M{"id": id})
	if err == nil && result.DeletedCount > 0 {
		return true, nil
	}
	if err != nil {
		log.Printf("Standard deletion failed for %s: %v", id, err)
	}

	// Retry once per stored field as an alternate key qualifier. Legacy
	// records were written with drifting key fields, so any of them may be
	// the one that routes the delete.
	for field, value := range raw {
		if field == "_id" {
			continue
		}
		result, err := collection.DeleteOne(ctx, bson.M{"id": id, field: value})
		if err == nil && result.DeletedCount > 0 {
			log.Printf("Deleted record %s using %s as alternate key", id, field)
			return true, nil
		}
	}

	// Re-check: the record may have vanished underneath us.
	count, err := collection.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("failed to re-check record %s: %w", id, err)
	}
	if count == 0 {
		log.Printf("Record %s is no longer in collection %s", id, collection.Name())
		return true, nil
	}

	return false, fmt.Errorf("could not delete record %s from collection %s via any method", id, collection.Name())
}

// FindByName searches every collection in fixed order for a record whose
// blobName, fileName or name field equals the supplied name. The first match
// wins. Returns ErrNotFound when nothing matches.
func (ms *MetadataStore) FindByName(ctx context.Context, name string) (*models.MediaRecord, error) {
	ctx, span := tracer.Start(ctx, "metadata.find_by_name",
		trace.WithAttributes(attribute.String("name", name)),
	)
	defer span.End()

	filter := bson.M{"$or": bson.A{
		bson.M{"blobName": name},
		bson.M{"fileName": name},
		bson.M{"name": name},
	}}

	for _, collection := range ms.collections() {
		var record models.MediaRecord
		err := collection.FindOne(ctx, filter).Decode(&record)
		if err == nil {
			span.SetAttributes(
				attribute.Bool("found", true),
				attribute.String("collection", collection.Name()),
			)
			return &record, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			log.Printf("Warning: error searching collection %s: %v", collection.Name(), err)
		}
	}

	span.SetAttributes(attribute.Bool("found", false))
	return nil, ErrNotFound
}

func (ms *MetadataStore) queryAll(ctx context.Context, collection *mongo.Collection) ([]models.MediaRecord, error) {
	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.MediaRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// sortByUploadDate orders records newest first. The zero time (records
// missing a date) sorts last.
func sortByUploadDate(records []models.MediaRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].UploadDate.After(records[j].UploadDate)
	})
}
