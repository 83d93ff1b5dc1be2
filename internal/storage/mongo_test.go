package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/sonu/mediashare/internal/models"
)

func mockMetadataStore(mt *mtest.T) *MetadataStore {
	return &MetadataStore{client: mt.Client, db: mt.DB}
}

func TestMetadataStoreCreate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("existing record short-circuits the insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0,"mediashare.imagesContainer", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "100-sunsetjpg"},
			{Key: "mediaType", Value: "image"},
			{Key: "fileName", Value: "sunset.jpg"},
			{Key: "blobName", Value: "100-sunset.jpg"},
		}))

		ms := mockMetadataStore(mt)
		created, err := ms.Create(context.Background(), models.MediaRecord{
			ID:        "200-sunsetjpg",
			MediaType: models.MediaTypeImage,
			FileName:  "sunset.jpg",
			BlobName:  "100-sunset.jpg",
		})
		require.NoError(mt, err)

		// The stored record wins; the caller's candidate is discarded.
		assert.Equal(mt, "100-sunsetjpg", created.ID)
		assert.Equal(mt, "100-sunset.jpg", created.BlobName)

		// The duplicate pre-query matches on either key.
		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		_, err = evt.Command.LookupErr("filter", "$or")
		assert.NoError(mt, err)
	})

	mt.Run("inserts when no duplicate exists", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.audioContainer", mtest.FirstBatch))
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		ms := mockMetadataStore(mt)
		created, err := ms.Create(context.Background(), models.MediaRecord{
			ID:        "300-trackmp3",
			MediaType: models.MediaTypeAudio,
			FileName:  "track.mp3",
			BlobName:  "300-track.mp3",
		})
		require.NoError(mt, err)
		assert.Equal(mt, "300-trackmp3", created.ID)
	})

	mt.Run("unknown media type is rejected before any query", func(mt *mtest.T) {
		ms := mockMetadataStore(mt)
		_, err := ms.Create(context.Background(), models.MediaRecord{
			ID:        "400-notesdocx",
			MediaType: "document",
			FileName:  "notes.docx",
		})
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "unknown media type")
	})
}

func TestMetadataStoreDelete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("alternate key retry succeeds after plain delete fails", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0,"mediashare.imagesContainer", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "100-sunsetjpg"},
			{Key: "blobName", Value: "100-sunset.jpg"},
		}))
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11601,
			Message: "operation was interrupted",
		}))
		// The field-qualified retry routes the delete.
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		ms := mockMetadataStore(mt)
		deleted, err := ms.Delete(context.Background(), "100-sunsetjpg", models.MediaTypeImage)
		require.NoError(mt, err)
		assert.True(mt, deleted)
	})

	mt.Run("record vanishing mid-delete counts as success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0,"mediashare.imagesContainer", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "100-sunsetjpg"},
		}))
		// Plain delete and the single retry both match nothing.
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		// The re-check count comes back empty: someone else removed it.
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.imagesContainer", mtest.FirstBatch))

		ms := mockMetadataStore(mt)
		deleted, err := ms.Delete(context.Background(), "100-sunsetjpg", models.MediaTypeImage)
		require.NoError(mt, err)
		assert.True(mt, deleted)
	})

	mt.Run("record surviving every attempt is an error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0,"mediashare.imagesContainer", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "100-sunsetjpg"},
		}))
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.imagesContainer", mtest.FirstBatch, bson.D{
			{Key: "n", Value: int32(1)},
		}))

		ms := mockMetadataStore(mt)
		deleted, err := ms.Delete(context.Background(), "100-sunsetjpg", models.MediaTypeImage)
		require.Error(mt, err)
		assert.False(mt, deleted)
		assert.Contains(mt, err.Error(), "via any method")
	})

	mt.Run("absent everywhere reports not found without error", func(mt *mtest.T) {
		// One empty find per collection, in the fixed search order.
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.imagesContainer", mtest.FirstBatch))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.audioContainer", mtest.FirstBatch))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.videoContainer", mtest.FirstBatch))

		ms := mockMetadataStore(mt)
		deleted, err := ms.Delete(context.Background(), "missing", models.MediaTypeAll)
		require.NoError(mt, err)
		assert.False(mt, deleted)
	})

	mt.Run("hint does not limit the search to one collection", func(mt *mtest.T) {
		// The record sits in the video collection but the caller hints image.
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.imagesContainer", mtest.FirstBatch))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "mediashare.audioContainer", mtest.FirstBatch))
		mt.AddMockResponses(mtest.CreateCursorResponse(0,"mediashare.videoContainer", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "500-clipmp4"},
		}))
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		ms := mockMetadataStore(mt)
		deleted, err := ms.Delete(context.Background(), "500-clipmp4", models.MediaTypeImage)
		require.NoError(mt, err)
		assert.True(mt, deleted)
	})
}
