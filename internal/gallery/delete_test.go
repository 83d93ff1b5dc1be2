package gallery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonu/mediashare/internal/models"
	"github.com/sonu/mediashare/internal/storage"
)

func TestDeleteFromBothStores(t *testing.T) {
	meta := &fakeMetadata{records: []models.MediaRecord{
		{ID: "rec-1", MediaType: models.MediaTypeImage, BlobName: "1700-a.png", FileName: "a.png"},
	}}
	blobs := &fakeBlobs{blobs: map[string][]storage.BlobInfo{
		"myimages": {{Name: "1700-a.png", URL: "https://x/1700-a.png"}},
	}}

	result := NewDeleter(meta, blobs).Delete(context.Background(), "1700-a.png", "myimages", models.MediaTypeImage)

	assert.Equal(t, OutcomeDeleted, result.Outcome())
	assert.Equal(t, []string{"rec-1"}, meta.deleted)
	assert.Equal(t, []string{"1700-a.png"}, blobs.removed)
}

func TestDeleteBlobAlreadyGone(t *testing.T) {
	// The record exists but its blob is already missing from storage: the
	// record side still succeeds and the result is the partial outcome,
	// never a failure.
	meta := &fakeMetadata{records: []models.MediaRecord{
		{ID: "rec-1", MediaType: models.MediaTypeImage, BlobName: "1700-a.png", FileName: "a.png"},
	}}
	blobs := &fakeBlobs{}

	result := NewDeleter(meta, blobs).Delete(context.Background(), "1700-a.png", "myimages", models.MediaTypeImage)

	assert.Equal(t, OutcomeRecordOnly, result.Outcome())
	assert.True(t, result.Succeeded())
	assert.Contains(t, result.Message(), "storage file could not be removed")
}

func TestDeleteRecordSideFails(t *testing.T) {
	meta := &fakeMetadata{
		records: []models.MediaRecord{
			{ID: "rec-1", MediaType: models.MediaTypeImage, BlobName: "1700-a.png", FileName: "a.png"},
		},
		deleteErr: errStoreDown,
	}
	blobs := &fakeBlobs{blobs: map[string][]storage.BlobInfo{
		"myimages": {{Name: "1700-a.png", URL: "https://x/1700-a.png"}},
	}}

	result := NewDeleter(meta, blobs).Delete(context.Background(), "1700-a.png", "myimages", models.MediaTypeImage)

	// The blob delete proceeds independently of the metadata failure.
	assert.Equal(t, OutcomeBlobOnly, result.Outcome())
	assert.Contains(t, result.Message(), "database record could not be removed")
}

func TestDeleteNothingFound(t *testing.T) {
	result := NewDeleter(&fakeMetadata{}, &fakeBlobs{}).Delete(context.Background(), "ghost.png", "myimages", models.MediaTypeImage)

	assert.Equal(t, OutcomeFailed, result.Outcome())
	assert.False(t, result.Succeeded())
}

func TestDeleteMatchesOnFileName(t *testing.T) {
	// The user-supplied identifier may be the original file name rather
	// than the blob name; the metadata search matches either.
	meta := &fakeMetadata{records: []models.MediaRecord{
		{ID: "rec-1", MediaType: models.MediaTypeAudio, BlobName: "1700-song.mp3", FileName: "song.mp3"},
	}}
	blobs := &fakeBlobs{}

	result := NewDeleter(meta, blobs).Delete(context.Background(), "song.mp3", "myaudio", models.MediaTypeAudio)

	assert.True(t, result.MetadataDeleted)
	assert.Equal(t, []string{"rec-1"}, meta.deleted)
}

func TestDeleteSearchesBeyondHintedCollection(t *testing.T) {
	// Legacy record sitting in the "wrong" collection: the hint says video
	// but the record lives under image. It must still be found.
	meta := &fakeMetadata{records: []models.MediaRecord{
		{ID: "rec-1", MediaType: models.MediaTypeImage, BlobName: "1700-clip.mp4", FileName: "clip.mp4"},
	}}
	blobs := &fakeBlobs{}

	result := NewDeleter(meta, blobs).Delete(context.Background(), "1700-clip.mp4", "myvideos", models.MediaTypeVideo)

	assert.True(t, result.MetadataDeleted)
}

func TestDeleteResultMessages(t *testing.T) {
	cases := []struct {
		result  DeleteResult
		outcome Outcome
	}{
		{DeleteResult{MetadataDeleted: true, BlobDeleted: true}, OutcomeDeleted},
		{DeleteResult{MetadataDeleted: true, BlobDeleted: false}, OutcomeRecordOnly},
		{DeleteResult{MetadataDeleted: false, BlobDeleted: true}, OutcomeBlobOnly},
		{DeleteResult{}, OutcomeFailed},
	}

	messages := map[string]struct{}{}
	for _, tc := range cases {
		require.Equal(t, tc.outcome, tc.result.Outcome())
		messages[tc.result.Message()] = struct{}{}
	}

	// All four outcomes surface distinct user-facing messages.
	assert.Len(t, messages, 4)
}
