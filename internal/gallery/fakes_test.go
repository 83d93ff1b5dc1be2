package gallery

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/sonu/mediashare/internal/models"
	"github.com/sonu/mediashare/internal/storage"
)

// fakeMetadata is an in-memory MetadataStore mirroring the real client's
// contract: idempotent create, hinted-but-not-confined delete, fixed-order
// name search.
type fakeMetadata struct {
	records []models.MediaRecord

	queryErr  error // returned from every read
	deleteErr error // returned from Delete

	deleted []string
	created []models.MediaRecord
}

func (f *fakeMetadata) Create(_ context.Context, record models.MediaRecord) (models.MediaRecord, error) {
	for _, existing := range f.records {
		if existing.ID == record.ID || existing.BlobName == record.BlobName {
			return existing, nil
		}
	}
	f.records = append(f.records, record)
	f.created = append(f.created, record)
	return record, nil
}

func (f *fakeMetadata) GetAll(_ context.Context) ([]models.MediaRecord, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return append([]models.MediaRecord(nil), f.records...), nil
}

func (f *fakeMetadata) GetByType(ctx context.Context, mediaType models.MediaType) ([]models.MediaRecord, error) {
	if models.NormalizeMediaType(string(mediaType)) == models.MediaTypeAll {
		return f.GetAll(ctx)
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var matched []models.MediaRecord
	for _, record := range f.records {
		if models.NormalizeMediaType(string(record.MediaType)) == models.NormalizeMediaType(string(mediaType)) {
			matched = append(matched, record)
		}
	}
	return matched, nil
}

func (f *fakeMetadata) GetByID(_ context.Context, id string, _ models.MediaType) (*models.MediaRecord, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			return &f.records[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeMetadata) Update(_ context.Context, id string, patch map[string]interface{}, _ models.MediaType) (*models.MediaRecord, error) {
	for i := range f.records {
		if f.records[i].ID == id {
			if title, ok := patch["title"].(string); ok {
				f.records[i].Title = title
			}
			return &f.records[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeMetadata) Delete(_ context.Context, id string, _ models.MediaType) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	for i := range f.records {
		if f.records[i].ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			f.deleted = append(f.deleted, id)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMetadata) FindByName(_ context.Context, name string) (*models.MediaRecord, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	// Fixed enumeration order: image, then audio, then video.
	for _, t := range models.MediaTypes {
		for i := range f.records {
			record := &f.records[i]
			if models.NormalizeMediaType(string(record.MediaType)) != t {
				continue
			}
			if record.BlobName == name || record.FileName == name {
				return record, nil
			}
		}
	}
	return nil, storage.ErrNotFound
}

// fakeBlobs is an in-memory BlobStore keyed by container name.
type fakeBlobs struct {
	blobs map[string][]storage.BlobInfo

	uploadErr error
	listErr   error

	uploaded []string
	removed  []string
}

func (f *fakeBlobs) Upload(_ context.Context, containerName, blobName string, reader io.Reader, size int64, _ string, progress storage.ProgressFunc) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	url := "https://blobs.test/" + containerName + "/" + blobName
	if f.blobs == nil {
		f.blobs = make(map[string][]storage.BlobInfo)
	}
	f.blobs[containerName] = append(f.blobs[containerName], storage.BlobInfo{Name: blobName, URL: url})
	f.uploaded = append(f.uploaded, blobName)
	if progress != nil {
		progress(100)
	}
	return url, nil
}

func (f *fakeBlobs) Delete(_ context.Context, containerName, blobName string) (bool, error) {
	for i, blob := range f.blobs[containerName] {
		if blob.Name == blobName {
			f.blobs[containerName] = append(f.blobs[containerName][:i], f.blobs[containerName][i+1:]...)
			f.removed = append(f.removed, blobName)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBlobs) List(_ context.Context, containerName string) ([]storage.BlobInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]storage.BlobInfo(nil), f.blobs[containerName]...), nil
}

var errStoreDown = errors.New("store unreachable")
