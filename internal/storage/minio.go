package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/chunker"
	"github.com/sonu/mediashare/internal/models"
)

var tracer = otel.Tracer("mediashare-storage")

const (
	// LargeFileThreshold is the size above which uploads switch from a
	// single atomic write to staged multipart parts.
	LargeFileThreshold = 20 * 1024 * 1024

	// multipartPartSize is the staged part size. S3-compatible stores
	// reject non-final parts below 5 MiB, so that is the floor here.
	multipartPartSize = 5 * 1024 * 1024
)

// BlobInfo is one entry from a container listing.
type BlobInfo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// BlobStore wraps object storage operations against the per-media-type
// containers, with tracing.
type BlobStore struct {
	client  *minio.Client
	core    minio.Core
	chunker *chunker.Chunker
}

// NewBlobStore initializes a blob store client against a MinIO/S3 endpoint.
func NewBlobStore(endpoint, accessKey, secretKey string, useSSL bool) (*BlobStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create blob store client: %w", err)
	}

	return &BlobStore{
		client:  client,
		core:    minio.Core{Client: client},
		chunker: chunker.NewChunker(multipartPartSize),
	}, nil
}

// EnsureContainers creates any of the three fixed media containers that do
// not exist yet. It is idempotent and runs once per process lifetime, before
// any other operation.
func (bs *BlobStore) EnsureContainers(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "blob.ensure_containers")
	defer span.End()

	for _, name := range models.ContainerNames() {
		exists, err := bs.client.BucketExists(ctx, name)
		if err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to check container %s: %w", name, classifyBlobError(err))
		}
		if exists {
			continue
		}
		log.Printf("Creating container: %s", name)
		if err := bs.client.MakeBucket(ctx, name, minio.MakeBucketOptions{}); err != nil {
			// A concurrent creator winning the race is fine.
			if minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou" {
				continue
			}
			span.RecordError(err)
			return fmt.Errorf("failed to create container %s: %w", name, classifyBlobError(err))
		}
		log.Printf("Container %s created successfully", name)
	}
	return nil
}

// ProgressFunc receives upload progress as a percentage of bytes transferred.
type ProgressFunc func(percent int)

// Upload writes the file bytes under blobName in the named container with the
// given content type and returns the resolvable blob URL. Files above
// LargeFileThreshold are staged as fixed-size parts and committed as a unit;
// smaller files use a single atomic write. Progress is reported after each
// part, or in proportion to bytes transferred for single writes.
func (bs *BlobStore) Upload(ctx context.Context, containerName, blobName string, reader io.Reader, size int64, contentType string, progress ProgressFunc) (string, error) {
	ctx, span := tracer.Start(ctx, "blob.upload",
		trace.WithAttributes(
			attribute.String("container", containerName),
			attribute.String("blob_name", blobName),
			attribute.Int64("size_bytes", size),
			attribute.String("content_type", contentType),
		),
	)
	defer span.End()

	var err error
	if size > LargeFileThreshold {
		log.Printf("Large file detected (%s), using staged multipart upload", models.FormatFileSize(size))
		err = bs.uploadMultipart(ctx, containerName, blobName, reader, size, contentType, progress)
	} else {
		err = bs.uploadSingle(ctx, containerName, blobName, reader, size, contentType, progress)
	}
	if err != nil {
		span.RecordError(err)
		return "", err
	}

	span.SetAttributes(attribute.Bool("upload_success", true))
	return bs.BlobURL(containerName, blobName), nil
}

func (bs *BlobStore) uploadSingle(ctx context.Context, containerName, blobName string, reader io.Reader, size int64, contentType string, progress ProgressFunc) error {
	body := reader
	if progress != nil {
		body = &progressReader{reader: reader, total: size, report: progress}
	}
	_, err := bs.client.PutObject(ctx, containerName, blobName, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload blob: %w", classifyBlobError(err))
	}
	return nil
}

func (bs *BlobStore) uploadMultipart(ctx context.Context, containerName, blobName string, reader io.Reader, size int64, contentType string, progress ProgressFunc) error {
	opts := minio.PutObjectOptions{ContentType: contentType}

	uploadID, err := bs.core.NewMultipartUpload(ctx, containerName, blobName, opts)
	if err != nil {
		return fmt.Errorf("failed to start multipart upload: %w", classifyBlobError(err))
	}

	totalParts := bs.chunker.PartCount(size)
	var parts []minio.CompletePart

	for number := 1; ; number++ {
		part, err := bs.chunker.NextPart(reader, number)
		if err == io.EOF {
			break
		}
		if err != nil {
			bs.abortMultipart(ctx, containerName, blobName, uploadID)
			return err
		}

		staged, err := bs.core.PutObjectPart(ctx, containerName, blobName, uploadID, part.Number,
			bytes.NewReader(part.Data), part.Size, minio.PutObjectPartOptions{})
		if err != nil {
			bs.abortMultipart(ctx, containerName, blobName, uploadID)
			return fmt.Errorf("failed to stage part %d: %w", part.Number, classifyBlobError(err))
		}

		parts = append(parts, minio.CompletePart{PartNumber: staged.PartNumber, ETag: staged.ETag})

		if progress != nil && totalParts > 0 {
			progress(number * 100 / totalParts)
		}
	}

	if _, err := bs.core.CompleteMultipartUpload(ctx, containerName, blobName, uploadID, parts, opts); err != nil {
		bs.abortMultipart(ctx, containerName, blobName, uploadID)
		return fmt.Errorf("failed to commit staged parts: %w", classifyBlobError(err))
	}
	return nil
}

func (bs *BlobStore) abortMultipart(ctx context.Context, containerName, blobName, uploadID string) {
	if err := bs.core.AbortMultipartUpload(ctx, containerName, blobName, uploadID); err != nil {
		log.Printf("Warning: failed to abort multipart upload %s: %v", uploadID, err)
	}
}

// Delete removes the named blob. It returns (false, nil) when the blob is
// already absent, which delete flows treat as "already gone".
func (bs *BlobStore) Delete(ctx context.Context, containerName, blobName string) (bool, error) {
	ctx, span := tracer.Start(ctx, "blob.delete",
		trace.WithAttributes(
			attribute.String("container", containerName),
			attribute.String("blob_name", blobName),
		),
	)
	defer span.End()

	_, err := bs.client.StatObject(ctx, containerName, blobName, minio.StatObjectOptions{})
	if err != nil {
		if classified := classifyBlobError(err); classified == ErrNotFound {
			span.SetAttributes(attribute.Bool("found", false))
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("failed to stat blob: %w", classifyBlobError(err))
	}

	if err := bs.client.RemoveObject(ctx, containerName, blobName, minio.RemoveObjectOptions{}); err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to delete blob: %w", classifyBlobError(err))
	}

	span.SetAttributes(attribute.Bool("delete_success", true))
	return true, nil
}

// List enumerates all blobs in a container. Used by the fallback
// reconciliation path when the metadata store yields nothing.
func (bs *BlobStore) List(ctx context.Context, containerName string) ([]BlobInfo, error) {
	ctx, span := tracer.Start(ctx, "blob.list",
		trace.WithAttributes(attribute.String("container", containerName)),
	)
	defer span.End()

	var blobs []BlobInfo
	for object := range bs.client.ListObjects(ctx, containerName, minio.ListObjectsOptions{Recursive: true}) {
		if object.Err != nil {
			span.RecordError(object.Err)
			return nil, fmt.Errorf("failed to list container %s: %w", containerName, classifyBlobError(object.Err))
		}
		blobs = append(blobs, BlobInfo{
			Name: object.Key,
			URL:  bs.BlobURL(containerName, object.Key),
		})
	}

	span.SetAttributes(attribute.Int("blob_count", len(blobs)))
	return blobs, nil
}

// BlobURL returns the resolvable URL for a blob.
func (bs *BlobStore) BlobURL(containerName, blobName string) string {
	u := *bs.client.EndpointURL()
	u.Path = path.Join(u.Path, containerName, url.PathEscape(blobName))
	return u.String()
}

// progressReader reports proportional progress as bytes pass through.
type progressReader struct {
	reader io.Reader
	total  int64
	read   int64
	report ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 && pr.total > 0 {
		pr.read += int64(n)
		pr.report(int(pr.read * 100 / pr.total))
	}
	return n, err
}
