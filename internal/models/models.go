package models

import (
	"fmt"
	"strings"
	"time"
)

// MediaType is the logical bucket a record belongs to. The zoo of legacy
// spellings ("images", "myaudio", ...) is collapsed by Normalize; values
// outside the known set pass through unchanged so legacy records stay
// reachable.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"

	// MediaTypeAll is the filter alias for "every collection".
	MediaTypeAll MediaType = "all"
)

// NormalizeMediaType maps the historical type spellings onto the canonical
// three. Unknown values are returned as-is. The mapping is idempotent.
func NormalizeMediaType(t string) MediaType {
	switch t {
	case "image", "images", "myimage":
		return MediaTypeImage
	case "audio", "myaudio":
		return MediaTypeAudio
	case "video", "myvideo", "myvideos":
		return MediaTypeVideo
	default:
		return MediaType(t)
	}
}

// MediaTypeFromContentType derives the media type from a MIME type,
// e.g. "video/mp4" -> video.
func MediaTypeFromContentType(contentType string) MediaType {
	prefix, _, _ := strings.Cut(contentType, "/")
	return NormalizeMediaType(prefix)
}

// IsValid reports whether t is one of the three canonical media types.
func (t MediaType) IsValid() bool {
	switch t {
	case MediaTypeImage, MediaTypeAudio, MediaTypeVideo:
		return true
	}
	return false
}

func (t MediaType) String() string {
	return string(t)
}

// MediaRecord is the document stored in the metadata store, one per uploaded
// blob. BlobName is the join key between the record and the physical blob and
// must be preserved verbatim on both sides.
type MediaRecord struct {
	ID            string    `json:"id" bson:"id"`
	MediaType     MediaType `json:"mediaType" bson:"mediaType"`
	Title         string    `json:"title,omitempty" bson:"title,omitempty"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	Tags          []string  `json:"tags,omitempty" bson:"tags,omitempty"`
	FileName      string    `json:"fileName" bson:"fileName"`
	BlobName      string    `json:"blobName" bson:"blobName"`
	BlobURL       string    `json:"blobUrl" bson:"blobUrl"`
	ContentType   string    `json:"contentType" bson:"contentType"`
	FileSize      int64     `json:"fileSize,omitempty" bson:"fileSize,omitempty"`
	ContainerName string    `json:"containerName" bson:"containerName"`
	UploadDate    time.Time `json:"uploadDate" bson:"uploadDate"`

	// Extra carries fields we do not model (legacy records, other writers).
	// They round-trip through reads and updates untouched.
	Extra map[string]interface{} `json:"-" bson:",inline"`
}

// NewBlobName builds the storage-side object name for an upload. The
// timestamp prefix keeps repeated uploads of the same file distinct; the
// original file name is kept verbatim after the dash because it is the join
// key consumers use to find the matching record.
func NewBlobName(now time.Time, fileName string) string {
	return fmt.Sprintf("%d-%s", now.UnixMilli(), fileName)
}

// NewRecordID builds a record id from the upload time and a sanitized file
// name (non-alphanumerics stripped, matching what earlier writers produced).
func NewRecordID(now time.Time, fileName string) string {
	var b strings.Builder
	for _, r := range fileName {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), b.String())
}

// DisplayName strips the timestamp prefix and extension from a blob or file
// name and truncates it for display.
func DisplayName(name string) string {
	if i := strings.Index(name, "-"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if len(name) > 20 {
		return name[:20] + "..."
	}
	return name
}

// FormatFileSize renders a byte count in human-readable form.
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMG"[exp])
}
