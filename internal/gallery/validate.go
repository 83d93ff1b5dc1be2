package gallery

import (
	"fmt"
	"strings"

	"github.com/sonu/mediashare/internal/models"
)

// ValidationError is a pre-flight upload rejection. It is raised before any
// network call and is fully recoverable by choosing a different file.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateUpload checks the content type and size of an upload against the
// target container's allow-list and limit. It returns the container
// configuration the file belongs in.
func ValidateUpload(fileName, contentType string, size int64) (models.ContainerConfig, error) {
	mediaType := models.MediaTypeFromContentType(contentType)
	cfg, ok := models.ContainerFor(mediaType)
	if !ok {
		return models.ContainerConfig{}, &ValidationError{
			Message: fmt.Sprintf("Unsupported file type: %s. Please upload an image, video, or audio file.", contentType),
		}
	}

	allowed := false
	for _, t := range cfg.AllowedTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		return models.ContainerConfig{}, &ValidationError{
			Message: fmt.Sprintf("This %s format (%s) is not supported. Supported formats: %s",
				mediaType, formatSuffix(contentType), supportedFormats(cfg)),
		}
	}

	if size > cfg.MaxFileSize {
		return models.ContainerConfig{}, &ValidationError{
			Message: fmt.Sprintf("File size (%s) exceeds the %s limit for %s files. Please upload a smaller file.",
				models.FormatFileSize(size), models.FormatFileSize(cfg.MaxFileSize), mediaType),
		}
	}

	return cfg, nil
}

func formatSuffix(contentType string) string {
	_, suffix, _ := strings.Cut(contentType, "/")
	return suffix
}

func supportedFormats(cfg models.ContainerConfig) string {
	formats := make([]string, 0, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		formats = append(formats, strings.ToUpper(formatSuffix(t)))
	}
	return strings.Join(formats, ", ")
}
