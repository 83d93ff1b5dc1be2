package handlers

import (
	"fmt"
	"log"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/gallery"
	"github.com/sonu/mediashare/internal/notify"
)

// UploadHandler handles media upload requests.
type UploadHandler struct {
	uploader *gallery.Uploader
	bus      notify.Bus
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploader *gallery.Uploader, bus notify.Bus) *UploadHandler {
	return &UploadHandler{uploader: uploader, bus: bus}
}

// ServeHTTP handles POST /api/media with a multipart "file" field.
func (uh *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, "upload_media",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing 'file' form field")
		return
	}
	defer file.Close()

	fileName := header.Filename
	contentType := header.Header.Get("Content-Type")
	span.SetAttributes(
		attribute.String("file_name", fileName),
		attribute.Int64("file_size", header.Size),
		attribute.String("content_type", contentType),
	)

	log.Printf("Uploading file: %s (%d bytes, %s)", fileName, header.Size, contentType)

	progress := func(percent int) {
		uh.bus.Publish(ctx, notify.Progress(fileName, percent))
	}

	record, err := uh.uploader.Upload(ctx, fileName, contentType, header.Size, file, progress)
	if err != nil {
		span.RecordError(err)
		event := notify.NewEvent(notify.LevelError, fmt.Sprintf("Failed to upload %s.", fileName))
		event.File = fileName
		uh.bus.Publish(ctx, event)
		respondStoreError(w, err, fileName)
		return
	}

	event := notify.NewEvent(notify.LevelSuccess, fmt.Sprintf("%s uploaded successfully!", fileName))
	event.File = fileName
	uh.bus.Publish(ctx, event)

	span.SetAttributes(attribute.String("record_id", record.ID))
	respondJSON(w, http.StatusCreated, record)

	log.Printf("File upload completed: %s (record %s)", fileName, record.ID)
}
