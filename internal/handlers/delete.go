package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/gallery"
	"github.com/sonu/mediashare/internal/models"
	"github.com/sonu/mediashare/internal/notify"
)

// DeleteHandler handles dual-store deletion requests.
type DeleteHandler struct {
	deleter *gallery.Deleter
	bus     notify.Bus
}

// NewDeleteHandler creates a new delete handler.
func NewDeleteHandler(deleter *gallery.Deleter, bus notify.Bus) *DeleteHandler {
	return &DeleteHandler{deleter: deleter, bus: bus}
}

type deleteResponse struct {
	gallery.DeleteResult
	Outcome gallery.Outcome `json:"outcome"`
	Message string          `json:"message"`
}

// ServeHTTP handles DELETE /api/media/{container}/{blobName}?type=. The
// response always carries the full outcome so the caller can distinguish
// partial success from full success and full failure.
func (dh *DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, "delete_media",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	vars := mux.Vars(r)
	containerName := vars["container"]
	blobName := vars["blobName"]
	mediaType := models.MediaType(r.URL.Query().Get("type"))

	if blobName == "" || blobName == "unknown-file" {
		respondError(w, http.StatusBadRequest, "Invalid file name for deletion. Please try again.")
		return
	}

	span.SetAttributes(
		attribute.String("blob_name", blobName),
		attribute.String("container", containerName),
	)

	log.Printf("Deleting file: %s from container: %s (type %s)", blobName, containerName, mediaType)

	result := dh.deleter.Delete(ctx, blobName, containerName, mediaType)

	level := notify.LevelSuccess
	if !result.Succeeded() {
		level = notify.LevelError
	}
	event := notify.NewEvent(level, result.Message())
	event.File = blobName
	dh.bus.Publish(ctx, event)

	span.SetAttributes(attribute.String("outcome", string(result.Outcome())))
	respondJSON(w, http.StatusOK, deleteResponse{
		DeleteResult: result,
		Outcome:      result.Outcome(),
		Message:      result.Message(),
	})
}
