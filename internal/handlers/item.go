package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/gallery"
	"github.com/sonu/mediashare/internal/models"
)

// ItemHandler serves single-record lookups and metadata updates.
type ItemHandler struct {
	metadata gallery.MetadataStore
}

// NewItemHandler creates a new item handler.
func NewItemHandler(metadata gallery.MetadataStore) *ItemHandler {
	return &ItemHandler{metadata: metadata}
}

// Get handles GET /api/media/{id}?type=.
func (ih *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, "get_media_item",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	id := mux.Vars(r)["id"]
	mediaType := models.MediaType(r.URL.Query().Get("type"))
	span.SetAttributes(attribute.String("record_id", id))

	record, err := ih.metadata.GetByID(ctx, id, mediaType)
	if err != nil {
		span.RecordError(err)
		respondStoreError(w, err, "the requested file")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// Update handles PATCH /api/media/{id}?type= with a JSON merge patch.
func (ih *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, "update_media_item",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	id := mux.Vars(r)["id"]
	mediaType := models.MediaType(r.URL.Query().Get("type"))
	span.SetAttributes(attribute.String("record_id", id))

	var patch map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON patch body")
		return
	}

	record, err := ih.metadata.Update(ctx, id, patch, mediaType)
	if err != nil {
		span.RecordError(err)
		respondStoreError(w, err, "the requested file")
		return
	}

	respondJSON(w, http.StatusOK, record)
}
