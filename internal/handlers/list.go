package handlers

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/sonu/mediashare/internal/gallery"
	"github.com/sonu/mediashare/internal/models"
)

// ListHandler serves the reconciled media listing.
type ListHandler struct {
	reconciler *gallery.Reconciler
}

// NewListHandler creates a new list handler.
func NewListHandler(reconciler *gallery.Reconciler) *ListHandler {
	return &ListHandler{reconciler: reconciler}
}

type listResponse struct {
	Items []models.MediaRecord `json:"items"`
	Count int                  `json:"count"`
}

// ServeHTTP handles GET /api/media?type={all|image|audio|video}. Every call
// re-queries the remote stores; nothing is served from a cache.
func (lh *ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, "list_media",
		trace.WithSpanKind(trace.SpanKindServer),
	)
	defer span.End()

	mediaType := models.MediaType(r.URL.Query().Get("type"))
	if mediaType == "" {
		mediaType = models.MediaTypeAll
	}
	span.SetAttributes(attribute.String("media_type", string(mediaType)))

	records, err := lh.reconciler.List(ctx, mediaType)
	if err != nil {
		span.RecordError(err)
		respondStoreError(w, err, "the media listing")
		return
	}
	if records == nil {
		records = []models.MediaRecord{}
	}

	span.SetAttributes(attribute.Int("record_count", len(records)))
	respondJSON(w, http.StatusOK, listResponse{Items: records, Count: len(records)})
}
