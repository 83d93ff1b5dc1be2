package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/sonu/mediashare/internal/notify"
)

// EventsHandler streams gallery notifications to browsers as server-sent
// events.
type EventsHandler struct {
	bus notify.Bus
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(bus notify.Bus) *EventsHandler {
	return &EventsHandler{bus: bus}
}

// ServeHTTP handles GET /api/events. The stream stays open until the client
// disconnects.
func (eh *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming is not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	events, cancel := eh.bus.Subscribe(ctx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Warning: failed to encode event %s: %v", event.ID, err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
