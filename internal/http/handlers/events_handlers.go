package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rogerio-castellano/inventory-app/internal/notify"
)

const eventsKeepAlive = 30 * time.Second

// EventsHandler godoc
// @Summary Watch for product changes
// @Description Server-sent events. Each "change" event carries the scope that changed; clients re-read it. Signals coalesce and are not replayed.
// @Tags events
// @Produce text/event-stream
// @Param scope query string false "products (default) or products/{id}"
// @Success 200 {string} string "event stream"
// @Failure 400 {string} string "Invalid scope"
// @Router /events [get]
func (h *Handlers) EventsHandler(w http.ResponseWriter, r *http.Request) {
	scope := notify.Collection()
	if s := r.URL.Query().Get("scope"); s != "" {
		parsed, err := notify.ParseScope(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		scope = parsed
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sub := h.hub.Subscribe(scope)
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": watching %s\n\n", scope)
	flusher.Flush()

	keepAlive := time.NewTicker(eventsKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case changed, ok := <-sub.C():
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", changed)
			flusher.Flush()
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		}
	}
}
