package inbound

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/shandysiswandi/shield/internal/onboarding/usecase"
	"github.com/shandysiswandi/shield/internal/pkg/router"
)

const heartbeatInterval = 25 * time.Second

// StreamFlow streams every state change of a flow using SSE. The stream ends
// with a "closed" event when the flow is closed or expires.
func (h *HTTPEndpoint) StreamFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stream, err := h.uc.StreamFlow(ctx, usecase.FlowInput{
		FlowID:   httprouter.ParamsFromContext(ctx).ByName("id"),
		DeviceID: router.GetDeviceID(ctx),
	})
	if err != nil {
		router.WriteError(w, r, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		slog.ErrorContext(ctx, "failed to send response connected", "error", err)
		return
	}
	flusher.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		// heartbeat ping, so proxies won't drop idle connections.
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()

		case evt, ok := <-stream:
			if !ok {
				if ctx.Err() == nil {
					_, _ = fmt.Fprint(w, "event: closed\ndata: {}\n\n")
					flusher.Flush()
				}
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				slog.ErrorContext(ctx, "failed to marshal data", "error", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
				slog.ErrorContext(ctx, "failed to send response data", "error", err)
				return
			}
			flusher.Flush()
		}
	}
}
