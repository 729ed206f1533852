package httpapi

import (
	"net/http"
	"time"

	"github.com/unipheas/intercept/internal/eventbus"
)

// handleStream returns an http.HandlerFunc that subscribes to busFn's
// bus and streams every published event as an SSE frame until the
// client disconnects, injecting a keepalive frame after
// eventbus.KeepaliveInterval of silence so proxies don't time out an
// idle connection.
func (s *Server) handleStream(busFn func() *eventbus.Bus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			s.writeError(w, http.StatusInternalServerError, "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ch, unsub := busFn().Subscribe(64)
		defer unsub()

		keepalive := time.NewTicker(eventbus.KeepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, open := <-ch:
				if !open {
					return
				}
				frame, err := eventbus.Frame(evt)
				if err != nil {
					s.log.Warnw("sse frame marshal failed", "err", err)
					continue
				}
				if _, err := w.Write(frame); err != nil {
					return
				}
				flusher.Flush()
				keepalive.Reset(eventbus.KeepaliveInterval)
			case <-keepalive.C:
				frame, _ := eventbus.Frame(eventbus.KeepaliveEvent())
				if _, err := w.Write(frame); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}
