package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
)

// startTime is used to report server uptime in metrics.
var startTime = time.Now()

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		// Display endpoints
		r.Route("/displays", func(r chi.Router) {
			r.Get("/", s.handleListDisplays)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDisplay)
				r.Get("/properties", s.handleGetProperties)
				r.Get("/controls", s.handleListControls)
				r.Post("/controls/{property}", s.handleApplyControl)
				r.Post("/ping", s.handlePing)
				r.Get("/stats", s.handleDisplayStats)
			})
		})

		// WebSocket state relay
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	displays := make(map[string]bool, len(s.order))
	healthy := true
	for _, id := range s.order {
		available := s.bridges[id].Available()
		displays[id] = available
		if !available {
			healthy = false
		}
	}

	status := "ok"
	if !healthy {
		status = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"version":  s.version,
		"displays": displays,
	})
}

// handleMetrics returns runtime and per-display statistics.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	displays := make([]map[string]any, 0, len(s.order))
	for _, id := range s.order {
		displays = append(displays, s.bridges[id].Statistics())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds":    int(time.Since(startTime).Seconds()),
		"goroutines":        runtime.NumGoroutine(),
		"heap_alloc_bytes":  mem.HeapAlloc,
		"websocket_clients": s.hubClientCount(),
		"displays":          displays,
	})
}

// hubClientCount returns the WebSocket client count, tolerating a server
// that has not been started.
func (s *Server) hubClientCount() int {
	if s.hub == nil {
		return 0
	}
	return s.hub.ClientCount()
}
