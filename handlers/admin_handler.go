// handlers/admin_handler.go
package handlers

import (
	"log"
	"net/http"
	"time"
)

// RefreshHandler reloads the dataset on demand. It does not force a map
// rebuild: the map keeps its own TTL.
func (s *Server) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		respondWithJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success": false,
			"error":   "Too many refresh requests, try again later",
		})
		return
	}

	snap, err := s.dataset.Refresh(r.Context())
	if err != nil {
		log.Printf("ERROR Handler: manual data refresh failed: %v", err)
		respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	s.maps.EnsureFresh(snap)

	message := "Data refreshed successfully"
	if snap.Fallback {
		message = "Primary source unavailable, fallback data loaded"
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     message,
		"timestamp":   snap.RefreshedAt.Format(time.RFC3339),
		"teams_count": snap.Len(),
		"fallback":    snap.Fallback,
	})
}

type healthResponse struct {
	Status    string      `json:"status"`
	Timestamp string      `json:"timestamp"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
	Map       interface{} `json:"map"`
	// Reachable is only set when ?check=1 is passed.
	Reachable *bool  `json:"source_reachable,omitempty"`
	CheckErr  string `json:"source_error,omitempty"`
}

// HealthHandler reports provider, snapshot and map state.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: s.now().Format(time.RFC3339),
		Version:   Version,
		Data:      s.dataset.Status(),
	}

	mapStatus, err := s.maps.Inspect()
	if err != nil {
		log.Printf("WARN Handler: failed to inspect map artifact: %v", err)
	}
	resp.Map = mapStatus

	if r.URL.Query().Get("check") != "" {
		reachable := true
		if err := s.dataset.CheckSource(r.Context()); err != nil {
			reachable = false
			resp.CheckErr = err.Error()
		}
		resp.Reachable = &reachable
	}

	if _, err := s.dataset.Current(); err != nil {
		resp.Status = "degraded"
	}
	respondWithJSON(w, http.StatusOK, resp)
}
