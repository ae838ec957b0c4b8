// handlers/map_handler.go
package handlers

import (
	"net/http"
)

// MapHandler serves the persisted map, regenerating it first if it expired.
// Map problems never fail the request beyond a missing file.
func (s *Server) MapHandler(w http.ResponseWriter, r *http.Request) {
	snap, _ := s.dataset.Current()
	s.maps.EnsureFresh(snap)

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, s.maps.Path())
}
