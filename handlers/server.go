// handlers/server.go
package handlers

import (
	"net/http"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/mapview"
	"github.com/PhilHen99/InplayBasketSourceFinder/services"
	"golang.org/x/time/rate"
)

// Version is reported by /health.
const Version = "2.0.0"

// Server holds the services behind the HTTP routes.
type Server struct {
	dataset *services.DatasetService
	maps    *mapview.Generator
	limiter *rate.Limiter
	now     func() time.Time
}

// NewServer wires the handlers. POST /api/refresh-data is limited to limit
// calls every per; a limit of zero or less disables it.
func NewServer(dataset *services.DatasetService, maps *mapview.Generator, limit int, per time.Duration) *Server {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if limit > 0 && per > 0 {
		limiter = rate.NewLimiter(rate.Every(per/time.Duration(limit)), limit)
	}
	return &Server{dataset: dataset, maps: maps, limiter: limiter, now: time.Now}
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.HealthHandler)
	mux.HandleFunc("GET /{$}", s.OverviewHandler)
	mux.HandleFunc("GET /api/overview", s.OverviewHandler)
	mux.HandleFunc("GET /api/teams", s.TeamsHandler)
	mux.HandleFunc("GET /api/teams/{name}", s.TeamDetailHandler)
	mux.HandleFunc("GET /team/{name}", s.TeamDetailHandler)
	mux.HandleFunc("GET /map", s.MapHandler)
	mux.HandleFunc("POST /api/refresh-data", s.RefreshHandler)
	return mux
}
