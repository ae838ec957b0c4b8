// handlers/teams_handler.go
package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/services"
)

const refreshWarning = "Warning: Using cached data due to refresh error"

type overviewResponse struct {
	services.FilterOptions
	Provider    string    `json:"data_provider"`
	LastRefresh time.Time `json:"last_refresh"`
	TeamsCount  int       `json:"teams_count"`
	Fallback    bool      `json:"fallback"`
	Warning     string    `json:"warning,omitempty"`
}

// OverviewHandler is the dashboard entry point. It refreshes the dataset when
// due, makes sure the map exists, and returns the filter options.
// A failed refresh is downgraded to a warning while an older snapshot exists.
func (s *Server) OverviewHandler(w http.ResponseWriter, r *http.Request) {
	var warning string
	if s.dataset.IsRefreshDue() {
		if _, err := s.dataset.Refresh(r.Context()); err != nil {
			log.Printf("ERROR Handler: failed to refresh data: %v", err)
			warning = refreshWarning
		}
	}

	snap, err := s.dataset.Current()
	if err != nil {
		respondWithError(w, http.StatusServiceUnavailable, "No data available")
		return
	}
	s.maps.EnsureFresh(snap)

	respondWithJSON(w, http.StatusOK, overviewResponse{
		FilterOptions: snap.FilterOptions(),
		Provider:      string(s.dataset.Provider()),
		LastRefresh:   snap.RefreshedAt,
		TeamsCount:    snap.Len(),
		Fallback:      snap.Fallback,
		Warning:       warning,
	})
}

// TeamsHandler returns the teams matching the query parameters
// country, league, sport, search and gender.
func (s *Server) TeamsHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dataset.Current()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "No data available")
		return
	}

	teams, err := services.Query(snap, services.ParseFilters(r.URL.Query()))
	if errors.Is(err, services.ErrInvalidGender) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, teams)
}

// TeamDetailHandler returns the first team whose name equals the {name} path segment.
func (s *Server) TeamDetailHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dataset.Current()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Data not available")
		return
	}

	team, err := services.FindByName(snap, r.PathValue("name"))
	if errors.Is(err, services.ErrNotFound) {
		respondWithError(w, http.StatusNotFound, "Team not found")
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, team)
}
