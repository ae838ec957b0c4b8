// services/snapshot.go
package services

import (
	"sort"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/models"
	"github.com/PhilHen99/InplayBasketSourceFinder/source"
)

// Snapshot is one published version of the dataset. It is never modified
// after NewSnapshot returns; readers must not modify its slices.
type Snapshot struct {
	Teams     []models.Team
	Countries []string
	Leagues   []string
	Sports    []string

	RefreshedAt time.Time
	Provider    source.Provider
	Fallback    bool // loaded from the fallback source
}

// NewSnapshot builds a snapshot and its filter option lists from teams.
func NewSnapshot(teams []models.Team, provider source.Provider, fallback bool, refreshedAt time.Time) *Snapshot {
	owned := make([]models.Team, len(teams))
	copy(owned, teams)

	return &Snapshot{
		Teams:       owned,
		Countries:   distinct(owned, func(t models.Team) string { return t.Country }),
		Leagues:     distinct(owned, func(t models.Team) string { return t.League }),
		Sports:      distinct(owned, func(t models.Team) string { return t.Sport }),
		RefreshedAt: refreshedAt,
		Provider:    provider,
		Fallback:    fallback,
	}
}

// Len returns the number of teams, zero for a nil snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Teams)
}

// FilterOptions is the set of values offered by the dashboard filters.
type FilterOptions struct {
	Countries []string `json:"countries"`
	Leagues   []string `json:"leagues"`
	Sports    []string `json:"sports"`
}

// FilterOptions returns the sorted distinct filter values of the snapshot,
// skipping empty ones. A nil snapshot yields empty lists.
func (s *Snapshot) FilterOptions() FilterOptions {
	if s == nil {
		return FilterOptions{Countries: []string{}, Leagues: []string{}, Sports: []string{}}
	}
	return FilterOptions{Countries: s.Countries, Leagues: s.Leagues, Sports: s.Sports}
}

// distinct returns the sorted non-empty values of field.
func distinct(teams []models.Team, field func(models.Team) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range teams {
		v := field(t)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
