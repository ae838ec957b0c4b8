// services/query_service.go
package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PhilHen99/InplayBasketSourceFinder/models"
)

// Gender filter values. The filter is a heuristic over league names, not a
// modeled attribute: leagues that do not follow the "NCAA ... Women" naming
// are never matched.
const (
	GenderMen   = "men"
	GenderWomen = "women"

	baseLeagueToken = "ncaa"
	womenMarker     = "women"
)

// Filters narrows a query. Empty fields impose no constraint; the fields are
// AND-combined.
type Filters struct {
	Country string
	League  string
	Sport   string
	Search  string // comma-separated terms, any of which may match the team name
	Gender  string // "", GenderMen or GenderWomen
}

// ParseFilters reads filters from URL query parameters.
func ParseFilters(q url.Values) Filters {
	return Filters{
		Country: q.Get("country"),
		League:  q.Get("league"),
		Sport:   q.Get("sport"),
		Search:  q.Get("search"),
		Gender:  strings.ToLower(strings.TrimSpace(q.Get("gender"))),
	}
}

// SearchTerms splits a search string into trimmed, lower-cased terms. A search
// made only of blanks and commas yields no terms. Otherwise empty terms are
// kept, and an empty term matches every name.
func SearchTerms(search string) []string {
	terms := strings.Split(search, ",")
	blank := true
	for i, term := range terms {
		terms[i] = strings.ToLower(strings.TrimSpace(term))
		if terms[i] != "" {
			blank = false
		}
	}
	if blank {
		return nil
	}
	return terms
}

// Query returns the teams of snap matching f, in snapshot order. It never
// touches the dataset service.
func Query(snap *Snapshot, f Filters) ([]models.Team, error) {
	gender, err := genderMatcher(f.Gender)
	if err != nil {
		return nil, err
	}
	terms := SearchTerms(f.Search)

	out := []models.Team{}
	if snap == nil {
		return out, nil
	}
	for _, t := range snap.Teams {
		if f.Country != "" && t.Country != f.Country {
			continue
		}
		if f.League != "" && t.League != f.League {
			continue
		}
		if f.Sport != "" && t.Sport != f.Sport {
			continue
		}
		if gender != nil && !gender(t.League) {
			continue
		}
		if len(terms) > 0 && !nameMatchesAny(t.Name, terms) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func genderMatcher(gender string) (func(league string) bool, error) {
	switch strings.ToLower(gender) {
	case "":
		return nil, nil
	case GenderWomen:
		return func(league string) bool {
			l := strings.ToLower(league)
			return strings.Contains(l, baseLeagueToken) && strings.Contains(l, womenMarker)
		}, nil
	case GenderMen:
		return func(league string) bool {
			l := strings.ToLower(league)
			return strings.Contains(l, baseLeagueToken) && !strings.Contains(l, womenMarker)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidGender, gender)
	}
}

func nameMatchesAny(name string, terms []string) bool {
	lower := strings.ToLower(name)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// FindByName returns the first team whose name equals name exactly.
// Duplicate names resolve to the first occurrence.
func FindByName(snap *Snapshot, name string) (models.Team, error) {
	if snap != nil {
		for _, t := range snap.Teams {
			if t.Name == name {
				return t, nil
			}
		}
	}
	return models.Team{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}
