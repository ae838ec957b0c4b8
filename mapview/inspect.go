// mapview/inspect.go
package mapview

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/PhilHen99/InplayBasketSourceFinder/models"
	"github.com/PuerkitoBio/goquery"
)

// ReadMarkers parses a map page and returns the markers listed in its index.
func ReadMarkers(r io.Reader) ([]Marker, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse map page: %w", err)
	}

	var markers []Marker
	doc.Find("#marker-index li.marker").Each(func(_ int, li *goquery.Selection) {
		count, _ := strconv.Atoi(li.AttrOr("data-count", "0"))
		markers = append(markers, Marker{
			Country: li.AttrOr("data-country", ""),
			Count:   count,
			Link:    li.Find("a").AttrOr("href", ""),
		})
	})
	return markers, nil
}

// Inspect reports on the persisted artifact without regenerating it.
func (g *Generator) Inspect() (models.MapArtifactStatus, error) {
	st := models.MapArtifactStatus{Path: g.path, Stale: true}

	fi, err := os.Stat(g.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to stat %s: %w", g.path, err)
	}

	modTime := fi.ModTime()
	age := g.now().Sub(modTime)
	st.Exists = true
	st.GeneratedAt = &modTime
	st.AgeSeconds = int64(age.Seconds())
	st.Stale = age >= g.ttl

	f, err := os.Open(g.path)
	if err != nil {
		return st, fmt.Errorf("failed to open %s: %w", g.path, err)
	}
	defer f.Close()

	markers, err := ReadMarkers(f)
	if err != nil {
		return st, err
	}
	st.Markers = len(markers)
	return st, nil
}
