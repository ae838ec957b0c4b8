// utils/countries.go
package utils

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

//go:embed data/country_coordinates.json
var defaultCoordinatesJSON []byte

// LatLng is a [latitude, longitude] pair as stored in country_coordinates.json.
type LatLng [2]float64

// CountryCoordinates is a read-only country name → coordinate lookup.
type CountryCoordinates struct {
	byName       map[string]LatLng
	byNormalized map[string]LatLng
}

// NormalizeCountryName trims and lower-cases a country name for loose matching.
func NormalizeCountryName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// NewCountryCoordinates builds a lookup from an in-memory table.
func NewCountryCoordinates(table map[string]LatLng) *CountryCoordinates {
	c := &CountryCoordinates{
		byName:       make(map[string]LatLng, len(table)),
		byNormalized: make(map[string]LatLng, len(table)),
	}
	for name, ll := range table {
		c.byName[name] = ll
		c.byNormalized[NormalizeCountryName(name)] = ll
	}
	return c
}

// LoadCountryCoordinates reads the lookup from a JSON file. An empty path or a
// missing file falls back to the embedded table.
func LoadCountryCoordinates(path string) (*CountryCoordinates, error) {
	data := defaultCoordinatesJSON
	if path != "" {
		fileData, err := os.ReadFile(path)
		switch {
		case err == nil:
			data = fileData
		case errors.Is(err, os.ErrNotExist):
			log.Printf("WARN Utils: coordinates file %s not found, using embedded table", path)
		default:
			return nil, fmt.Errorf("failed to read coordinates file %s: %w", path, err)
		}
	}

	var table map[string]LatLng
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode country coordinates: %w", err)
	}
	return NewCountryCoordinates(table), nil
}

// Lookup resolves a country name, exact match first, then normalized.
func (c *CountryCoordinates) Lookup(country string) (LatLng, bool) {
	if c == nil {
		return LatLng{}, false
	}
	if ll, ok := c.byName[country]; ok {
		return ll, true
	}
	ll, ok := c.byNormalized[NormalizeCountryName(country)]
	return ll, ok
}

func (c *CountryCoordinates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byName)
}
