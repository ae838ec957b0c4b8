// models/meta.go
package models

import "time"

// DataSourceStatus describes the freshness of the dataset currently served.
type DataSourceStatus struct {
	Provider        string        `json:"data_provider"`
	Loaded          bool          `json:"loaded"`
	LastRefresh     *time.Time    `json:"last_refresh"`
	TeamsCount      int           `json:"teams_count"`
	Fallback        bool          `json:"fallback"`
	RefreshInterval time.Duration `json:"-"`
	RefreshDue      bool          `json:"refresh_due"`
}

// MapArtifactStatus describes the persisted map file.
type MapArtifactStatus struct {
	Path        string     `json:"path"`
	Exists      bool       `json:"exists"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	AgeSeconds  int64      `json:"age_seconds,omitempty"`
	Markers     int        `json:"markers"`
	Stale       bool       `json:"stale"`
}
