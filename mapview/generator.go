// Package mapview maintains the persisted world map of team counts per country.
// The map file is a cache entry with its own TTL: it is regenerated only when
// missing or older than the TTL, never because the dataset was refreshed.
package mapview

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/config"
	"github.com/PhilHen99/InplayBasketSourceFinder/services"
	"github.com/PhilHen99/InplayBasketSourceFinder/utils"
	"github.com/gofrs/flock"
)

const (
	DefaultTTL  = 24 * time.Hour
	DefaultTopN = 20

	// lockTimeout bounds the wait for another process regenerating the map.
	// On expiry regeneration proceeds without the lock.
	lockTimeout = 5 * time.Second
)

// Generator writes the map artifact for a dataset snapshot.
type Generator struct {
	path   string
	ttl    time.Duration
	topN   int
	coords *utils.CountryCoordinates
	now    func() time.Time

	mu sync.Mutex
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a generator writing to cfg.Path.
func NewGenerator(cfg config.MapConfig, coords *utils.CountryCoordinates, opts ...Option) *Generator {
	g := &Generator{
		path:   cfg.Path,
		ttl:    cfg.TTL,
		topN:   cfg.TopN,
		coords: coords,
		now:    time.Now,
	}
	if g.ttl <= 0 {
		g.ttl = DefaultTTL
	}
	if g.topN <= 0 {
		g.topN = DefaultTopN
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Path returns the artifact location.
func (g *Generator) Path() string { return g.path }

// TTL returns the artifact lifetime.
func (g *Generator) TTL() time.Duration { return g.ttl }

// fresh reports whether the artifact exists and is younger than the TTL.
func (g *Generator) fresh() bool {
	fi, err := os.Stat(g.path)
	if err != nil {
		return false
	}
	return g.now().Sub(fi.ModTime()) < g.ttl
}

// EnsureFresh regenerates the artifact from snap when it is missing or
// expired and reports whether it did. Failures are logged, never returned:
// if the full page cannot be built a minimal page is written instead.
func (g *Generator) EnsureFresh(snap *services.Snapshot) bool {
	if g.fresh() {
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	lock := g.acquireLock()
	if lock != nil {
		defer func() { _ = lock.Unlock() }()
	}

	// Another goroutine or process may have written it while we waited.
	if g.fresh() {
		return false
	}

	data, complete := g.build(snap)
	if err := writeAtomic(g.path, data); err != nil {
		log.Printf("ERROR Map: failed to write %s: %v", g.path, err)
		return false
	}
	if !complete {
		// A placeholder must not hold the slot for a whole TTL.
		if err := os.Chtimes(g.path, time.Unix(0, 0), time.Unix(0, 0)); err != nil {
			log.Printf("WARN Map: failed to expire placeholder %s: %v", g.path, err)
		}
		log.Printf("WARN Map: wrote placeholder map to %s", g.path)
		return true
	}
	log.Printf("Map: regenerated %s", g.path)
	return true
}

// build renders the page for snap. complete is false when the minimal
// placeholder page was produced instead.
func (g *Generator) build(snap *services.Snapshot) (data []byte, complete bool) {
	if snap == nil {
		log.Println("WARN Map: no teams data available for map generation")
		return []byte(minimalPage), false
	}

	markers := BuildMarkers(CountryCounts(snap.Teams), g.topN, g.coords)
	data, err := render(markers, g.now(), "")
	if err != nil {
		log.Printf("ERROR Map: failed to render map with %d markers: %v", len(markers), err)
		return []byte(minimalPage), false
	}
	return data, true
}

func (g *Generator) lockPath() string {
	return g.path + ".lock"
}

// acquireLock takes the cross-process lock beside the artifact. It returns
// nil when the lock cannot be taken in time; callers proceed unlocked.
func (g *Generator) acquireLock() *flock.Flock {
	if err := os.MkdirAll(filepath.Dir(g.path), 0755); err != nil {
		log.Printf("WARN Map: failed to create directory for %s: %v", g.path, err)
		return nil
	}

	fl := flock.New(g.lockPath())
	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := fl.TryLockContext(ctx, 20*time.Millisecond)
	if err != nil || !locked {
		log.Printf("WARN Map: proceeding without lock on %s: %v", g.lockPath(), err)
		return nil
	}
	return fl
}

// writeAtomic writes data to a temp file in the target directory and renames
// it over path, so readers never see a partial file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
