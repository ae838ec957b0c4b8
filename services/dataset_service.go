// services/dataset_service.go
package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/models"
	"github.com/PhilHen99/InplayBasketSourceFinder/source"
	"golang.org/x/sync/singleflight"
)

const defaultFetchTimeout = 30 * time.Second

// DatasetService owns the published Snapshot and decides when it is reloaded.
// Refresh is never triggered on its own; callers ask IsRefreshDue and then
// call Refresh (or RefreshIfDue).
type DatasetService struct {
	primary      source.Fetcher
	fallback     source.Fetcher
	interval     time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	current atomic.Pointer[Snapshot]
	flight  singleflight.Group
}

// Option configures a DatasetService.
type Option func(*DatasetService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *DatasetService) { s.now = now }
}

// WithFetchTimeout bounds each fetch attempt. Zero keeps the default.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *DatasetService) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// NewDatasetService creates a service fetching from primary and falling back to
// fallback (usually a source.LocalFetcher) when primary fails. fallback may be nil.
func NewDatasetService(primary, fallback source.Fetcher, interval time.Duration, opts ...Option) *DatasetService {
	s := &DatasetService{
		primary:      primary,
		fallback:     fallback,
		interval:     interval,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provider returns the configured primary provider.
func (s *DatasetService) Provider() source.Provider {
	return s.primary.Provider()
}

// IsRefreshDue reports whether no load has succeeded yet or the last
// successful one is older than the refresh interval.
func (s *DatasetService) IsRefreshDue() bool {
	snap := s.current.Load()
	if snap == nil {
		return true
	}
	return s.now().Sub(snap.RefreshedAt) > s.interval
}

// Current returns the published snapshot.
func (s *DatasetService) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNoDataAvailable
	}
	return snap, nil
}

// Refresh reloads the dataset from the primary provider, trying the fallback
// source once if that fails. When both fail the previous snapshot stays
// published and a *RefreshError is returned. Concurrent calls share one
// in-flight load, which is bounded only by the fetch timeout: a caller whose
// ctx ends stops waiting but does not abort the load for the others.
func (s *DatasetService) Refresh(ctx context.Context) (*Snapshot, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan("refresh", func() (any, error) {
		return s.refresh(detached)
	})

	select {
	case res := <-ch:
		if res.Shared {
			log.Printf("Service: joined in-flight refresh from %s", s.Provider())
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		log.Printf("WARN Service: caller stopped waiting for refresh from %s: %v", s.Provider(), ctx.Err())
		return nil, ctx.Err()
	}
}

// RefreshIfDue refreshes only when IsRefreshDue. It returns the snapshot that
// is current afterwards.
func (s *DatasetService) RefreshIfDue(ctx context.Context) (*Snapshot, error) {
	if !s.IsRefreshDue() {
		return s.Current()
	}
	return s.Refresh(ctx)
}

func (s *DatasetService) refresh(ctx context.Context) (*Snapshot, error) {
	snap, err := s.load(ctx, s.primary, false)
	if err == nil {
		s.current.Store(snap)
		log.Printf("Service: successfully loaded %d teams from %s", snap.Len(), snap.Provider)
		return snap, nil
	}
	log.Printf("ERROR Service: error loading data from %s: %v", s.Provider(), err)

	if s.fallback == nil {
		return nil, &RefreshError{Provider: s.Provider(), Primary: err}
	}

	fb, fbErr := s.load(ctx, s.fallback, true)
	if fbErr != nil {
		log.Printf("ERROR Service: failed to load fallback data: %v", fbErr)
		return nil, &RefreshError{Provider: s.Provider(), Primary: err, Fallback: fbErr}
	}

	s.current.Store(fb)
	log.Printf("WARN Service: loaded %d teams from fallback local data due to %s error", fb.Len(), s.Provider())
	return fb, nil
}

// load fetches and cleans one table under its own fetch timeout.
func (s *DatasetService) load(ctx context.Context, f source.Fetcher, fallback bool) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	table, err := f.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	teams, err := CleanTable(table)
	if err != nil {
		return nil, fmt.Errorf("failed to clean data from %s: %w", f.Provider(), err)
	}
	return NewSnapshot(teams, f.Provider(), fallback, s.now()), nil
}

// CheckSource asks the primary fetcher to verify connectivity. Fetchers that
// cannot validate report nil.
func (s *DatasetService) CheckSource(ctx context.Context) error {
	v, ok := s.primary.(source.Validator)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	return v.Validate(ctx)
}

// Status summarizes the published snapshot for health reporting.
func (s *DatasetService) Status() models.DataSourceStatus {
	st := models.DataSourceStatus{
		Provider:        string(s.Provider()),
		RefreshInterval: s.interval,
		RefreshDue:      s.IsRefreshDue(),
	}
	if snap := s.current.Load(); snap != nil {
		refreshed := snap.RefreshedAt
		st.Loaded = true
		st.LastRefresh = &refreshed
		st.TeamsCount = snap.Len()
		st.Fallback = snap.Fallback
	}
	return st
}
