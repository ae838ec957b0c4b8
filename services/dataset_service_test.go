package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PhilHen99/InplayBasketSourceFinder/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubFetcher returns a fixed table or error, counting calls.
type stubFetcher struct {
	provider source.Provider
	mu       sync.Mutex
	table    *source.Table
	err      error
	calls    atomic.Int32
	gate     chan struct{} // when non-nil, Fetch blocks until it is closed
}

func (f *stubFetcher) Provider() source.Provider { return f.provider }

func (f *stubFetcher) Fetch(ctx context.Context) (*source.Table, error) {
	f.calls.Add(1)
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.table, f.err
}

func (f *stubFetcher) set(table *source.Table, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.table, f.err = table, err
}

type validatingFetcher struct {
	stubFetcher
	validateErr error
}

func (f *validatingFetcher) Validate(context.Context) error { return f.validateErr }

func teamTable(names ...string) *source.Table {
	t := &source.Table{Header: []string{"Team", "Country", "Sports"}}
	for _, n := range names {
		t.Rows = append(t.Rows, []string{n, "USA", "Basketball"})
	}
	return t
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errUnreachable = errors.New("unreachable")

func TestRefreshFromPrimary(t *testing.T) {
	clock := newFakeClock()
	primary := &stubFetcher{provider: source.SharePoint, table: teamTable("Lakers", "Bulls")}
	svc := NewDatasetService(primary, nil, time.Hour, WithClock(clock.Now))

	assert.True(t, svc.IsRefreshDue())
	_, err := svc.Current()
	assert.ErrorIs(t, err, ErrNoDataAvailable)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, source.SharePoint, snap.Provider)
	assert.False(t, snap.Fallback)
	assert.Equal(t, clock.Now(), snap.RefreshedAt)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, snap, current)
	assert.False(t, svc.IsRefreshDue())
}

func TestIsRefreshDueAfterInterval(t *testing.T) {
	clock := newFakeClock()
	primary := &stubFetcher{provider: source.Local, table: teamTable("Lakers")}
	svc := NewDatasetService(primary, nil, time.Hour, WithClock(clock.Now))

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	clock.Advance(time.Hour)
	assert.False(t, svc.IsRefreshDue(), "exactly one interval is not yet due")
	clock.Advance(time.Second)
	assert.True(t, svc.IsRefreshDue())
}

func TestRefreshIfDue(t *testing.T) {
	clock := newFakeClock()
	primary := &stubFetcher{provider: source.Local, table: teamTable("Lakers")}
	svc := NewDatasetService(primary, nil, time.Minute, WithClock(clock.Now))

	_, err := svc.RefreshIfDue(context.Background())
	require.NoError(t, err)
	_, err = svc.RefreshIfDue(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, primary.calls.Load())

	clock.Advance(2 * time.Minute)
	_, err = svc.RefreshIfDue(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, primary.calls.Load())
}

func TestRefreshFallsBackToLocal(t *testing.T) {
	primary := &stubFetcher{provider: source.S3, err: errUnreachable}
	fallback := &stubFetcher{provider: source.Local, table: teamTable("Fallback Team")}
	svc := NewDatasetService(primary, fallback, time.Hour)

	snap, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Fallback)
	assert.Equal(t, source.Local, snap.Provider)
	assert.Equal(t, "Fallback Team", snap.Teams[0].Name)

	st := svc.Status()
	assert.Equal(t, "aws_s3", st.Provider)
	assert.True(t, st.Fallback)
	assert.True(t, st.Loaded)
}

func TestRefreshFailureKeepsPreviousSnapshot(t *testing.T) {
	clock := newFakeClock()
	primary := &stubFetcher{provider: source.SharePoint, table: teamTable("A", "B", "C")}
	fallback := &stubFetcher{provider: source.Local, err: errors.New("no such file")}
	svc := NewDatasetService(primary, fallback, time.Hour, WithClock(clock.Now))

	first, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	primary.set(nil, errUnreachable)

	_, err = svc.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRefresh)
	assert.ErrorIs(t, err, errUnreachable)

	var refreshErr *RefreshError
	require.ErrorAs(t, err, &refreshErr)
	assert.Equal(t, source.SharePoint, refreshErr.Provider)
	assert.Error(t, refreshErr.Fallback)

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
	assert.Equal(t, 3, current.Len())
	assert.True(t, svc.IsRefreshDue(), "a failed refresh does not reset the interval")
}

func TestRefreshFailureWithoutPriorData(t *testing.T) {
	primary := &stubFetcher{provider: source.GoogleDrive, err: errUnreachable}
	svc := NewDatasetService(primary, nil, time.Hour)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefresh)

	_, err = svc.Current()
	assert.ErrorIs(t, err, ErrNoDataAvailable)
	assert.False(t, svc.Status().Loaded)
}

func TestRefreshCleaningError(t *testing.T) {
	primary := &stubFetcher{provider: source.Local, table: &source.Table{}}
	svc := NewDatasetService(primary, nil, time.Hour)

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefresh)
}

func TestConcurrentRefreshSharesOneFetch(t *testing.T) {
	primary := &stubFetcher{provider: source.Local, table: teamTable("Lakers"), gate: make(chan struct{})}
	svc := NewDatasetService(primary, nil, time.Hour)

	const callers = 8
	var wg sync.WaitGroup
	results := make([]*Snapshot, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snap, err := svc.Refresh(context.Background())
			assert.NoError(t, err)
			results[i] = snap
		}(i)
	}

	require.Eventually(t, func() bool { return primary.calls.Load() == 1 }, time.Second, time.Millisecond)
	// Give the remaining callers time to join the in-flight refresh.
	time.Sleep(100 * time.Millisecond)
	close(primary.gate)
	wg.Wait()

	assert.EqualValues(t, 1, primary.calls.Load())
	for _, snap := range results {
		assert.Same(t, results[0], snap)
	}
}

func TestRefreshTimesOut(t *testing.T) {
	primary := &stubFetcher{provider: source.SharePoint, table: teamTable("Lakers"), gate: make(chan struct{})}
	svc := NewDatasetService(primary, nil, time.Hour, WithFetchTimeout(20*time.Millisecond))

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefresh)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// liveContextFetcher fails when asked to fetch under an already-ended context.
type liveContextFetcher struct {
	stubFetcher
}

func (f *liveContextFetcher) Fetch(ctx context.Context) (*source.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.stubFetcher.Fetch(ctx)
}

func TestRefreshSurvivesCancelledFirstCaller(t *testing.T) {
	primary := &stubFetcher{provider: source.SharePoint, table: teamTable("Primary"), gate: make(chan struct{})}
	fallback := &liveContextFetcher{stubFetcher{provider: source.Local, table: teamTable("Fallback Team")}}
	svc := NewDatasetService(primary, fallback, time.Hour, WithFetchTimeout(200*time.Millisecond))

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(firstCtx)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return primary.calls.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		snap *Snapshot
		err  error
	}
	second := make(chan result, 1)
	go func() {
		snap, err := svc.Refresh(context.Background())
		second <- result{snap, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancelFirst()

	assert.ErrorIs(t, <-firstErr, context.Canceled)

	res := <-second
	require.NoError(t, res.err)
	assert.True(t, res.snap.Fallback)
	assert.Equal(t, "Fallback Team", res.snap.Teams[0].Name)
	assert.EqualValues(t, 1, primary.calls.Load())
	assert.EqualValues(t, 1, fallback.calls.Load())

	current, err := svc.Current()
	require.NoError(t, err)
	assert.Same(t, res.snap, current)
}

func TestRefreshCallerContextEndsWait(t *testing.T) {
	primary := &stubFetcher{provider: source.SharePoint, table: teamTable("Lakers"), gate: make(chan struct{})}
	svc := NewDatasetService(primary, nil, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := svc.Refresh(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(primary.gate)
	require.Eventually(t, func() bool {
		_, err := svc.Current()
		return err == nil
	}, time.Second, time.Millisecond, "the detached load still publishes")
}

func TestCheckSource(t *testing.T) {
	svc := NewDatasetService(&stubFetcher{provider: source.Local}, nil, time.Hour)
	assert.NoError(t, svc.CheckSource(context.Background()))

	v := &validatingFetcher{stubFetcher: stubFetcher{provider: source.AzureFiles}, validateErr: errUnreachable}
	svc = NewDatasetService(v, nil, time.Hour)
	assert.ErrorIs(t, svc.CheckSource(context.Background()), errUnreachable)
}

// The dashboard scenario: a served snapshot survives a failed refresh, and a
// later successful refresh replaces it.
func TestSnapshotLifecycle(t *testing.T) {
	clock := newFakeClock()
	primary := &stubFetcher{provider: source.SharePoint, table: teamTable("A1", "A2")}
	svc := NewDatasetService(primary, nil, time.Hour, WithClock(clock.Now))

	_, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	clock.Advance(61 * time.Minute)
	primary.set(nil, errUnreachable)
	_, err = svc.RefreshIfDue(context.Background())
	require.Error(t, err)

	snap, err := svc.Current()
	require.NoError(t, err)
	teams, err := Query(snap, Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "A2"}, names(teams))

	clock.Advance(time.Minute)
	primary.set(teamTable("B1"), nil)
	_, err = svc.RefreshIfDue(context.Background())
	require.NoError(t, err)

	snap, err = svc.Current()
	require.NoError(t, err)
	teams, err = Query(snap, Filters{})
	require.NoError(t, err)
	assert.Equal(t, []string{"B1"}, names(teams))
}
