package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"commons/client/internal/api"

	"github.com/stretchr/testify/require"
)

type fakeSearchAPI struct {
	peopleFn func(ctx context.Context, q string) ([]api.PersonCandidate, error)
	fieldsFn func(ctx context.Context, q string) ([]api.FieldCandidate, error)

	peopleCalls atomic.Int64
	fieldCalls  atomic.Int64
}

func (f *fakeSearchAPI) SearchPeople(ctx context.Context, q string) ([]api.PersonCandidate, error) {
	f.peopleCalls.Add(1)
	if f.peopleFn != nil {
		return f.peopleFn(ctx, q)
	}
	return []api.PersonCandidate{{ID: "u_server", DisplayName: "Server Person"}}, nil
}

func (f *fakeSearchAPI) SearchFields(ctx context.Context, q string) ([]api.FieldCandidate, error) {
	f.fieldCalls.Add(1)
	if f.fieldsFn != nil {
		return f.fieldsFn(ctx, q)
	}
	return []api.FieldCandidate{{ID: "d_server", Label: "Server Field"}}, nil
}

// collector records every delivered result set.
type collector struct {
	mu      sync.Mutex
	results []Results
	signal  chan struct{}
}

func newCollector() *collector {
	return &collector{signal: make(chan struct{}, 16)}
}

func (c *collector) listen(r Results) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
	c.signal <- struct{}{}
}

func (c *collector) wait(t *testing.T) Results {
	t.Helper()
	select {
	case <-c.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for search results")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results[len(c.results)-1]
}

func (c *collector) all() []Results {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Results, len(c.results))
	copy(out, c.results)
	return out
}

func TestSetQueryEmptyResolvesSynchronouslyWithoutNetwork(t *testing.T) {
	transport := &fakeSearchAPI{}
	svc := New(transport, WithDebounce(time.Millisecond))
	col := newCollector()
	svc.Notify(col.listen)

	svc.SetQuery("   ")

	got := col.wait(t)
	require.Empty(t, got.Query)
	require.NotNil(t, got.People)
	require.Empty(t, got.People)
	require.NotNil(t, got.Fields)
	require.Empty(t, got.Fields)
	require.False(t, got.Fallback)
	require.Zero(t, transport.peopleCalls.Load())
	require.Zero(t, transport.fieldCalls.Load())
}

func TestSearchEmptyQueryNoNetwork(t *testing.T) {
	transport := &fakeSearchAPI{}
	svc := New(transport)

	results := svc.Search(context.Background(), "  \t ")
	require.Empty(t, results.People)
	require.Empty(t, results.Fields)
	require.Zero(t, transport.peopleCalls.Load())
	require.Zero(t, transport.fieldCalls.Load())
}

func TestDebounceCoalescesRapidTyping(t *testing.T) {
	transport := &fakeSearchAPI{}
	svc := New(transport, WithDebounce(40*time.Millisecond))
	col := newCollector()
	svc.Notify(col.listen)

	svc.SetQuery("a")
	svc.SetQuery("al")
	svc.SetQuery("ali")

	got := col.wait(t)
	require.Equal(t, "ali", got.Query)
	require.Equal(t, int64(1), transport.peopleCalls.Load())
	require.Equal(t, int64(1), transport.fieldCalls.Load())
}

func TestStaleResultsNeverDelivered(t *testing.T) {
	firstEntered := make(chan struct{})
	releaseFirst := make(chan struct{})
	transport := &fakeSearchAPI{}
	transport.peopleFn = func(ctx context.Context, q string) ([]api.PersonCandidate, error) {
		if q == "first" {
			close(firstEntered)
			<-releaseFirst
		}
		return []api.PersonCandidate{{ID: "u_" + q, DisplayName: q}}, nil
	}

	svc := New(transport, WithDebounce(time.Millisecond))
	col := newCollector()
	svc.Notify(col.listen)

	svc.SetQuery("first")
	<-firstEntered

	svc.SetQuery("second")
	got := col.wait(t)
	require.Equal(t, "second", got.Query)

	// The superseded lookup finishes after the newer one; its results
	// must be dropped, not delivered out of order.
	close(releaseFirst)
	time.Sleep(50 * time.Millisecond)
	for _, r := range col.all() {
		require.NotEqual(t, "first", r.Query)
	}
}

func TestCancelSuppressesPendingLookup(t *testing.T) {
	transport := &fakeSearchAPI{}
	svc := New(transport, WithDebounce(20*time.Millisecond))
	col := newCollector()
	svc.Notify(col.listen)

	svc.SetQuery("alice")
	svc.Cancel()

	time.Sleep(80 * time.Millisecond)
	require.Empty(t, col.all())
	require.Zero(t, transport.peopleCalls.Load())
}

func TestSearchOneLegFailingKeepsTheOther(t *testing.T) {
	transport := &fakeSearchAPI{
		peopleFn: func(ctx context.Context, q string) ([]api.PersonCandidate, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := New(transport)

	results := svc.Search(context.Background(), "environment")
	require.True(t, results.Fallback)
	require.Equal(t, "d_server", results.Fields[0].ID)
	// People came from the fixture list instead of vanishing.
	require.NotEmpty(t, results.People)
}

func TestFixtureFallbackFiltersBySubstring(t *testing.T) {
	transport := &fakeSearchAPI{
		peopleFn: func(ctx context.Context, q string) ([]api.PersonCandidate, error) {
			return nil, errors.New("backend down")
		},
		fieldsFn: func(ctx context.Context, q string) ([]api.FieldCandidate, error) {
			return nil, errors.New("backend down")
		},
	}
	svc := New(transport)

	people, fallback := svc.People(context.Background(), "ali")
	require.True(t, fallback)
	require.Len(t, people, 1)
	require.Equal(t, "u_alice", people[0].ID)

	fields, fallback := svc.Fields(context.Background(), "HOUS")
	require.True(t, fallback)
	require.Len(t, fields, 1)
	require.Equal(t, "d_housing", fields[0].ID)

	none, _ := svc.People(context.Background(), "zzz")
	require.Empty(t, none)
}

func TestServerResultsAreNotMarkedFallback(t *testing.T) {
	svc := New(&fakeSearchAPI{})
	results := svc.Search(context.Background(), "anything")
	require.False(t, results.Fallback)
	require.Equal(t, "u_server", results.People[0].ID)
}
