// Package search finds candidate delegation targets (people) and fields as
// the user types. Input is debounced, in-flight lookups for stale queries
// are superseded by a generation counter, and a transport failure degrades
// to a built-in fixture list so the composer stays usable offline.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"commons/client/internal/api"
)

// DefaultDebounce is the quiet period before a typed query is issued.
const DefaultDebounce = 250 * time.Millisecond

// API is the slice of the transport the service needs.
type API interface {
	SearchPeople(ctx context.Context, q string) ([]api.PersonCandidate, error)
	SearchFields(ctx context.Context, q string) ([]api.FieldCandidate, error)
}

// Results is one delivered result set. Fallback marks best-effort fixture
// matches served because the backend was unreachable; callers must label
// them as offline suggestions, never as authoritative results.
type Results struct {
	Query    string
	People   []api.PersonCandidate
	Fields   []api.FieldCandidate
	Fallback bool
}

// Option configures a Service.
type Option func(*Service)

// WithDebounce overrides the quiet period (tests use a short one).
func WithDebounce(d time.Duration) Option {
	return func(s *Service) { s.debounce = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.log = logger.With("component", "search") }
}

// Service is the debounced, cancelable target lookup.
type Service struct {
	api      API
	debounce time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	gen      uint64
	timer    *time.Timer
	listener func(Results)
}

func New(transport API, opts ...Option) *Service {
	s := &Service{
		api:      transport,
		debounce: DefaultDebounce,
		log:      slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify registers the single listener that receives result sets. Results
// for superseded queries are never delivered.
func (s *Service) Notify(fn func(Results)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// SetQuery feeds one keystroke's worth of input. The lookup fires only
// after the input has been stable for the debounce period. An empty or
// whitespace-only query resolves synchronously to an empty result set with
// no network call.
func (s *Service) SetQuery(query string) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		listener := s.listener
		s.mu.Unlock()
		if listener != nil {
			listener(Results{Query: "", People: []api.PersonCandidate{}, Fields: []api.FieldCandidate{}})
		}
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.flush(gen, trimmed) })
	s.mu.Unlock()
}

// Cancel abandons any pending lookup; a later response for it is ignored.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// flush runs the lookup for a debounced query, then delivers the results
// unless a newer query has been issued in the meantime.
func (s *Service) flush(gen uint64, query string) {
	if !s.current(gen) {
		return
	}
	results := s.Search(context.Background(), query)

	s.mu.Lock()
	listener := s.listener
	stale := gen != s.gen
	s.mu.Unlock()
	if stale || listener == nil {
		return
	}
	listener(results)
}

func (s *Service) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return gen == s.gen
}

// Search runs the combined people+fields lookup immediately (no debounce).
// The two requests are issued concurrently; a failure in one leg degrades
// that leg to fixtures without suppressing the other's results.
func (s *Service) Search(ctx context.Context, query string) Results {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Results{Query: "", People: []api.PersonCandidate{}, Fields: []api.FieldCandidate{}}
	}

	results := Results{Query: trimmed}
	var peopleFallback, fieldsFallback bool
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		results.People, peopleFallback = s.People(ctx, trimmed)
	}()
	go func() {
		defer wg.Done()
		results.Fields, fieldsFallback = s.Fields(ctx, trimmed)
	}()
	wg.Wait()
	results.Fallback = peopleFallback || fieldsFallback
	return results
}

// People looks up person candidates. The bool reports fixture fallback.
func (s *Service) People(ctx context.Context, query string) ([]api.PersonCandidate, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []api.PersonCandidate{}, false
	}
	people, err := s.api.SearchPeople(ctx, trimmed)
	if err != nil {
		s.log.Warn("people search degraded to fixtures", "error", err)
		return filterFixturePeople(trimmed), true
	}
	return people, false
}

// Fields looks up field candidates. The bool reports fixture fallback.
func (s *Service) Fields(ctx context.Context, query string) ([]api.FieldCandidate, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return []api.FieldCandidate{}, false
	}
	fields, err := s.api.SearchFields(ctx, trimmed)
	if err != nil {
		s.log.Warn("field search degraded to fixtures", "error", err)
		return filterFixtureFields(trimmed), true
	}
	return fields, false
}
