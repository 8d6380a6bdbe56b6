// Package transparency provides the read-only delegation views: the
// caller's own chains grouped by field, inbound delegations to a person,
// and the platform health summary. The three reads are independent; a
// failure in one never affects the others, and none of them touches the
// delegation store.
package transparency

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"commons/client/internal/api"

	"golang.org/x/sync/singleflight"
)

// ErrNoTarget is returned when an inbound query has no target person id.
var ErrNoTarget = errors.New("transparency: target person id required")

// API is the slice of the transport the service needs.
type API interface {
	MyChains(ctx context.Context) ([]api.FieldChains, error)
	Inbound(ctx context.Context, delegateeID, fieldID string) (*api.InboundSummary, error)
	HealthSummary(ctx context.Context) (*api.HealthSummary, error)
}

// Service runs the three transparency queries lazily: nothing is fetched
// until the corresponding view is activated. Re-activating a view while
// its load is still in flight joins the pending call instead of issuing a
// duplicate.
type Service struct {
	api API
	log *slog.Logger
	sf  singleflight.Group
}

func New(transport API, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: transport, log: logger.With("component", "transparency")}
}

// MyChains fetches the caller's chains grouped by field. An empty slice
// with a nil error is a valid state, distinct from a failed load.
func (s *Service) MyChains(ctx context.Context) ([]api.FieldChains, error) {
	v, err, _ := s.sf.Do("chains", func() (any, error) {
		chains, err := s.api.MyChains(ctx)
		if err != nil {
			return nil, err
		}
		if chains == nil {
			chains = []api.FieldChains{}
		}
		return chains, nil
	})
	if err != nil {
		s.log.Warn("my chains load failed", "error", err)
		return nil, err
	}
	return v.([]api.FieldChains), nil
}

// Inbound fetches delegations pointing at a person, optionally filtered by
// field. The target id must be non-empty before any request is made.
func (s *Service) Inbound(ctx context.Context, delegateeID, fieldID string) (*api.InboundSummary, error) {
	delegateeID = strings.TrimSpace(delegateeID)
	if delegateeID == "" {
		return nil, ErrNoTarget
	}
	key := "inbound:" + delegateeID + ":" + fieldID
	v, err, _ := s.sf.Do(key, func() (any, error) {
		return s.api.Inbound(ctx, delegateeID, fieldID)
	})
	if err != nil {
		s.log.Warn("inbound load failed", "delegatee", delegateeID, "error", err)
		return nil, err
	}
	return v.(*api.InboundSummary), nil
}

// Health fetches the platform-wide summary: top delegatees overall and per
// field.
func (s *Service) Health(ctx context.Context) (*api.HealthSummary, error) {
	v, err, _ := s.sf.Do("health", func() (any, error) {
		return s.api.HealthSummary(ctx)
	})
	if err != nil {
		s.log.Warn("health load failed", "error", err)
		return nil, err
	}
	return v.(*api.HealthSummary), nil
}
