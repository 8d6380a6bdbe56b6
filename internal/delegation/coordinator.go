package delegation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"commons/client/internal/api"
	"commons/client/internal/util"
)

// ErrMutationInFlight is returned when a second mutation targets a scope
// key whose previous mutation has not settled yet.
var ErrMutationInFlight = errors.New("delegation: mutation already in flight for this scope")

// genericMutationMessage is shown when the backend gave no usable message.
const genericMutationMessage = "Could not update your delegation. Please try again."

// MutationError is a failed create or revoke. The store has already been
// rolled back to its pre-submission snapshot when this is returned.
type MutationError struct {
	Message string // user-facing
	Err     error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("delegation mutation failed: %v", e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }

// CreateRequest describes a delegation creation for one scope key.
type CreateRequest struct {
	Key                  Key
	DelegateeID          string
	DelegateeDisplayName string
	Expiry               *time.Time
}

// Outcome is a confirmed creation. Warnings ride along once and are never
// persisted into the store.
type Outcome struct {
	Delegation Delegation
	Chain      Chain
	Warnings   *Warnings
}

// mutationAPI is the slice of the transport the coordinator needs.
type mutationAPI interface {
	CreateDelegation(ctx context.Context, req api.CreateDelegationRequest) (*api.CreateDelegationResponse, error)
	RevokeDelegation(ctx context.Context, req api.RevokeDelegationRequest) error
}

// Coordinator wraps create/revoke mutations with the optimistic protocol:
// capture the current snapshot, apply a speculative one immediately, then
// confirm with the server response or restore the capture on failure. At
// most one mutation per scope key is in flight at a time.
type Coordinator struct {
	store *Store
	api   mutationAPI
	self  Hop // current user, origin of every speculative chain
	log   *slog.Logger

	mu       sync.Mutex
	inflight map[Key]struct{}
}

func NewCoordinator(store *Store, transport mutationAPI, self Hop, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		store:    store,
		api:      transport,
		self:     self,
		log:      logger.With("component", "coordinator"),
		inflight: make(map[Key]struct{}),
	}
}

// SelfID returns the current user's id, used for self-delegation checks.
func (c *Coordinator) SelfID() string { return c.self.UserID }

// Store exposes the read side of the store the coordinator writes into.
func (c *Coordinator) Store() *Store { return c.store }

// SubmitCreate creates (or supersedes) the delegation for req.Key.
func (c *Coordinator) SubmitCreate(ctx context.Context, req CreateRequest) (*Outcome, error) {
	if !req.Key.Valid() {
		return nil, fmt.Errorf("delegation: invalid scope key %q", req.Key)
	}
	if err := c.begin(req.Key); err != nil {
		return nil, err
	}
	defer c.end(req.Key)

	prior, existed := c.store.Snapshot(req.Key)

	speculative := Snapshot{
		Key: req.Key,
		Delegation: &Delegation{
			ID:                   util.NewID("pending"),
			DelegateeID:          req.DelegateeID,
			DelegateeDisplayName: req.DelegateeDisplayName,
			Scope:                req.Key.Scope,
			PollID:               req.Key.PollID,
			FieldID:              req.Key.FieldID,
			CreatedAt:            time.Now(),
			ExpiresAt:            req.Expiry,
			Active:               true,
		},
		// Best-effort depth-0 chain until the server resolves the real one.
		Chain: Chain{c.self},
	}
	c.store.put(speculative)

	resp, err := c.api.CreateDelegation(ctx, createWireRequest(req))
	if err != nil {
		c.store.restore(req.Key, prior, existed)
		c.log.Warn("create rolled back", "scope", req.Key.String(), "error", err)
		return nil, &MutationError{Message: userMessage(err), Err: err}
	}

	confirmed := Snapshot{
		Key:        req.Key,
		Delegation: delegationFromWire(&resp.Delegation),
		Chain:      chainFromWire(resp.Chain),
	}
	if len(confirmed.Chain) == 0 {
		confirmed.Chain = Chain{c.self, {UserID: req.DelegateeID, DisplayName: req.DelegateeDisplayName}}
	}
	c.store.put(confirmed)
	c.log.Info("delegation created", "scope", req.Key.String(), "delegatee", req.DelegateeID)

	return &Outcome{
		Delegation: *confirmed.Delegation,
		Chain:      confirmed.Chain,
		Warnings:   warningsFromWire(resp.Warnings),
	}, nil
}

// SubmitRevoke removes the active delegation for a scope key.
func (c *Coordinator) SubmitRevoke(ctx context.Context, key Key) error {
	if !key.Valid() {
		return fmt.Errorf("delegation: invalid scope key %q", key)
	}
	if err := c.begin(key); err != nil {
		return err
	}
	defer c.end(key)

	prior, existed := c.store.Snapshot(key)
	c.store.put(Snapshot{Key: key})

	err := c.api.RevokeDelegation(ctx, api.RevokeDelegationRequest{
		Scope:   string(key.Scope),
		PollID:  key.PollID,
		FieldID: key.FieldID,
	})
	if err != nil {
		c.store.restore(key, prior, existed)
		c.log.Warn("revoke rolled back", "scope", key.String(), "error", err)
		return &MutationError{Message: userMessage(err), Err: err}
	}
	c.log.Info("delegation revoked", "scope", key.String())
	return nil
}

func (c *Coordinator) begin(key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[key]; busy {
		return ErrMutationInFlight
	}
	c.inflight[key] = struct{}{}
	return nil
}

func (c *Coordinator) end(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// createWireRequest maps a scope key onto the POST /delegations body.
// Global delegations use mode "traditional", field-scoped use "commons",
// poll-scoped use "poll".
func createWireRequest(req CreateRequest) api.CreateDelegationRequest {
	wire := api.CreateDelegationRequest{
		DelegateeID: req.DelegateeID,
		Expiry:      req.Expiry,
	}
	switch req.Key.Scope {
	case ScopeField:
		wire.Mode = "commons"
		wire.FieldID = req.Key.FieldID
	case ScopePoll:
		wire.Mode = "poll"
		wire.PollID = req.Key.PollID
	default:
		wire.Mode = "traditional"
	}
	return wire
}

func userMessage(err error) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return genericMutationMessage
}
