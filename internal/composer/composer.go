// Package composer drives the delegation creation workflow: scope choice,
// target and field selection, expiry defaulting, validation, and submission
// through the optimistic coordinator.
package composer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"commons/client/internal/api"
	"commons/client/internal/delegation"
)

// State is the composer workflow position. Submission failure returns to
// StateSelectingTarget with the prior selection retained.
type State string

const (
	StateIdle            State = "idle"
	StateSelectingTarget State = "selecting_target"
	StateReviewing       State = "reviewing"
	StateSubmitting      State = "submitting"
	StateSuccess         State = "success"
	StateError           State = "error"
)

// DefaultGlobalExpiry is how far out a traditional delegation expires when
// the user leaves the expiry field empty.
const DefaultGlobalExpiry = 4 * 365 * 24 * time.Hour

// Validation failures, caught before any network call.
var (
	ErrNoTarget       = errors.New("composer: no delegatee selected")
	ErrNoField        = errors.New("composer: field scope requires a selected field")
	ErrSelfDelegation = errors.New("composer: you cannot delegate to yourself")
	ErrNoPollContext  = errors.New("composer: poll scope requires a poll context")
	ErrBusy           = errors.New("composer: submission already in progress")
)

type coordinator interface {
	SubmitCreate(ctx context.Context, req delegation.CreateRequest) (*delegation.Outcome, error)
}

type telemetry interface {
	ComposerOpened(ctx context.Context)
	DelegationCreated(ctx context.Context, scope string)
}

// Result is a settled successful submission.
type Result struct {
	Confirmation string
	Delegation   delegation.Delegation
	Banners      []delegation.Banner
}

// Composer gathers scope, target, and expiry and hands the request to the
// coordinator. Poll scope is only offered when a poll context is present.
type Composer struct {
	coord  coordinator
	tel    telemetry
	selfID string
	pollID string
	now    func() time.Time

	mu      sync.Mutex
	state   State
	scope   delegation.Scope
	target  *api.PersonCandidate
	field   *api.FieldCandidate
	expiry  *time.Time
	lastErr error
}

// Option configures a Composer.
type Option func(*Composer)

// WithPollContext offers poll scope for the given proposal.
func WithPollContext(pollID string) Option {
	return func(c *Composer) { c.pollID = pollID }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Composer) { c.now = now }
}

func New(coord coordinator, tel telemetry, selfID string, opts ...Option) *Composer {
	c := &Composer{
		coord:  coord,
		tel:    tel,
		selfID: selfID,
		now:    time.Now,
		state:  StateIdle,
		scope:  delegation.ScopeGlobal,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open starts the workflow and reports the telemetry event.
func (c *Composer) Open(ctx context.Context) {
	c.mu.Lock()
	if c.state == StateIdle {
		c.state = StateSelectingTarget
	}
	c.mu.Unlock()
	if c.tel != nil {
		c.tel.ComposerOpened(ctx)
	}
}

func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError returns the most recent submission or validation failure.
func (c *Composer) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// PollContext returns the poll id the composer was opened with, if any.
func (c *Composer) PollContext() string { return c.pollID }

// SetScope picks the delegation scope tab.
func (c *Composer) SetScope(scope delegation.Scope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if scope == delegation.ScopePoll && c.pollID == "" {
		return ErrNoPollContext
	}
	c.scope = scope
	return nil
}

func (c *Composer) Scope() delegation.Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

// SelectTarget picks the delegatee. Selecting yourself is rejected here and
// again at submission.
func (c *Composer) SelectTarget(p api.PersonCandidate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p.ID == c.selfID {
		c.lastErr = ErrSelfDelegation
		return ErrSelfDelegation
	}
	target := p
	c.target = &target
	if c.state == StateIdle {
		c.state = StateSelectingTarget
	}
	return nil
}

func (c *Composer) Target() *api.PersonCandidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// SelectField picks the field for field-scoped delegations.
func (c *Composer) SelectField(f api.FieldCandidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	field := f
	c.field = &field
}

func (c *Composer) Field() *api.FieldCandidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.field
}

// SetExpiry sets an explicit expiry; nil clears it back to the default.
func (c *Composer) SetExpiry(t *time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiry = t
}

// EffectiveExpiry is what submission will send: the explicit value when
// set; otherwise traditional scope defaults to four years out and field
// scope means "no expiry".
func (c *Composer) EffectiveExpiry() *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveExpiryLocked()
}

func (c *Composer) effectiveExpiryLocked() *time.Time {
	if c.expiry != nil {
		return c.expiry
	}
	if c.scope == delegation.ScopeGlobal {
		exp := c.now().Add(DefaultGlobalExpiry)
		return &exp
	}
	return nil
}

// Review validates the current selection and moves to the review step.
func (c *Composer) Review() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.validateLocked(); err != nil {
		c.lastErr = err
		return err
	}
	c.state = StateReviewing
	return nil
}

func (c *Composer) validateLocked() error {
	if c.target == nil {
		return ErrNoTarget
	}
	if c.target.ID == c.selfID {
		return ErrSelfDelegation
	}
	switch c.scope {
	case delegation.ScopeField:
		if c.field == nil {
			return ErrNoField
		}
	case delegation.ScopePoll:
		if c.pollID == "" {
			return ErrNoPollContext
		}
	}
	return nil
}

// Submit validates and hands the request to the coordinator. The composer
// refuses re-entrant submits until the coordinator settles. On failure the
// prior selection is retained and the state returns to selecting_target.
func (c *Composer) Submit(ctx context.Context) (*Result, error) {
	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	if err := c.validateLocked(); err != nil {
		c.lastErr = err
		c.mu.Unlock()
		return nil, err
	}
	req := delegation.CreateRequest{
		Key:                  c.keyLocked(),
		DelegateeID:          c.target.ID,
		DelegateeDisplayName: c.target.DisplayName,
		Expiry:               c.effectiveExpiryLocked(),
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	outcome, err := c.coord.SubmitCreate(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateSelectingTarget // selection retained for retry
		c.lastErr = err
		return nil, err
	}
	c.state = StateSuccess
	c.lastErr = nil

	if c.tel != nil {
		c.tel.DelegationCreated(ctx, string(req.Key.Scope))
	}
	return &Result{
		Confirmation: c.confirmationLocked(outcome.Delegation),
		Delegation:   outcome.Delegation,
		Banners:      delegation.EvaluateWarnings(outcome.Warnings),
	}, nil
}

func (c *Composer) keyLocked() delegation.Key {
	switch c.scope {
	case delegation.ScopeField:
		return delegation.FieldKey(c.field.ID)
	case delegation.ScopePoll:
		return delegation.PollKey(c.pollID)
	default:
		return delegation.GlobalKey()
	}
}

func (c *Composer) confirmationLocked(d delegation.Delegation) string {
	name := d.DelegateeDisplayName
	if name == "" {
		name = d.DelegateeID
	}
	switch c.scope {
	case delegation.ScopeField:
		return fmt.Sprintf("Now delegating to %s for %s.", name, c.field.Label)
	case delegation.ScopePoll:
		return fmt.Sprintf("Now delegating to %s for this poll.", name)
	default:
		return fmt.Sprintf("Now delegating to %s for all decisions.", name)
	}
}
