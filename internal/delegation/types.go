// Package delegation holds the client-side delegation state: the domain
// types, the process-wide store, the optimistic mutation coordinator, and
// the display resolution over snapshots. Chains, warnings, and health
// figures are computed by the backend; this package only carries them.
package delegation

import (
	"strings"
	"time"

	"commons/client/internal/api"
	"commons/client/internal/util"
)

// Scope is the breadth of a delegation.
type Scope string

const (
	// ScopeGlobal covers all decisions ("traditional" delegation).
	ScopeGlobal Scope = "global"
	// ScopePoll covers one specific proposal.
	ScopePoll Scope = "poll"
	// ScopeField covers one topical field.
	ScopeField Scope = "field"
)

// Key identifies the slot that holds at most one active delegation: the
// global slot, one per poll, or one per field.
type Key struct {
	Scope   Scope
	PollID  string // set iff Scope == ScopePoll
	FieldID string // set iff Scope == ScopeField
}

func GlobalKey() Key              { return Key{Scope: ScopeGlobal} }
func PollKey(pollID string) Key   { return Key{Scope: ScopePoll, PollID: pollID} }
func FieldKey(fieldID string) Key { return Key{Scope: ScopeField, FieldID: fieldID} }

// Valid reports whether the key's scope and id fields are consistent.
func (k Key) Valid() bool {
	switch k.Scope {
	case ScopeGlobal:
		return k.PollID == "" && k.FieldID == ""
	case ScopePoll:
		return k.PollID != "" && k.FieldID == ""
	case ScopeField:
		return k.FieldID != "" && k.PollID == ""
	}
	return false
}

func (k Key) String() string {
	switch k.Scope {
	case ScopePoll:
		return "poll:" + k.PollID
	case ScopeField:
		return "field:" + k.FieldID
	}
	return "global"
}

// Hop is one step in a server-resolved chain.
type Hop struct {
	UserID      string
	DisplayName string
}

// Chain is the ordered hop sequence starting at the current user. The
// server is authoritative for its contents and cycle-freedom.
type Chain []Hop

// Depth is the number of hops beyond the origin user; a self-only chain
// has depth 0.
func (c Chain) Depth() int {
	if len(c) <= 1 {
		return 0
	}
	return len(c) - 1
}

// Display joins hop names with an arrow, falling back to a shortened user
// id when a hop has no display name.
func (c Chain) Display() string {
	names := make([]string, len(c))
	for i, hop := range c {
		name := hop.DisplayName
		if name == "" {
			name = util.ShortID(hop.UserID)
		}
		names[i] = name
	}
	return strings.Join(names, " → ")
}

func (c Chain) clone() Chain {
	if c == nil {
		return nil
	}
	out := make(Chain, len(c))
	copy(out, c)
	return out
}

// Delegation is a directed edge from the current user to a delegatee.
type Delegation struct {
	ID                   string
	DelegateeID          string
	DelegateeDisplayName string
	Scope                Scope
	PollID               string
	FieldID              string
	CreatedAt            time.Time
	ExpiresAt            *time.Time
	Active               bool
}

// Snapshot is the stored state for one scope key. A nil Delegation means
// the slot is empty (the user votes directly for that scope).
type Snapshot struct {
	Key        Key
	Delegation *Delegation
	Chain      Chain
}

// ActiveDelegation returns the delegation if it exists and is active.
func (s Snapshot) ActiveDelegation() *Delegation {
	if s.Delegation == nil || !s.Delegation.Active {
		return nil
	}
	return s.Delegation
}

func (s Snapshot) clone() Snapshot {
	out := Snapshot{Key: s.Key, Chain: s.Chain.clone()}
	if s.Delegation != nil {
		d := *s.Delegation
		if d.ExpiresAt != nil {
			exp := *d.ExpiresAt
			d.ExpiresAt = &exp
		}
		out.Delegation = &d
	}
	return out
}

// chainFromWire converts wire hops, dropping nothing.
func chainFromWire(hops []api.Hop) Chain {
	if hops == nil {
		return nil
	}
	out := make(Chain, len(hops))
	for i, h := range hops {
		out[i] = Hop{UserID: h.UserID, DisplayName: h.DisplayName}
	}
	return out
}

func delegationFromWire(d *api.Delegation) *Delegation {
	if d == nil {
		return nil
	}
	return &Delegation{
		ID:                   d.ID,
		DelegateeID:          d.DelegateeID,
		DelegateeDisplayName: d.DelegateeDisplayName,
		Scope:                Scope(d.Scope),
		PollID:               d.PollID,
		FieldID:              d.FieldID,
		CreatedAt:            d.CreatedAt,
		ExpiresAt:            d.ExpiresAt,
		Active:               d.Active,
	}
}

// SnapshotFromWire converts one GET /delegations/me entry.
func SnapshotFromWire(p api.SnapshotPayload) Snapshot {
	key := Key{Scope: Scope(p.Scope), PollID: p.PollID, FieldID: p.FieldID}
	return Snapshot{
		Key:        key,
		Delegation: delegationFromWire(p.Delegation),
		Chain:      chainFromWire(p.Chain),
	}
}
