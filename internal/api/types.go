package api

import "time"

// PersonCandidate is a delegation target returned by people search.
type PersonCandidate struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Bio         string   `json:"bio,omitempty"`
	AvatarURL   string   `json:"avatarUrl,omitempty"`
	TrustScore  *float64 `json:"trustScore,omitempty"`
	Domains     []string `json:"domains,omitempty"`
}

// FieldCandidate is a topical field returned by field search.
type FieldCandidate struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Trending    bool   `json:"trending,omitempty"`
}

// Hop is one step in a server-resolved delegation chain.
type Hop struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// Delegation is the wire form of a delegation edge.
type Delegation struct {
	ID                   string     `json:"id"`
	DelegateeID          string     `json:"delegateeId"`
	DelegateeDisplayName string     `json:"delegateeDisplayName"`
	Scope                string     `json:"scope"`
	PollID               string     `json:"pollId,omitempty"`
	FieldID              string     `json:"fieldId,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	ExpiresAt            *time.Time `json:"expiresAt,omitempty"`
	Active               bool       `json:"active"`
}

// ConcentrationWarning flags that a large share of a field's delegations
// already point at the chosen delegatee. Level and percent are computed
// server-side and rendered verbatim.
type ConcentrationWarning struct {
	Level   string  `json:"level"` // "warn" or "high"
	Percent float64 `json:"percent"`
}

// SuperDelegateRisk flags a delegatee accumulating outsized influence.
type SuperDelegateRisk struct {
	Reason string `json:"reason"`
}

// Warnings accompany a creation response. They are advisory and transient;
// an absent field means the corresponding banner is not shown.
type Warnings struct {
	Concentration     *ConcentrationWarning `json:"concentration,omitempty"`
	SuperDelegateRisk *SuperDelegateRisk    `json:"superDelegateRisk,omitempty"`
}

// CreateDelegationRequest is the POST /delegations body. Mode "traditional"
// creates a global delegation, "commons" a field-scoped one ("field" is the
// legacy alias the backend still accepts), and "poll" a poll-scoped one.
type CreateDelegationRequest struct {
	Mode        string     `json:"mode"`
	DelegateeID string     `json:"delegatee_id"`
	FieldID     string     `json:"field_id,omitempty"`
	PollID      string     `json:"poll_id,omitempty"`
	Expiry      *time.Time `json:"expiry,omitempty"`
}

// CreateDelegationResponse is the creation result. The chain is the
// server-resolved hop sequence starting at the current user.
type CreateDelegationResponse struct {
	Delegation Delegation `json:"delegation"`
	Chain      []Hop      `json:"chain,omitempty"`
	Warnings   *Warnings  `json:"warnings,omitempty"`
}

// RevokeDelegationRequest is the DELETE /delegations body.
type RevokeDelegationRequest struct {
	Scope   string `json:"scope"`
	PollID  string `json:"poll_id,omitempty"`
	FieldID string `json:"field_id,omitempty"`
}

// SnapshotPayload is one scope entry from GET /delegations/me.
type SnapshotPayload struct {
	Scope      string      `json:"scope"`
	PollID     string      `json:"pollId,omitempty"`
	FieldID    string      `json:"fieldId,omitempty"`
	Delegation *Delegation `json:"delegation"`
	Chain      []Hop       `json:"chain"`
}

// MyDelegationsResponse is the GET /delegations/me envelope.
type MyDelegationsResponse struct {
	Snapshots []SnapshotPayload `json:"snapshots"`
}

// FieldChains groups the caller's resolved chains under one field.
type FieldChains struct {
	FieldID    string  `json:"fieldId"`
	FieldLabel string  `json:"fieldLabel"`
	Chains     [][]Hop `json:"chains"`
}

// InboundDelegation is one recent delegation pointing at a person.
type InboundDelegation struct {
	FromDisplayName string    `json:"fromDisplayName"`
	FieldID         string    `json:"fieldId,omitempty"`
	FieldLabel      string    `json:"fieldLabel,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// InboundSummary is the GET /delegations/:delegateeId/inbound result.
type InboundSummary struct {
	Total   int                 `json:"total"`
	ByField map[string]int      `json:"byField"`
	Recent  []InboundDelegation `json:"recent"`
}

// TopDelegatee is one entry in the platform health summary.
type TopDelegatee struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	Count       int    `json:"count"`
}

// HealthSummary is the GET /delegations/health/summary result.
type HealthSummary struct {
	Overall []TopDelegatee            `json:"overall"`
	ByField map[string][]TopDelegatee `json:"byField"`
}
