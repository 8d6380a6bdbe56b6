// Package api is the REST transport for The Commons backend. It owns the
// wire contract: bearer-token session headers, JSON encoding, and error
// message extraction. Everything above it works with these DTOs and never
// touches net/http directly.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the current bearer token. Session acquisition and
// refresh are owned by an external collaborator.
type TokenSource func() string

// Options configures a Client. The zero value is usable for tests.
type Options struct {
	HTTPClient *http.Client
	Token      TokenSource
	// OnUnauthorized is invoked once per 401 response so the session
	// collaborator can invalidate itself. The request still fails.
	OnUnauthorized func()
	Logger         *slog.Logger
}

// Client talks to the Commons REST API.
type Client struct {
	baseURL        string
	http           *http.Client
	token          TokenSource
	onUnauthorized func()
	log            *slog.Logger
}

// New creates a Client for the given base URL.
func New(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		http:           httpClient,
		token:          opts.Token,
		onUnauthorized: opts.OnUnauthorized,
		log:            logger.With("component", "api"),
	}
}

// SearchPeople looks up candidate delegatees by free-text query.
func (c *Client) SearchPeople(ctx context.Context, q string) ([]PersonCandidate, error) {
	query := url.Values{"q": {q}}
	var out []PersonCandidate
	if err := c.do(ctx, http.MethodGet, "/search/people", query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []PersonCandidate{}
	}
	return out, nil
}

// SearchFields looks up candidate fields by free-text query.
func (c *Client) SearchFields(ctx context.Context, q string) ([]FieldCandidate, error) {
	query := url.Values{"q": {q}}
	var out []FieldCandidate
	if err := c.do(ctx, http.MethodGet, "/search/fields", query, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []FieldCandidate{}
	}
	return out, nil
}

// CreateDelegation creates or supersedes a delegation for one scope key.
func (c *Client) CreateDelegation(ctx context.Context, req CreateDelegationRequest) (*CreateDelegationResponse, error) {
	var out CreateDelegationResponse
	if err := c.do(ctx, http.MethodPost, "/delegations", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeDelegation removes the active delegation for one scope key.
func (c *Client) RevokeDelegation(ctx context.Context, req RevokeDelegationRequest) error {
	return c.do(ctx, http.MethodDelete, "/delegations", nil, req, nil)
}

// MyDelegations fetches the caller's current snapshots (global and poll).
func (c *Client) MyDelegations(ctx context.Context) (*MyDelegationsResponse, error) {
	var out MyDelegationsResponse
	if err := c.do(ctx, http.MethodGet, "/delegations/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MyChains fetches the caller's delegation chains grouped by field.
func (c *Client) MyChains(ctx context.Context) ([]FieldChains, error) {
	var out []FieldChains
	if err := c.do(ctx, http.MethodGet, "/delegations/me/chain", nil, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []FieldChains{}
	}
	return out, nil
}

// Inbound fetches delegations pointing at a person, optionally filtered by
// field.
func (c *Client) Inbound(ctx context.Context, delegateeID, fieldID string) (*InboundSummary, error) {
	query := url.Values{}
	if fieldID != "" {
		query.Set("fieldId", fieldID)
	}
	path := "/delegations/" + url.PathEscape(delegateeID) + "/inbound"
	var out InboundSummary
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// HealthSummary fetches the platform-wide delegation health aggregate.
func (c *Client) HealthSummary(ctx context.Context) (*HealthSummary, error) {
	var out HealthSummary
	if err := c.do(ctx, http.MethodGet, "/delegations/health/summary", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return &RequestError{Status: resp.StatusCode, Code: "unauthorized", Message: "session expired"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.requestError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// requestError extracts a user-facing message from an error body. The
// backend wraps errors as {"error":{"code","message"}}; some endpoints use
// a bare {"message"}.
func (c *Client) requestError(resp *http.Response) error {
	reqErr := &RequestError{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(raw) > 0 {
		var envelope struct {
			Error *struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &envelope) == nil {
			if envelope.Error != nil {
				reqErr.Code = envelope.Error.Code
				reqErr.Message = envelope.Error.Message
			} else if envelope.Message != "" {
				reqErr.Message = envelope.Message
			}
		}
	}
	if reqErr.Message == "" {
		c.log.Debug("error response without message", "status", resp.StatusCode)
	}
	return reqErr
}
