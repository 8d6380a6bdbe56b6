package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSearchPeopleSendsBearerTokenAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/people", r.URL.Path)
		require.Equal(t, "alice nak", r.URL.Query().Get("q"))
		require.Equal(t, "Bearer tok_123", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]PersonCandidate{{ID: "u_alice", DisplayName: "Alice Nakamura"}})
	}))
	defer srv.Close()

	client := New(srv.URL, Options{Token: func() string { return "tok_123" }})
	people, err := client.SearchPeople(context.Background(), "alice nak")
	require.NoError(t, err)
	require.Len(t, people, 1)
	require.Equal(t, "u_alice", people[0].ID)
}

func TestSearchFieldsNullBodyBecomesEmptySlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("null"))
	}))
	defer srv.Close()

	client := New(srv.URL, Options{})
	fields, err := client.SearchFields(context.Background(), "env")
	require.NoError(t, err)
	require.NotNil(t, fields)
	require.Empty(t, fields)
}

func TestCreateDelegationRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/delegations", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateDelegationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "commons", req.Mode)
		require.Equal(t, "u_alice", req.DelegateeID)
		require.Equal(t, "d_env", req.FieldID)

		_ = json.NewEncoder(w).Encode(CreateDelegationResponse{
			Delegation: Delegation{ID: "dl_1", DelegateeID: "u_alice", Scope: "field", FieldID: "d_env", Active: true},
			Chain:      []Hop{{UserID: "u_self", DisplayName: "Me"}, {UserID: "u_alice", DisplayName: "Alice Nakamura"}},
			Warnings: &Warnings{
				Concentration: &ConcentrationWarning{Level: "warn", Percent: 0.37},
			},
		})
	}))
	defer srv.Close()

	client := New(srv.URL, Options{})
	resp, err := client.CreateDelegation(context.Background(), CreateDelegationRequest{
		Mode: "commons", DelegateeID: "u_alice", FieldID: "d_env",
	})
	require.NoError(t, err)
	require.Equal(t, "dl_1", resp.Delegation.ID)
	require.Len(t, resp.Chain, 2)
	require.Equal(t, 0.37, resp.Warnings.Concentration.Percent)
}

func TestRevokeDelegationSendsBodyWithDelete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		var req RevokeDelegationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "poll", req.Scope)
		require.Equal(t, "p_7", req.PollID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := New(srv.URL, Options{})
	err := client.RevokeDelegation(context.Background(), RevokeDelegationRequest{Scope: "poll", PollID: "p_7"})
	require.NoError(t, err)
}

func TestErrorEnvelopeExtraction(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nested error envelope",
			status:      http.StatusConflict,
			body:        `{"error":{"code":"cycle_detected","message":"This delegation would create a cycle."}}`,
			wantCode:    "cycle_detected",
			wantMessage: "This delegation would create a cycle.",
		},
		{
			name:        "bare message",
			status:      http.StatusBadRequest,
			body:        `{"message":"field_id is required"}`,
			wantMessage: "field_id is required",
		},
		{
			name:   "unparseable body",
			status: http.StatusInternalServerError,
			body:   "<html>gateway error</html>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := New(srv.URL, Options{})
			_, err := client.MyDelegations(context.Background())

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			require.Equal(t, tt.status, reqErr.Status)
			require.Equal(t, tt.wantCode, reqErr.Code)
			require.Equal(t, tt.wantMessage, reqErr.Message)
		})
	}
}

func TestUnauthorizedInvokesHookOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	var hookCalls int
	client := New(srv.URL, Options{OnUnauthorized: func() { hookCalls++ }})

	_, err := client.MyDelegations(context.Background())
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	require.True(t, reqErr.Unauthorized())
	require.Equal(t, "session expired", reqErr.Message)
	require.Equal(t, 1, hookCalls)
}

func TestInboundEscapesTargetAndFiltersByField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/delegations/u_alice/inbound", r.URL.Path)
		require.Equal(t, "d_env", r.URL.Query().Get("fieldId"))
		_ = json.NewEncoder(w).Encode(InboundSummary{Total: 3})
	}))
	defer srv.Close()

	client := New(srv.URL, Options{})
	summary, err := client.Inbound(context.Background(), "u_alice", "d_env")
	require.NoError(t, err)
	require.Equal(t, 3, summary.Total)
}

func TestTelemetryFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tel := NewTelemetry(New(srv.URL, Options{}), true, nil)
	tel.sent = make(chan struct{}, 1)

	tel.DelegationCreated(context.Background(), "field")
	select {
	case <-tel.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry event never settled")
	}
}

func TestTelemetryDisabledSendsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("disabled telemetry must not reach the network")
	}))
	defer srv.Close()

	tel := NewTelemetry(New(srv.URL, Options{}), false, nil)
	tel.sent = make(chan struct{}, 1)

	tel.ComposerOpened(context.Background())
	select {
	case <-tel.sent:
		t.Fatal("disabled telemetry still posted an event")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTelemetryEventCarriesScope(t *testing.T) {
	got := make(chan telemetryEvent, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/telemetry/delegation-created", r.URL.Path)
		var ev telemetryEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&ev))
		got <- ev
	}))
	defer srv.Close()

	tel := NewTelemetry(New(srv.URL, Options{}), true, nil)
	tel.DelegationCreated(context.Background(), "global")

	select {
	case ev := <-got:
		require.NotEmpty(t, ev.EventID)
		require.False(t, ev.OccurredAt.IsZero())
		require.Equal(t, "global", ev.Scope)
	case <-time.After(2 * time.Second):
		t.Fatal("telemetry event never arrived")
	}
}
