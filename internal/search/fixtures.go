package search

import (
	"strings"

	"commons/client/internal/api"
)

// Built-in candidates served when the backend is unreachable, so the
// composer keeps working offline and in early development. Substring match
// on display name or label only.

func trust(v float64) *float64 { return &v }

var fixturePeople = []api.PersonCandidate{
	{ID: "u_alice", DisplayName: "Alice Nakamura", Bio: "Environmental policy researcher", TrustScore: trust(0.92), Domains: []string{"environment", "energy"}},
	{ID: "u_bruno", DisplayName: "Bruno Okafor", Bio: "Budget working group convener", TrustScore: trust(0.85), Domains: []string{"budget"}},
	{ID: "u_carmen", DisplayName: "Carmen Silva", Bio: "Housing cooperative organizer", TrustScore: trust(0.78), Domains: []string{"housing"}},
	{ID: "u_dieter", DisplayName: "Dieter Hoffmann", Bio: "Open infrastructure maintainer", TrustScore: trust(0.81), Domains: []string{"infrastructure", "technology"}},
	{ID: "u_esther", DisplayName: "Esther Mwangi", Bio: "Public health advocate", TrustScore: trust(0.88), Domains: []string{"health", "education"}},
}

var fixtureFields = []api.FieldCandidate{
	{ID: "d_env", Key: "environment", Label: "Environment", Description: "Climate, conservation, and land use"},
	{ID: "d_budget", Key: "budget", Label: "Budget", Description: "Community budget allocation"},
	{ID: "d_housing", Key: "housing", Label: "Housing", Description: "Housing policy and zoning"},
	{ID: "d_infra", Key: "infrastructure", Label: "Infrastructure", Description: "Shared infrastructure and technology"},
	{ID: "d_health", Key: "health", Label: "Health", Description: "Public health and care"},
}

func filterFixturePeople(query string) []api.PersonCandidate {
	needle := strings.ToLower(query)
	out := []api.PersonCandidate{}
	for _, p := range fixturePeople {
		if strings.Contains(strings.ToLower(p.DisplayName), needle) {
			out = append(out, p)
		}
	}
	return out
}

func filterFixtureFields(query string) []api.FieldCandidate {
	needle := strings.ToLower(query)
	out := []api.FieldCandidate{}
	for _, f := range fixtureFields {
		if strings.Contains(strings.ToLower(f.Label), needle) || strings.Contains(strings.ToLower(f.Key), needle) {
			out = append(out, f)
		}
	}
	return out
}
