package delegation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePollBeatsGlobal(t *testing.T) {
	snapshots := []Snapshot{
		activeSnapshot(GlobalKey(), "u_bruno", "Bruno Okafor"),
		activeSnapshot(PollKey("p_7"), "u_alice", "Alice Nakamura"),
	}

	status := Resolve(snapshots, "p_7")
	require.Equal(t, StatusPoll, status.Mode)
	require.Equal(t, "u_alice", status.Delegation.DelegateeID)
	require.Equal(t, "Me → Alice Nakamura", status.Path)
	require.Equal(t, 1, status.Depth)
}

func TestResolveOtherPollFallsToGlobal(t *testing.T) {
	snapshots := []Snapshot{
		activeSnapshot(GlobalKey(), "u_bruno", "Bruno Okafor"),
		activeSnapshot(PollKey("p_7"), "u_alice", "Alice Nakamura"),
	}

	status := Resolve(snapshots, "p_9")
	require.Equal(t, StatusGlobal, status.Mode)
	require.Equal(t, "u_bruno", status.Delegation.DelegateeID)
}

func TestResolveNoPollContextUsesGlobal(t *testing.T) {
	snapshots := []Snapshot{
		activeSnapshot(PollKey("p_7"), "u_alice", "Alice Nakamura"),
		activeSnapshot(GlobalKey(), "u_bruno", "Bruno Okafor"),
	}

	status := Resolve(snapshots, "")
	require.Equal(t, StatusGlobal, status.Mode)
}

func TestResolveSelfWhenNothingActive(t *testing.T) {
	status := Resolve(nil, "p_7")
	require.Equal(t, StatusSelf, status.Mode)
	require.Nil(t, status.Delegation)
	require.Empty(t, status.Path)
	require.Zero(t, status.Depth)
}

func TestResolveIgnoresInactiveAndRevokedSlots(t *testing.T) {
	inactive := activeSnapshot(GlobalKey(), "u_bruno", "Bruno Okafor")
	inactive.Delegation.Active = false
	revoked := Snapshot{Key: PollKey("p_7")} // empty slot after a revoke

	status := Resolve([]Snapshot{inactive, revoked}, "p_7")
	require.Equal(t, StatusSelf, status.Mode)
}

func TestResolveIsPureAcrossContextSwitches(t *testing.T) {
	snapshots := []Snapshot{
		activeSnapshot(GlobalKey(), "u_bruno", "Bruno Okafor"),
		activeSnapshot(PollKey("p_7"), "u_alice", "Alice Nakamura"),
	}

	require.Equal(t, StatusPoll, Resolve(snapshots, "p_7").Mode)
	require.Equal(t, StatusGlobal, Resolve(snapshots, "").Mode)
	require.Equal(t, StatusPoll, Resolve(snapshots, "p_7").Mode)
}

func TestChainDisplayFallsBackToShortID(t *testing.T) {
	chain := Chain{
		{UserID: "u_self", DisplayName: "Me"},
		{UserID: "u_9f3d2c81aa", DisplayName: ""},
	}
	require.Equal(t, "Me → u_9f3d2c", chain.Display())
}

func TestChainDepth(t *testing.T) {
	require.Equal(t, 0, Chain(nil).Depth())
	require.Equal(t, 0, Chain{self}.Depth())
	require.Equal(t, 2, Chain{self, {UserID: "a"}, {UserID: "b"}}.Depth())
}
