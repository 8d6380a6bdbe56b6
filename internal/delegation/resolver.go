package delegation

// StatusMode says which scope won the display decision.
type StatusMode string

const (
	StatusPoll   StatusMode = "poll"
	StatusGlobal StatusMode = "global"
	StatusSelf   StatusMode = "self"
)

// Status is the single display decision for a badge, banner, or panel.
type Status struct {
	Mode       StatusMode
	Delegation *Delegation // nil when Mode == StatusSelf
	Chain      Chain
	Path       string // arrow-joined hop names, empty when voting for self
	Depth      int
}

// Resolve picks the delegation to display given every stored snapshot and
// an optional poll context. Priority: a poll-scoped active delegation for
// that poll, then the global one, then "votes for self". It is a pure
// function of its inputs so context switches always reflect current state.
func Resolve(snapshots []Snapshot, pollID string) Status {
	if pollID != "" {
		if snap, ok := findActive(snapshots, PollKey(pollID)); ok {
			return statusFor(StatusPoll, snap)
		}
	}
	if snap, ok := findActive(snapshots, GlobalKey()); ok {
		return statusFor(StatusGlobal, snap)
	}
	return Status{Mode: StatusSelf}
}

func findActive(snapshots []Snapshot, key Key) (Snapshot, bool) {
	for _, snap := range snapshots {
		if snap.Key == key && snap.ActiveDelegation() != nil {
			return snap, true
		}
	}
	return Snapshot{}, false
}

func statusFor(mode StatusMode, snap Snapshot) Status {
	return Status{
		Mode:       mode,
		Delegation: snap.Delegation,
		Chain:      snap.Chain,
		Path:       snap.Chain.Display(),
		Depth:      snap.Chain.Depth(),
	}
}
