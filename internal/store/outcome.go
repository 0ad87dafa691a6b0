package store

// OutcomeKind discriminates how a mutation settled against the remote
// service. Local durability is never in question by the time an
// outcome exists; the kind only describes the remote side.
type OutcomeKind int

const (
	// OutcomeSynced means the remote accepted the write.
	OutcomeSynced OutcomeKind = iota
	// OutcomeLocalOnly means the write is durable locally but did not
	// reach the remote (no session, or the call failed).
	OutcomeLocalOnly
	// OutcomeConflict means the remote rejected a round update and the
	// local edit was preserved as a fork under a new id.
	OutcomeConflict
)

// SyncOutcome is the tagged result returned by every mutation so
// callers switch on Kind instead of inspecting error types.
type SyncOutcome struct {
	Kind     OutcomeKind
	Reason   string // set when Kind == OutcomeLocalOnly
	ForkedID string // set when Kind == OutcomeConflict
}

func synced() SyncOutcome {
	return SyncOutcome{Kind: OutcomeSynced}
}

func localOnly(reason string) SyncOutcome {
	return SyncOutcome{Kind: OutcomeLocalOnly, Reason: reason}
}

func conflictOutcome(forkedID string) SyncOutcome {
	return SyncOutcome{Kind: OutcomeConflict, ForkedID: forkedID}
}
