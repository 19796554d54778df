package ledger

// OpContext carries the per-call inputs the ledger does not own: the calling
// identity and the current time. Both are trusted, externally supplied values
// (authentication and clock reading vary by hosting environment). Supplying
// them per call keeps every operation deterministic: a test can hold one
// timestamp across a batch of assertions and then advance it explicitly to
// cross a tier boundary.
type OpContext struct {
	// Caller is the identity invoking the operation.
	Caller string

	// Now is the current Unix timestamp in seconds.
	Now int64
}
