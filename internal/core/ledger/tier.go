package ledger

// Tier classifies where an order stands inside its delay window. The tier is
// a pure function of the supplied timestamp and the order's fixed window; it
// is recomputed on every call and never stored.
type Tier int

const (
	// TierFresh: before the half-maturity boundary. The owner may amend
	// the destination or cancel.
	TierFresh Tier = iota

	// TierAging: at or past the half-maturity boundary, before maturity.
	// The owner may still cancel; amendment is closed.
	TierAging

	// TierMature: at or past maturity. Anyone may finish; the owner can
	// neither amend nor cancel.
	TierMature
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierFresh:
		return "fresh"
	case TierAging:
		return "aging"
	case TierMature:
		return "mature"
	default:
		return "unknown"
	}
}

// TierAt classifies now against an order's window. The half-maturity boundary
// is createdAt + delay/2 with integer (floor) division, so an odd delay
// rounds the amend window down.
func TierAt(now, createdAt, maturity, delay int64) Tier {
	if now >= maturity {
		return TierMature
	}
	if now >= createdAt+delay/2 {
		return TierAging
	}
	return TierFresh
}
