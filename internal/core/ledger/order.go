package ledger

// Order is a scheduled, single-destination, single-asset future transfer
// awaiting maturity. Orders exist only while pending: cancel and finish both
// remove the record, and a removed id is never reissued.
type Order struct {
	// ID is the unique positive identifier assigned at creation. 0 is the
	// "no such order" sentinel and is never issued.
	ID uint64

	// Owner is the ledger owner at creation time. Informational; every
	// owner-gated operation re-checks the ledger's current owner.
	Owner string

	// Asset is what the order pays out.
	Asset Asset

	// Amount is the quantity reserved for the transfer.
	Amount uint64

	// Destination receives Amount of Asset on settlement.
	Destination string

	// CreatedAt is the timestamp the order was placed.
	CreatedAt int64

	// Maturity is CreatedAt + delay, fixed at creation.
	Maturity int64
}

// Snapshot is the point-in-time view of an order emitted with every mutation.
// The field set mirrors the emitted event arguments:
// {owner, id, maturity, asset, amount, destination}.
type Snapshot struct {
	Owner       string `json:"owner"`
	ID          uint64 `json:"id"`
	Maturity    int64  `json:"maturity"`
	Asset       string `json:"asset"`
	Amount      uint64 `json:"amount"`
	Destination string `json:"destination"`
}

// Snapshot returns the order's current snapshot.
func (o *Order) Snapshot() Snapshot {
	return Snapshot{
		Owner:       o.Owner,
		ID:          o.ID,
		Maturity:    o.Maturity,
		Asset:       o.Asset.String(),
		Amount:      o.Amount,
		Destination: o.Destination,
	}
}
