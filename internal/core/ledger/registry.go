package ledger

// registry is the authoritative store of pending orders and per-asset
// reservation totals. All order mutation goes through it. It holds, for every
// asset A, the invariant
//
//	reserved[A] == sum(Amount of pending orders in A) && reserved[A] <= held balance of A
//
// where the held balance is read live through the balance func, so a deposit
// made between two calls is reflected immediately.
type registry struct {
	orders   map[uint64]*Order
	reserved map[Asset]uint64
	nextID   uint64
	balance  func(Asset) uint64
}

func newRegistry(balance func(Asset) uint64) *registry {
	return &registry{
		orders:   make(map[uint64]*Order),
		reserved: make(map[Asset]uint64),
		nextID:   1,
		balance:  balance,
	}
}

// reserve earmarks amount of asset for a new order. It fails unless the
// current held balance covers the existing reservations plus amount.
func (r *registry) reserve(asset Asset, amount uint64) Result {
	held := r.balance(asset)
	already := r.reserved[asset]
	if held < already || held-already < amount {
		return InsufficientAvailableBalance
	}
	r.reserved[asset] = already + amount
	return Success
}

// release returns amount of asset to the unreserved pool. Called on cancel
// and on finish; finish additionally debits the real balance through the
// transfer adapter.
func (r *registry) release(asset Asset, amount uint64) {
	if r.reserved[asset] <= amount {
		delete(r.reserved, asset)
		return
	}
	r.reserved[asset] -= amount
}

// allocID issues the next order id. Ids start at 1 and are never reused.
func (r *registry) allocID() uint64 {
	id := r.nextID
	r.nextID++
	return id
}

func (r *registry) insert(o *Order) {
	r.orders[o.ID] = o
}

func (r *registry) remove(id uint64) {
	delete(r.orders, id)
}

func (r *registry) get(id uint64) (*Order, bool) {
	o, ok := r.orders[id]
	return o, ok
}

func (r *registry) reservedFor(asset Asset) uint64 {
	return r.reserved[asset]
}

func (r *registry) pendingCount() int {
	return len(r.orders)
}
