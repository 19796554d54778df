// Package ledger implements a single-owner, multi-asset, time-delayed
// payment queue. The owner schedules future transfers, may redirect or cancel
// them within bounded time windows, and any party may trigger settlement once
// a transfer has matured.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Mover moves value of one asset between holdings. The ledger settles mature
// orders through it. A Move either fully succeeds or returns an error with no
// partial effect; native currency and token contracts sit behind the same
// interface with distinct transfer strategies.
type Mover interface {
	// Move transfers amount of asset from one account to another.
	Move(from, to string, asset Asset, amount uint64) error

	// Balance returns the current holdings of account in asset.
	Balance(account string, asset Asset) uint64
}

// Ledger is one deployed payment queue instance. Construction fixes the
// owner, the ledger's own account identity, and the delay applied to every
// order. Every operation is an atomic, serialized transaction against the
// instance; distinct instances share no state.
type Ledger struct {
	mu sync.Mutex

	owner   string
	account string
	delay   int64

	allowZeroAmount bool

	reg  *registry
	bank Mover
	pub  Publisher
}

// Option configures a Ledger at construction.
type Option func(*Ledger)

// WithPublisher routes the event snapshot of every successful mutation to p.
func WithPublisher(p Publisher) Option {
	return func(l *Ledger) {
		l.pub = p
	}
}

// WithAllowZeroAmount permits orders with amount 0. The default is to reject
// them.
func WithAllowZeroAmount() Option {
	return func(l *Ledger) {
		l.allowZeroAmount = true
	}
}

// New creates a ledger owned by owner, holding funds under account, with the
// given maturity delay in seconds.
func New(owner, account string, delaySeconds int64, bank Mover, opts ...Option) *Ledger {
	l := &Ledger{
		owner:   owner,
		account: account,
		delay:   delaySeconds,
		bank:    bank,
		pub:     NoOpPublisher{},
	}
	l.reg = newRegistry(func(a Asset) uint64 {
		return bank.Balance(account, a)
	})
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Owner returns the ledger owner identity.
func (l *Ledger) Owner() string { return l.owner }

// Account returns the ledger's own account identity.
func (l *Ledger) Account() string { return l.account }

// Delay returns the maturity window length in seconds.
func (l *Ledger) Delay() int64 { return l.delay }

// OrderTransaction schedules a transfer of amount of asset to destination,
// maturing delay seconds from ctx.Now. Only the owner may order; the
// destination may not be the ledger itself; the amount must fit inside the
// unreserved balance for that asset. On success the order id is assigned
// monotonically starting at 1 and an OrderCreated snapshot is emitted.
func (l *Ledger) OrderTransaction(ctx OpContext, asset Asset, amount uint64, destination string) (Snapshot, Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ctx.Caller != l.owner {
		return Snapshot{}, Unauthorized
	}
	if destination == l.account {
		return Snapshot{}, InvalidDestination
	}
	if amount == 0 && !l.allowZeroAmount {
		return Snapshot{}, InvalidAmount
	}
	if res := l.reg.reserve(asset, amount); !res.IsSuccess() {
		return Snapshot{}, res
	}

	o := &Order{
		ID:          l.reg.allocID(),
		Owner:       l.owner,
		Asset:       asset,
		Amount:      amount,
		Destination: destination,
		CreatedAt:   ctx.Now,
		Maturity:    ctx.Now + l.delay,
	}
	l.reg.insert(o)

	snap := o.Snapshot()
	l.pub.Publish(Event{Type: EventOrderCreated, Snapshot: snap})
	return snap, Success
}

// AmendDestination replaces the destination of a pending order. Permitted to
// the owner only, and only while the order is fresh (before the half-maturity
// boundary). Amount, asset and maturity are untouched.
func (l *Ledger) AmendDestination(ctx OpContext, id uint64, destination string) (Snapshot, Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ctx.Caller != l.owner {
		return Snapshot{}, Unauthorized
	}
	o, ok := l.reg.get(id)
	if !ok {
		return Snapshot{}, OrderNotFound
	}
	if TierAt(ctx.Now, o.CreatedAt, o.Maturity, l.delay) != TierFresh {
		return Snapshot{}, AmendWindowClosed
	}
	if destination == l.account {
		return Snapshot{}, InvalidDestination
	}

	o.Destination = destination

	snap := o.Snapshot()
	l.pub.Publish(Event{Type: EventOrderAmended, Snapshot: snap})
	return snap, Success
}

// CancelTransaction removes a pending order and releases its reservation.
// Permitted to the owner only, and only before maturity. No asset moves, so
// the held balance is unchanged. The emitted snapshot is the order as it
// stood before removal.
func (l *Ledger) CancelTransaction(ctx OpContext, id uint64) (Snapshot, Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if ctx.Caller != l.owner {
		return Snapshot{}, Unauthorized
	}
	o, ok := l.reg.get(id)
	if !ok {
		return Snapshot{}, OrderNotFound
	}
	if TierAt(ctx.Now, o.CreatedAt, o.Maturity, l.delay) == TierMature {
		return Snapshot{}, OrderMatured
	}

	l.reg.remove(id)
	l.reg.release(o.Asset, o.Amount)

	snap := o.Snapshot()
	l.pub.Publish(Event{Type: EventOrderCancelled, Snapshot: snap})
	return snap, Success
}

// FinishTransaction settles a mature order: it moves the reserved amount to
// the recorded destination, releases the reservation, and removes the order.
// There is no caller restriction; settlement is a public trigger so any
// interested party can realize a mature payment. If the transfer fails the
// order is left pending and reserved, and a later FinishTransaction on the
// same id is the retry path.
func (l *Ledger) FinishTransaction(ctx OpContext, id uint64) (Snapshot, Result) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.reg.get(id)
	if !ok {
		return Snapshot{}, OrderNotFound
	}
	if TierAt(ctx.Now, o.CreatedAt, o.Maturity, l.delay) != TierMature {
		return Snapshot{}, OrderNotMature
	}

	if err := l.bank.Move(l.account, o.Destination, o.Asset, o.Amount); err != nil {
		return Snapshot{}, AssetTransferFailed
	}

	l.reg.remove(id)
	l.reg.release(o.Asset, o.Amount)

	snap := o.Snapshot()
	l.pub.Publish(Event{Type: EventOrderFinished, Snapshot: snap})
	return snap, Success
}

// Get returns the snapshot of a pending order without mutating anything.
func (l *Ledger) Get(id uint64) (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	o, ok := l.reg.get(id)
	if !ok {
		return Snapshot{}, false
	}
	return o.Snapshot(), true
}

// Reserved returns the total amount of asset earmarked for pending orders.
func (l *Ledger) Reserved(asset Asset) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.reservedFor(asset)
}

// Pending returns copies of all pending orders, sorted by id.
func (l *Ledger) Pending() []Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Order, 0, l.reg.pendingCount())
	for _, o := range l.reg.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextID returns the id the next order will receive.
func (l *Ledger) NextID() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reg.nextID
}

// Restore loads previously persisted pending orders and the id counter into
// an empty ledger, rebuilding reservations. It fails if a restored
// reservation would exceed the current held balance or if an id collides.
func (l *Ledger) Restore(orders []Order, nextID uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.reg.pendingCount() != 0 {
		return errors.New("restore into non-empty ledger")
	}
	for i := range orders {
		o := orders[i]
		if _, exists := l.reg.get(o.ID); exists {
			return fmt.Errorf("duplicate order id %d", o.ID)
		}
		if res := l.reg.reserve(o.Asset, o.Amount); !res.IsSuccess() {
			return fmt.Errorf("order %d: reservation exceeds held balance of %s", o.ID, o.Asset)
		}
		l.reg.insert(&o)
		if o.ID >= l.reg.nextID {
			l.reg.nextID = o.ID + 1
		}
	}
	if nextID > l.reg.nextID {
		l.reg.nextID = nextID
	}
	return nil
}
