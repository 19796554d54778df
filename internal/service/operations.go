package service

import (
	"context"
	"fmt"
	"log"

	"github.com/lowsodium/lowsodiumd/internal/core/bank"
	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

// opContext stamps the current clock reading onto a caller identity.
func (s *Service) opContext(caller string) ledger.OpContext {
	return ledger.OpContext{Caller: caller, Now: s.clk.Now()}
}

// persistOrder writes an order's current state through to storage. State
// database failures are logged, not returned: the in-memory ledger already
// applied the operation and stays authoritative for this process.
func (s *Service) persistOrder(id uint64) {
	ctx := context.Background()
	snap, ok := s.ledger.Get(id)
	if !ok {
		if err := s.store.DeleteOrder(ctx, id); err != nil {
			log.Printf("failed to delete order %d from storage: %v", id, err)
		}
		return
	}
	o := ledger.Order{
		ID:          snap.ID,
		Owner:       snap.Owner,
		Asset:       ledger.ParseAsset(snap.Asset),
		Amount:      snap.Amount,
		Destination: snap.Destination,
		Maturity:    snap.Maturity,
		CreatedAt:   snap.Maturity - s.cfg.DelaySeconds,
	}
	if err := s.store.PutOrder(ctx, o); err != nil {
		log.Printf("failed to persist order %d: %v", id, err)
	}
}

func (s *Service) persistNextID() {
	if err := s.store.PutNextID(context.Background(), s.ledger.NextID()); err != nil {
		log.Printf("failed to persist id counter: %v", err)
	}
}

func (s *Service) persistBalance(account string, asset ledger.Asset) {
	amount := s.book.Balance(account, asset)
	if err := s.store.PutBalance(context.Background(), account, asset, amount); err != nil {
		log.Printf("failed to persist balance of %s in %s: %v", account, asset, err)
	}
}

// OrderTransaction schedules a delayed transfer on behalf of caller.
func (s *Service) OrderTransaction(caller string, asset ledger.Asset, amount uint64, destination string) (ledger.Snapshot, ledger.Result) {
	snap, res := s.ledger.OrderTransaction(s.opContext(caller), asset, amount, destination)
	if res.IsSuccess() {
		s.persistOrder(snap.ID)
		s.persistNextID()
	}
	return snap, res
}

// AmendDestination redirects a fresh pending order.
func (s *Service) AmendDestination(caller string, id uint64, destination string) (ledger.Snapshot, ledger.Result) {
	snap, res := s.ledger.AmendDestination(s.opContext(caller), id, destination)
	if res.IsSuccess() {
		s.persistOrder(snap.ID)
	}
	return snap, res
}

// CancelTransaction cancels a pending order before maturity.
func (s *Service) CancelTransaction(caller string, id uint64) (ledger.Snapshot, ledger.Result) {
	snap, res := s.ledger.CancelTransaction(s.opContext(caller), id)
	if res.IsSuccess() {
		s.persistOrder(snap.ID)
	}
	return snap, res
}

// FinishTransaction settles a mature order.
func (s *Service) FinishTransaction(caller string, id uint64) (ledger.Snapshot, ledger.Result) {
	snap, res := s.ledger.FinishTransaction(s.opContext(caller), id)
	if res.IsSuccess() {
		asset := ledger.ParseAsset(snap.Asset)
		s.persistOrder(snap.ID)
		s.persistBalance(s.cfg.LedgerAccount, asset)
		s.persistBalance(snap.Destination, asset)
	}
	return snap, res
}

// GetOrder returns a pending order by id.
func (s *Service) GetOrder(id uint64) (ledger.Snapshot, bool) {
	return s.ledger.Get(id)
}

// PendingOrders returns all pending orders in id order.
func (s *Service) PendingOrders() []ledger.Order {
	return s.ledger.Pending()
}

// Deposit credits funds to the queue's holding account. Any identity may
// deposit.
func (s *Service) Deposit(from string, asset ledger.Asset, amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("deposit amount must be positive")
	}
	if err := s.book.Deposit(s.cfg.LedgerAccount, asset, amount); err != nil {
		return err
	}
	s.persistBalance(s.cfg.LedgerAccount, asset)
	log.Printf("deposit of %d %s from %s", amount, asset, from)
	return nil
}

// Balance returns the queue account's holdings in asset.
func (s *Service) Balance(asset ledger.Asset) uint64 {
	return s.book.Balance(s.cfg.LedgerAccount, asset)
}

// Reserved returns the amount of asset earmarked for pending orders.
func (s *Service) Reserved(asset ledger.Asset) uint64 {
	return s.ledger.Reserved(asset)
}

// OrderHistory returns the archived events for an order, oldest first.
func (s *Service) OrderHistory(ctx context.Context, id uint64) ([]ledger.Event, error) {
	if s.arch == nil {
		return nil, fmt.Errorf("event archive is not enabled")
	}
	return s.arch.ByOrder(ctx, id)
}

// Ledger exposes the underlying ledger, used by the CLI cost report.
func (s *Service) Ledger() *ledger.Ledger {
	return s.ledger
}

// Publisher exposes the event publisher.
func (s *Service) Publisher() *ledger.StreamPublisher {
	return s.pub
}

// Book exposes the balance book, used by the CLI accounts report.
func (s *Service) Book() *bank.Book {
	return s.book
}
