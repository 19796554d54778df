package grpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

// OrderSnapshot is the wire form of an order snapshot, returned by every
// mutating call and by lookups.
type OrderSnapshot struct {
	// Owner is the queue owner at the time of the operation
	Owner string

	// ID is the order identifier
	ID uint64

	// Maturity is the Unix timestamp at which the order may be finished
	Maturity int64

	// Asset names what the order pays out ("native" or a contract identifier)
	Asset string

	// Amount is the reserved quantity
	Amount uint64

	// Destination receives the amount on settlement
	Destination string
}

func toWire(s ledger.Snapshot) *OrderSnapshot {
	return &OrderSnapshot{
		Owner:       s.Owner,
		ID:          s.ID,
		Maturity:    s.Maturity,
		Asset:       s.Asset,
		Amount:      s.Amount,
		Destination: s.Destination,
	}
}

// OrderTransactionRequest represents a request to schedule a delayed transfer.
type OrderTransactionRequest struct {
	// Caller is the identity placing the order
	Caller string

	// Asset names what to pay out ("native" or a contract identifier)
	Asset string

	// Amount is the quantity to reserve
	Amount uint64

	// Destination receives the amount at settlement
	Destination string
}

// OrderTransactionResponse carries the snapshot of the created order.
type OrderTransactionResponse struct {
	Order *OrderSnapshot
}

// OrderTransaction schedules a new delayed transfer.
func (s *Server) OrderTransaction(ctx context.Context, req *OrderTransactionRequest) (*OrderTransactionResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	snap, res := s.ledgerService.OrderTransaction(req.Caller, ledger.ParseAsset(req.Asset), req.Amount, req.Destination)
	if !res.IsSuccess() {
		return nil, resultError(res)
	}
	return &OrderTransactionResponse{Order: toWire(snap)}, nil
}

// AmendDestinationRequest represents a request to redirect a pending order.
type AmendDestinationRequest struct {
	// Caller is the identity requesting the change
	Caller string

	// ID is the order to amend
	ID uint64

	// Destination is the replacement payout target
	Destination string
}

// AmendDestinationResponse carries the amended order snapshot.
type AmendDestinationResponse struct {
	Order *OrderSnapshot
}

// AmendDestination redirects a fresh pending order to a new destination.
func (s *Server) AmendDestination(ctx context.Context, req *AmendDestinationRequest) (*AmendDestinationResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	snap, res := s.ledgerService.AmendDestination(req.Caller, req.ID, req.Destination)
	if !res.IsSuccess() {
		return nil, resultError(res)
	}
	return &AmendDestinationResponse{Order: toWire(snap)}, nil
}

// CancelTransactionRequest represents a request to cancel a pending order.
type CancelTransactionRequest struct {
	// Caller is the identity requesting cancellation
	Caller string

	// ID is the order to cancel
	ID uint64
}

// CancelTransactionResponse carries the cancelled order's final snapshot.
type CancelTransactionResponse struct {
	Order *OrderSnapshot
}

// CancelTransaction cancels a pending order before maturity.
func (s *Server) CancelTransaction(ctx context.Context, req *CancelTransactionRequest) (*CancelTransactionResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	snap, res := s.ledgerService.CancelTransaction(req.Caller, req.ID)
	if !res.IsSuccess() {
		return nil, resultError(res)
	}
	return &CancelTransactionResponse{Order: toWire(snap)}, nil
}

// FinishTransactionRequest represents a request to settle a mature order.
type FinishTransactionRequest struct {
	// Caller is the identity triggering settlement. Any identity may finish
	// a mature order.
	Caller string

	// ID is the order to settle
	ID uint64
}

// FinishTransactionResponse carries the settled order's final snapshot.
type FinishTransactionResponse struct {
	Order *OrderSnapshot
}

// FinishTransaction settles a mature order.
func (s *Server) FinishTransaction(ctx context.Context, req *FinishTransactionRequest) (*FinishTransactionResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	snap, res := s.ledgerService.FinishTransaction(req.Caller, req.ID)
	if !res.IsSuccess() {
		return nil, resultError(res)
	}
	return &FinishTransactionResponse{Order: toWire(snap)}, nil
}

// GetOrderRequest represents a lookup of one pending order.
type GetOrderRequest struct {
	ID uint64
}

// GetOrderResponse carries the pending order snapshot.
type GetOrderResponse struct {
	Order *OrderSnapshot
}

// GetOrder returns a pending order by id.
func (s *Server) GetOrder(ctx context.Context, req *GetOrderRequest) (*GetOrderResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	snap, ok := s.ledgerService.GetOrder(req.ID)
	if !ok {
		return nil, status.Error(codes.NotFound, ledger.OrderNotFound.Message())
	}
	return &GetOrderResponse{Order: toWire(snap)}, nil
}

// ListOrdersRequest asks for every pending order.
type ListOrdersRequest struct{}

// ListOrdersResponse carries all pending orders in id order.
type ListOrdersResponse struct {
	Orders []*OrderSnapshot
}

// ListOrders returns all pending orders.
func (s *Server) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	pending := s.ledgerService.PendingOrders()
	out := make([]*OrderSnapshot, 0, len(pending))
	for i := range pending {
		snap := pending[i].Snapshot()
		out = append(out, toWire(snap))
	}
	return &ListOrdersResponse{Orders: out}, nil
}

// DepositRequest represents a request to credit the queue's holding account.
type DepositRequest struct {
	// From is the identity sending the funds
	From string

	// Asset names what is being deposited
	Asset string

	// Amount is the quantity to credit
	Amount uint64
}

// DepositResponse carries the resulting held balance for the asset.
type DepositResponse struct {
	Balance uint64
}

// Deposit credits funds to the queue's holding account. Any identity may
// deposit.
func (s *Server) Deposit(ctx context.Context, req *DepositRequest) (*DepositResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	asset := ledger.ParseAsset(req.Asset)
	if err := s.ledgerService.Deposit(req.From, asset, req.Amount); err != nil {
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	return &DepositResponse{Balance: s.ledgerService.Balance(asset)}, nil
}

// GetBalanceRequest asks for the queue account's position in one asset.
type GetBalanceRequest struct {
	Asset string
}

// GetBalanceResponse reports held and reserved amounts. Available is held
// minus reserved.
type GetBalanceResponse struct {
	Held      uint64
	Reserved  uint64
	Available uint64
}

// GetBalance returns the queue account's position in one asset.
func (s *Server) GetBalance(ctx context.Context, req *GetBalanceRequest) (*GetBalanceResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	asset := ledger.ParseAsset(req.Asset)
	held := s.ledgerService.Balance(asset)
	reserved := s.ledgerService.Reserved(asset)
	available := uint64(0)
	if held > reserved {
		available = held - reserved
	}
	return &GetBalanceResponse{Held: held, Reserved: reserved, Available: available}, nil
}

// OrderEvent is the wire form of an archived lifecycle event.
type OrderEvent struct {
	Type  string
	Order *OrderSnapshot
}

// GetOrderHistoryRequest asks for the archived lifecycle of one order.
type GetOrderHistoryRequest struct {
	ID uint64
}

// GetOrderHistoryResponse carries the archived events, oldest first.
type GetOrderHistoryResponse struct {
	Events []*OrderEvent
}

// GetOrderHistory returns the archived events for an order id.
func (s *Server) GetOrderHistory(ctx context.Context, req *GetOrderHistoryRequest) (*GetOrderHistoryResponse, error) {
	if s.ledgerService == nil {
		return nil, status.Error(codes.Internal, "ledger service not available")
	}

	events, err := s.ledgerService.OrderHistory(ctx, req.ID)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out := make([]*OrderEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, &OrderEvent{Type: string(ev.Type), Order: toWire(ev.Snapshot)})
	}
	return &GetOrderHistoryResponse{Events: out}, nil
}
