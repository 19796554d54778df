package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

// stubService scripts LedgerService responses for handler tests.
type stubService struct {
	snap    ledger.Snapshot
	res     ledger.Result
	found   bool
	pending []ledger.Order
	events  []ledger.Event

	lastCaller string
}

func (s *stubService) OrderTransaction(caller string, asset ledger.Asset, amount uint64, destination string) (ledger.Snapshot, ledger.Result) {
	s.lastCaller = caller
	return s.snap, s.res
}

func (s *stubService) AmendDestination(caller string, id uint64, destination string) (ledger.Snapshot, ledger.Result) {
	s.lastCaller = caller
	return s.snap, s.res
}

func (s *stubService) CancelTransaction(caller string, id uint64) (ledger.Snapshot, ledger.Result) {
	s.lastCaller = caller
	return s.snap, s.res
}

func (s *stubService) FinishTransaction(caller string, id uint64) (ledger.Snapshot, ledger.Result) {
	s.lastCaller = caller
	return s.snap, s.res
}

func (s *stubService) GetOrder(id uint64) (ledger.Snapshot, bool) {
	return s.snap, s.found
}

func (s *stubService) PendingOrders() []ledger.Order {
	return s.pending
}

func (s *stubService) Deposit(from string, asset ledger.Asset, amount uint64) error {
	return nil
}

func (s *stubService) Balance(asset ledger.Asset) uint64  { return 100 }
func (s *stubService) Reserved(asset ledger.Asset) uint64 { return 30 }

func (s *stubService) OrderHistory(ctx context.Context, id uint64) ([]ledger.Event, error) {
	return s.events, nil
}

func newTestServer(t *testing.T, svc LedgerService) *Server {
	t.Helper()
	s, err := NewServer(DefaultServerConfig(), svc)
	require.NoError(t, err)
	return s
}

func TestOrderTransactionHandler(t *testing.T) {
	svc := &stubService{
		snap: ledger.Snapshot{Owner: "owner", ID: 1, Maturity: 87_400, Asset: "native", Amount: 50_000, Destination: "bobby"},
		res:  ledger.Success,
	}
	s := newTestServer(t, svc)

	resp, err := s.OrderTransaction(context.Background(), &OrderTransactionRequest{
		Caller:      "owner",
		Asset:       "native",
		Amount:      50_000,
		Destination: "bobby",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner", svc.lastCaller)
	assert.Equal(t, uint64(1), resp.Order.ID)
	assert.Equal(t, "bobby", resp.Order.Destination)
}

func TestHandlerResultToStatusCode(t *testing.T) {
	tests := []struct {
		res  ledger.Result
		code codes.Code
	}{
		{ledger.Unauthorized, codes.PermissionDenied},
		{ledger.InvalidDestination, codes.InvalidArgument},
		{ledger.InvalidAmount, codes.InvalidArgument},
		{ledger.InsufficientAvailableBalance, codes.FailedPrecondition},
		{ledger.OrderNotFound, codes.NotFound},
		{ledger.AmendWindowClosed, codes.FailedPrecondition},
		{ledger.OrderMatured, codes.FailedPrecondition},
		{ledger.OrderNotMature, codes.FailedPrecondition},
		{ledger.AssetTransferFailed, codes.Aborted},
		{ledger.Internal, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.res.String(), func(t *testing.T) {
			svc := &stubService{res: tt.res}
			s := newTestServer(t, svc)

			_, err := s.CancelTransaction(context.Background(), &CancelTransactionRequest{Caller: "owner", ID: 1})
			require.Error(t, err)

			st, ok := status.FromError(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, st.Code())
			assert.Equal(t, tt.res.Message(), st.Message())
		})
	}
}

func TestGetOrderHandler(t *testing.T) {
	svc := &stubService{
		snap:  ledger.Snapshot{Owner: "owner", ID: 3, Asset: "native", Amount: 10, Destination: "bobby"},
		found: true,
	}
	s := newTestServer(t, svc)

	resp, err := s.GetOrder(context.Background(), &GetOrderRequest{ID: 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), resp.Order.ID)

	svc.found = false
	_, err = s.GetOrder(context.Background(), &GetOrderRequest{ID: 4})
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.NotFound, st.Code())
}

func TestListOrdersHandler(t *testing.T) {
	svc := &stubService{
		pending: []ledger.Order{
			{ID: 1, Owner: "owner", Amount: 10, Destination: "bobby"},
			{ID: 2, Owner: "owner", Amount: 20, Destination: "alice"},
		},
	}
	s := newTestServer(t, svc)

	resp, err := s.ListOrders(context.Background(), &ListOrdersRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Orders, 2)
	assert.Equal(t, uint64(1), resp.Orders[0].ID)
	assert.Equal(t, "alice", resp.Orders[1].Destination)
}

func TestGetBalanceHandler(t *testing.T) {
	s := newTestServer(t, &stubService{})

	resp, err := s.GetBalance(context.Background(), &GetBalanceRequest{Asset: "native"})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), resp.Held)
	assert.Equal(t, uint64(30), resp.Reserved)
	assert.Equal(t, uint64(70), resp.Available)
}

func TestHandlersWithoutService(t *testing.T) {
	s := newTestServer(t, nil)

	_, err := s.OrderTransaction(context.Background(), &OrderTransactionRequest{})
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
}

func TestServerConfigValidate(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())

	cfg.Address = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultServerConfig()
	cfg.Address = "no-port"
	assert.Error(t, cfg.Validate())

	cfg = DefaultServerConfig()
	cfg.MaxRecvMsgSize = 0
	assert.Error(t, cfg.Validate())
}
