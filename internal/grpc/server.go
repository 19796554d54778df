package grpc

import (
	"context"
	"errors"
	"net"
	"sync"

	"google.golang.org/grpc"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

// LedgerService defines the operations the gRPC handlers need. It is
// implemented by *service.Service.
type LedgerService interface {
	// OrderTransaction schedules a delayed transfer on behalf of caller.
	OrderTransaction(caller string, asset ledger.Asset, amount uint64, destination string) (ledger.Snapshot, ledger.Result)

	// AmendDestination redirects a fresh pending order.
	AmendDestination(caller string, id uint64, destination string) (ledger.Snapshot, ledger.Result)

	// CancelTransaction cancels a pending order before maturity.
	CancelTransaction(caller string, id uint64) (ledger.Snapshot, ledger.Result)

	// FinishTransaction settles a mature order.
	FinishTransaction(caller string, id uint64) (ledger.Snapshot, ledger.Result)

	// GetOrder returns a pending order by id.
	GetOrder(id uint64) (ledger.Snapshot, bool)

	// PendingOrders returns all pending orders in id order.
	PendingOrders() []ledger.Order

	// Deposit credits funds to the queue's holding account.
	Deposit(from string, asset ledger.Asset, amount uint64) error

	// Balance returns the queue account's holdings in asset.
	Balance(asset ledger.Asset) uint64

	// Reserved returns the amount of asset earmarked for pending orders.
	Reserved(asset ledger.Asset) uint64

	// OrderHistory returns the archived events for an order, oldest first.
	OrderHistory(ctx context.Context, id uint64) ([]ledger.Event, error)
}

// Server represents the gRPC server for payment queue operations.
type Server struct {
	mu sync.RWMutex

	// grpcServer is the underlying gRPC server
	grpcServer *grpc.Server

	// ledgerService provides access to queue operations
	ledgerService LedgerService

	// config holds the server configuration
	config *ServerConfig

	// listener is the network listener
	listener net.Listener

	// running indicates if the server is currently running
	running bool
}

// NewServer creates a new gRPC server with the given configuration.
func NewServer(cfg *ServerConfig, ledgerSvc LedgerService) (*Server, error) {
	if cfg == nil {
		cfg = DefaultServerConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxRecvMsgSize),
		grpc.MaxSendMsgSize(cfg.MaxSendMsgSize),
	}

	return &Server{
		grpcServer:    grpc.NewServer(opts...),
		ledgerService: ledgerSvc,
		config:        cfg,
	}, nil
}

// Start starts the gRPC server and begins accepting connections.
// This method blocks until the server is stopped or an error occurs.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	return s.grpcServer.Serve(listener)
}

// StartAsync starts the gRPC server in a goroutine and returns immediately.
func (s *Server) StartAsync() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.listener = listener
	s.running = true
	s.mu.Unlock()

	go func() {
		_ = s.grpcServer.Serve(listener)
	}()

	return nil
}

// Stop gracefully stops the gRPC server.
// It stops accepting new connections and waits for existing connections to complete.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.grpcServer.GracefulStop()
	s.running = false
}

// IsRunning returns true if the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Address returns the address the server is listening on.
// Returns empty string if the server is not running.
func (s *Server) Address() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
