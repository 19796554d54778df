// Package service wires the core ledger to its storage, event and transport
// layers and exposes the operations the gRPC handlers call.
package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/lowsodium/lowsodiumd/internal/clock"
	"github.com/lowsodium/lowsodiumd/internal/config"
	"github.com/lowsodium/lowsodiumd/internal/core/bank"
	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
	grpcserver "github.com/lowsodium/lowsodiumd/internal/grpc"
	"github.com/lowsodium/lowsodiumd/internal/rpc"
	"github.com/lowsodium/lowsodiumd/internal/storage/database"
	"github.com/lowsodium/lowsodiumd/internal/storage/database/pebble"
	"github.com/lowsodium/lowsodiumd/internal/storage/history"
	"github.com/lowsodium/lowsodiumd/internal/storage/ledgerstore"
)

// Service owns the daemon's runtime components: the ledger, the balance
// book, persistence, the event publisher and the network servers.
type Service struct {
	cfg *config.Config
	clk clock.Clock

	book   *bank.Book
	ledger *ledger.Ledger
	store  *ledgerstore.Store
	arch   *history.Archive
	pub    *ledger.StreamPublisher

	archEvents <-chan ledger.Event

	dbManager  *pebble.Manager
	grpcServer *grpcserver.Server
	feed       *rpc.FeedServer
}

// New builds a service from configuration: it opens the state database,
// restores persisted balances and orders, and constructs the servers.
func New(cfg *config.Config, clk clock.Clock) (*Service, error) {
	s := &Service{
		cfg:  cfg,
		clk:  clk,
		book: bank.NewBook(),
		pub:  ledger.NewStreamPublisher(),
	}

	var db database.DB
	if cfg.DatabasePath == "" {
		db = database.NewMemoryDB()
	} else {
		s.dbManager = pebble.NewManager(cfg.DatabasePath)
		opened, err := s.dbManager.OpenDB("state")
		if err != nil {
			return nil, fmt.Errorf("open state database: %w", err)
		}
		db = opened
	}

	store, err := ledgerstore.New(db, cfg.Compression)
	if err != nil {
		return nil, err
	}
	s.store = store

	if err := s.restore(context.Background()); err != nil {
		return nil, err
	}

	if cfg.HistoryPath != "" {
		arch, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, err
		}
		s.arch = arch
		// Subscribe now so no event published before Run slips past the
		// archive.
		s.archEvents, _ = s.pub.Subscribe(256)
	}

	gs, err := grpcserver.NewServer(&grpcserver.ServerConfig{
		Address:        cfg.GRPC.Address,
		MaxRecvMsgSize: 4 * 1024 * 1024,
		MaxSendMsgSize: 4 * 1024 * 1024,
	}, s)
	if err != nil {
		return nil, fmt.Errorf("build grpc server: %w", err)
	}
	s.grpcServer = gs

	if cfg.Feed.Enabled {
		s.feed = rpc.NewFeedServer(s.pub)
	}

	return s, nil
}

// restore loads persisted balances and pending orders into fresh in-memory
// state. A database with no balances gets the configured genesis holdings.
func (s *Service) restore(ctx context.Context) error {
	balances, err := s.store.Balances(ctx)
	if err != nil {
		return fmt.Errorf("load balances: %w", err)
	}
	if len(balances) == 0 {
		for _, g := range s.cfg.Genesis {
			asset := ledger.ParseAsset(g.Asset)
			if err := s.book.Deposit(s.cfg.LedgerAccount, asset, g.Amount); err != nil {
				return fmt.Errorf("seed genesis balance: %w", err)
			}
			if err := s.store.PutBalance(ctx, s.cfg.LedgerAccount, asset, s.book.Balance(s.cfg.LedgerAccount, asset)); err != nil {
				return fmt.Errorf("persist genesis balance: %w", err)
			}
		}
	} else {
		for _, b := range balances {
			if err := s.book.Deposit(b.Account, b.Asset, b.Amount); err != nil {
				return fmt.Errorf("restore balance of %s: %w", b.Account, err)
			}
		}
	}

	var opts []ledger.Option
	opts = append(opts, ledger.WithPublisher(s.pub))
	if s.cfg.AllowZeroAmount {
		opts = append(opts, ledger.WithAllowZeroAmount())
	}
	s.ledger = ledger.New(s.cfg.Owner, s.cfg.LedgerAccount, s.cfg.DelaySeconds, s.book, opts...)

	orders, err := s.store.Orders(ctx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	nextID, err := s.store.NextID(ctx)
	if err != nil {
		return fmt.Errorf("load id counter: %w", err)
	}
	if err := s.ledger.Restore(orders, nextID); err != nil {
		return fmt.Errorf("restore ledger: %w", err)
	}
	return nil
}

// Run starts the servers and the event archiver, blocking until ctx is
// cancelled or a component fails.
func (s *Service) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if err := s.grpcServer.StartAsync(); err != nil {
		return fmt.Errorf("start grpc server: %w", err)
	}
	log.Printf("gRPC server listening on %s", s.grpcServer.Address())

	g.Go(func() error {
		<-ctx.Done()
		s.grpcServer.Stop()
		return nil
	})

	if s.feed != nil {
		g.Go(func() error {
			return s.feed.Run(ctx)
		})
		g.Go(func() error {
			log.Printf("event feed listening on %s", s.cfg.Feed.Address)
			return s.feed.Listen(s.cfg.Feed.Address)
		})
		g.Go(func() error {
			<-ctx.Done()
			return s.feed.Shutdown(context.Background())
		})
	}

	if s.arch != nil {
		g.Go(func() error {
			return s.archiveEvents(ctx)
		})
	}

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// archiveEvents copies published events into the history archive.
func (s *Service) archiveEvents(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-s.archEvents:
			if !ok {
				return nil
			}
			if err := s.arch.Record(ctx, ev); err != nil {
				log.Printf("failed to archive event for order %d: %v", ev.ID, err)
			}
		}
	}
}

// Close releases storage resources. Call after Run returns.
func (s *Service) Close() error {
	s.pub.Close()

	var lastErr error
	if s.arch != nil {
		if err := s.arch.Close(); err != nil {
			lastErr = err
		}
	}
	if s.dbManager != nil {
		if err := s.dbManager.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
