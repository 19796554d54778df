package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowsodium/lowsodiumd/internal/clock"
	"github.com/lowsodium/lowsodiumd/internal/config"
	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

const testDelay = int64(86400)

func newTestService(t *testing.T) (*Service, *clock.Manual) {
	t.Helper()

	cfg := &config.Config{
		Owner:         "owner",
		LedgerAccount: "vault",
		DelaySeconds:  testDelay,
		Compression:   "lz4",
		HistoryPath:   ":memory:",
		GRPC:          config.GRPCConfig{Address: "127.0.0.1:0"},
		Genesis: []config.GenesisEntry{
			{Asset: "native", Amount: 100_000},
		},
	}
	require.NoError(t, cfg.Validate())

	clk := clock.NewManual(1_700_000_000)
	svc, err := New(cfg, clk)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, clk
}

func TestServiceGenesisSeedsBalance(t *testing.T) {
	svc, _ := newTestService(t)

	assert.Equal(t, uint64(100_000), svc.Balance(ledger.NativeAsset()))
	assert.Equal(t, uint64(0), svc.Reserved(ledger.NativeAsset()))
}

func TestServiceOrderLifecycle(t *testing.T) {
	svc, clk := newTestService(t)

	snap, res := svc.OrderTransaction("owner", ledger.NativeAsset(), 50_000, "bobby")
	require.Equal(t, ledger.Success, res)
	assert.Equal(t, uint64(1), snap.ID)
	assert.Equal(t, clk.Now()+testDelay, snap.Maturity)

	// Amendment closes at the half-maturity boundary.
	clk.Advance(testDelay / 2)
	_, res = svc.AmendDestination("owner", snap.ID, "alice")
	assert.Equal(t, ledger.AmendWindowClosed, res)

	// Cancellation stays open until maturity.
	clk.Advance(testDelay/2 - 1)
	_, res = svc.FinishTransaction("james", snap.ID)
	assert.Equal(t, ledger.OrderNotMature, res)

	clk.Advance(1)
	finished, res := svc.FinishTransaction("james", snap.ID)
	require.Equal(t, ledger.Success, res)
	assert.Equal(t, "bobby", finished.Destination)

	assert.Equal(t, uint64(50_000), svc.Balance(ledger.NativeAsset()))
	assert.Equal(t, uint64(50_000), svc.Book().Balance("bobby", ledger.NativeAsset()))
}

func TestServiceDeposit(t *testing.T) {
	svc, _ := newTestService(t)

	require.NoError(t, svc.Deposit("james", ledger.NativeAsset(), 5_000))
	assert.Equal(t, uint64(105_000), svc.Balance(ledger.NativeAsset()))

	assert.Error(t, svc.Deposit("james", ledger.NativeAsset(), 0))
}

func TestServiceOrderHistory(t *testing.T) {
	svc, clk := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		svc.archiveEvents(ctx)
	}()

	snap, res := svc.OrderTransaction("owner", ledger.NativeAsset(), 10_000, "bobby")
	require.Equal(t, ledger.Success, res)
	_, res = svc.AmendDestination("owner", snap.ID, "alice")
	require.Equal(t, ledger.Success, res)
	clk.Advance(testDelay)
	_, res = svc.FinishTransaction("james", snap.ID)
	require.Equal(t, ledger.Success, res)

	// Stop the archiver so every published event has been recorded.
	svc.Publisher().Close()
	<-done

	events, err := svc.OrderHistory(context.Background(), snap.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, ledger.EventOrderCreated, events[0].Type)
	assert.Equal(t, ledger.EventOrderAmended, events[1].Type)
	assert.Equal(t, ledger.EventOrderFinished, events[2].Type)
	assert.Equal(t, "alice", events[2].Destination)
}
