package bank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

func TestBookDepositAndBalance(t *testing.T) {
	b := NewBook()

	require.NoError(t, b.Deposit("vault", ledger.NativeAsset(), 100))
	require.NoError(t, b.Deposit("vault", ledger.NativeAsset(), 50))
	assert.Equal(t, uint64(150), b.Balance("vault", ledger.NativeAsset()))

	// Token balances are tracked per contract, apart from native.
	token := ledger.TokenAsset("usd-contract")
	require.NoError(t, b.Deposit("vault", token, 30))
	assert.Equal(t, uint64(30), b.Balance("vault", token))
	assert.Equal(t, uint64(150), b.Balance("vault", ledger.NativeAsset()))

	assert.Equal(t, uint64(0), b.Balance("nobody", ledger.NativeAsset()))
}

func TestBookDepositOverflow(t *testing.T) {
	b := NewBook()

	require.NoError(t, b.Deposit("vault", ledger.NativeAsset(), math.MaxUint64))
	err := b.Deposit("vault", ledger.NativeAsset(), 1)
	assert.ErrorIs(t, err, ErrBalanceOverflow)
	assert.Equal(t, uint64(math.MaxUint64), b.Balance("vault", ledger.NativeAsset()))
}

func TestBookMove(t *testing.T) {
	b := NewBook()
	require.NoError(t, b.Deposit("vault", ledger.NativeAsset(), 100))

	require.NoError(t, b.Move("vault", "bobby", ledger.NativeAsset(), 60))
	assert.Equal(t, uint64(40), b.Balance("vault", ledger.NativeAsset()))
	assert.Equal(t, uint64(60), b.Balance("bobby", ledger.NativeAsset()))
}

func TestBookMoveInsufficientFunds(t *testing.T) {
	b := NewBook()
	require.NoError(t, b.Deposit("vault", ledger.NativeAsset(), 10))

	err := b.Move("vault", "bobby", ledger.NativeAsset(), 11)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// No partial effect.
	assert.Equal(t, uint64(10), b.Balance("vault", ledger.NativeAsset()))
	assert.Equal(t, uint64(0), b.Balance("bobby", ledger.NativeAsset()))
}

func TestBookHoldingsSorted(t *testing.T) {
	b := NewBook()
	token := ledger.TokenAsset("aaa-contract")

	require.NoError(t, b.Deposit("vault", ledger.NativeAsset(), 1))
	require.NoError(t, b.Deposit("bobby", ledger.NativeAsset(), 2))
	require.NoError(t, b.Deposit("vault", token, 3))

	holdings := b.Holdings()
	require.Len(t, holdings, 3)
	// Sorted by asset string ("aaa-contract" < "native"), then account.
	assert.Equal(t, token, holdings[0].Asset)
	assert.Equal(t, "bobby", holdings[1].Account)
	assert.Equal(t, "vault", holdings[2].Account)
}

func TestBookImplementsMover(t *testing.T) {
	var _ ledger.Mover = NewBook()
}
