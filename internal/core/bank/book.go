// Package bank keeps account holdings for the native currency and for token
// contracts, and moves value between accounts. It is the asset-movement
// backend behind the ledger's Mover interface.
package bank

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
)

// ErrInsufficientFunds is returned by Move when the source account does not
// hold the requested amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrBalanceOverflow is returned when a deposit or transfer would overflow
// the destination balance.
var ErrBalanceOverflow = errors.New("balance overflow")

// Book is an in-memory multi-asset balance book. The zero Book is not usable;
// use NewBook.
type Book struct {
	mu     sync.RWMutex
	native map[string]uint64
	tokens map[string]map[string]uint64 // contract -> account -> balance
}

// NewBook creates an empty balance book.
func NewBook() *Book {
	return &Book{
		native: make(map[string]uint64),
		tokens: make(map[string]map[string]uint64),
	}
}

func (b *Book) balances(asset ledger.Asset) map[string]uint64 {
	if asset.IsNative() {
		return b.native
	}
	m, ok := b.tokens[asset.Contract()]
	if !ok {
		m = make(map[string]uint64)
		b.tokens[asset.Contract()] = m
	}
	return m
}

// Deposit credits amount of asset to account. Any party may deposit to any
// account.
func (b *Book) Deposit(account string, asset ledger.Asset, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.balances(asset)
	if m[account] > ^uint64(0)-amount {
		return fmt.Errorf("deposit %d of %s to %s: %w", amount, asset, account, ErrBalanceOverflow)
	}
	m[account] += amount
	return nil
}

// Balance returns the holdings of account in asset.
func (b *Book) Balance(account string, asset ledger.Asset) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if asset.IsNative() {
		return b.native[account]
	}
	return b.tokens[asset.Contract()][account]
}

// Move transfers amount of asset between accounts. It fails without effect
// if the source balance is short or the destination would overflow.
func (b *Book) Move(from, to string, asset ledger.Asset, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	m := b.balances(asset)
	if m[from] < amount {
		return fmt.Errorf("move %d of %s from %s: %w", amount, asset, from, ErrInsufficientFunds)
	}
	if from != to && m[to] > ^uint64(0)-amount {
		return fmt.Errorf("move %d of %s to %s: %w", amount, asset, to, ErrBalanceOverflow)
	}
	m[from] -= amount
	m[to] += amount
	return nil
}

// Holding pairs an account with its balance in one asset.
type Holding struct {
	Account string
	Asset   ledger.Asset
	Amount  uint64
}

// Holdings returns every non-zero balance in the book, sorted by asset then
// account.
func (b *Book) Holdings() []Holding {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Holding
	for account, amount := range b.native {
		if amount > 0 {
			out = append(out, Holding{Account: account, Asset: ledger.NativeAsset(), Amount: amount})
		}
	}
	for contract, balances := range b.tokens {
		for account, amount := range balances {
			if amount > 0 {
				out = append(out, Holding{Account: account, Asset: ledger.TokenAsset(contract), Amount: amount})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Asset.String() != out[j].Asset.String() {
			return out[i].Asset.String() < out[j].Asset.String()
		}
		return out[i].Account < out[j].Account
	})
	return out
}
