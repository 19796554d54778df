// Package ledgerstore persists the daemon's durable state: pending orders,
// account balances, and the order id counter. Records are JSON encoded,
// compressed, and written through to the key-value store on every mutation so
// a restart replays nothing.
package ledgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lowsodium/lowsodiumd/internal/core/ledger"
	"github.com/lowsodium/lowsodiumd/internal/storage/compression"
	"github.com/lowsodium/lowsodiumd/internal/storage/database"
)

const (
	orderPrefix   = "order/"
	balancePrefix = "balance/"
	nextIDKey     = "meta/nextid"
)

// orderRecord is the persisted form of a pending order.
type orderRecord struct {
	ID          uint64 `json:"id"`
	Owner       string `json:"owner"`
	Asset       string `json:"asset"`
	Amount      uint64 `json:"amount"`
	Destination string `json:"destination"`
	CreatedAt   int64  `json:"createdAt"`
	Maturity    int64  `json:"maturity"`
}

// balanceRecord is the persisted form of one account's holding in one asset.
type balanceRecord struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  uint64 `json:"amount"`
}

// Store reads and writes ledger state against a database.DB.
type Store struct {
	db   database.DB
	comp compression.Compressor
}

// New creates a store over db using the named compressor ("lz4" or "none").
func New(db database.DB, compressor string) (*Store, error) {
	comp, err := compression.Get(compressor)
	if err != nil {
		return nil, fmt.Errorf("ledgerstore: %w", err)
	}
	return &Store{db: db, comp: comp}, nil
}

func (s *Store) encode(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return s.comp.Compress(raw)
}

func (s *Store) decode(data []byte, v any) error {
	raw, err := s.comp.Decompress(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func orderKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x", orderPrefix, id))
}

func balanceKey(account string, asset ledger.Asset) []byte {
	return []byte(fmt.Sprintf("%s%s/%s", balancePrefix, asset, account))
}

// PutOrder writes a pending order.
func (s *Store) PutOrder(ctx context.Context, o ledger.Order) error {
	rec := orderRecord{
		ID:          o.ID,
		Owner:       o.Owner,
		Asset:       o.Asset.String(),
		Amount:      o.Amount,
		Destination: o.Destination,
		CreatedAt:   o.CreatedAt,
		Maturity:    o.Maturity,
	}
	val, err := s.encode(rec)
	if err != nil {
		return fmt.Errorf("encode order %d: %w", o.ID, err)
	}
	return s.db.Write(ctx, orderKey(o.ID), val)
}

// DeleteOrder removes a terminated order.
func (s *Store) DeleteOrder(ctx context.Context, id uint64) error {
	return s.db.Delete(ctx, orderKey(id))
}

// Orders loads every pending order, in id order.
func (s *Store) Orders(ctx context.Context) ([]ledger.Order, error) {
	start := []byte(orderPrefix)
	end := []byte(orderPrefix + "\xff")

	it, err := s.db.Iterator(ctx, start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []ledger.Order
	for it.Next() {
		var rec orderRecord
		if err := s.decode(it.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decode order at %q: %w", it.Key(), err)
		}
		out = append(out, ledger.Order{
			ID:          rec.ID,
			Owner:       rec.Owner,
			Asset:       ledger.ParseAsset(rec.Asset),
			Amount:      rec.Amount,
			Destination: rec.Destination,
			CreatedAt:   rec.CreatedAt,
			Maturity:    rec.Maturity,
		})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// PutBalance writes one account holding. A zero amount deletes the record.
func (s *Store) PutBalance(ctx context.Context, account string, asset ledger.Asset, amount uint64) error {
	key := balanceKey(account, asset)
	if amount == 0 {
		return s.db.Delete(ctx, key)
	}
	val, err := s.encode(balanceRecord{Account: account, Asset: asset.String(), Amount: amount})
	if err != nil {
		return fmt.Errorf("encode balance %s/%s: %w", asset, account, err)
	}
	return s.db.Write(ctx, key, val)
}

// BalanceEntry is one account's persisted holding in one asset.
type BalanceEntry struct {
	Account string
	Asset   ledger.Asset
	Amount  uint64
}

// Balances loads every persisted holding.
func (s *Store) Balances(ctx context.Context) ([]BalanceEntry, error) {
	start := []byte(balancePrefix)
	end := []byte(balancePrefix + "\xff")

	it, err := s.db.Iterator(ctx, start, end)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []BalanceEntry
	for it.Next() {
		var rec balanceRecord
		if err := s.decode(it.Value(), &rec); err != nil {
			return nil, fmt.Errorf("decode balance at %q: %w", it.Key(), err)
		}
		out = append(out, BalanceEntry{
			Account: rec.Account,
			Asset:   ledger.ParseAsset(rec.Asset),
			Amount:  rec.Amount,
		})
	}
	if err := it.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

// PutNextID persists the order id counter.
func (s *Store) PutNextID(ctx context.Context, next uint64) error {
	val, err := s.encode(next)
	if err != nil {
		return err
	}
	return s.db.Write(ctx, []byte(nextIDKey), val)
}

// NextID loads the order id counter. A fresh database reports 1.
func (s *Store) NextID(ctx context.Context) (uint64, error) {
	val, err := s.db.Read(ctx, []byte(nextIDKey))
	if err != nil {
		if errors.Is(err, database.ErrKeyNotFound) {
			return 1, nil
		}
		return 0, err
	}
	var next uint64
	if err := s.decode(val, &next); err != nil {
		return 0, fmt.Errorf("decode next id: %w", err)
	}
	return next, nil
}
