// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger stores native state in a luxfi/database key-value store.
// Every call gets its own view: read-only views go straight to the database,
// transactions buffer writes in memory and flush them in a single batch.
// Transactions are serialized: Begin blocks until the previous transaction
// has been committed or discarded.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/log"
	"github.com/zeebo/blake3"

	"github.com/luxfi/subnetprecompile/native"
)

var (
	_ native.Store = (*Ledger)(nil)
	_ native.Tx    = (*tx)(nil)

	namespace = []byte("subnetprecompile/native/")

	errTxDone = errors.New("transaction already committed or discarded")
)

// Ledger is a native.Store backed by a database.
type Ledger struct {
	db  database.Database
	log log.Logger

	// held from Begin until Commit or Discard
	txLock sync.Mutex
}

// New returns a ledger storing its records under a private namespace of [db].
func New(db database.Database, logger log.Logger) *Ledger {
	return &Ledger{
		db:  prefixdb.New(namespace, db),
		log: logger,
	}
}

// NewMemory returns a ledger over a fresh in-memory database.
func NewMemory(logger log.Logger) *Ledger {
	return New(memdb.New(), logger)
}

// ReadOnly returns a view that rejects writes.
func (l *Ledger) ReadOnly() native.View {
	return &view{db: l.db, readOnly: true}
}

// Begin returns a transaction whose writes stay private until Commit. The
// caller must end it with Commit or Discard.
func (l *Ledger) Begin() native.Tx {
	l.txLock.Lock()
	return &tx{
		view:   view{db: l.db, pending: make(map[string]entry)},
		ledger: l,
	}
}

// ApplyGenesis writes the genesis state in one batch.
func (l *Ledger) ApplyGenesis(g *native.Genesis) error {
	t := l.Begin()
	if err := native.ApplyGenesis(t, g); err != nil {
		t.Discard()
		return fmt.Errorf("applying native genesis: %w", err)
	}
	if err := t.Commit(); err != nil {
		return err
	}
	l.log.Info("applied native genesis",
		"subnets", len(g.Subnets)+1,
		"balances", len(g.Balances),
		"stakes", len(g.Stakes),
	)
	return nil
}

// Digest hashes every committed record in key order.
func (l *Ledger) Digest() ([32]byte, error) {
	it := l.db.NewIterator()
	defer it.Release()

	h := blake3.New()
	for it.Next() {
		writeChunk(h, it.Key())
		writeChunk(h, it.Value())
	}
	if err := it.Error(); err != nil {
		return [32]byte{}, err
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out, nil
}

func writeChunk(h *blake3.Hasher, b []byte) {
	_, _ = h.Write(database.PackUInt64(uint64(len(b))))
	_, _ = h.Write(b)
}

// tx is a buffered view committed through one database batch.
type tx struct {
	view
	ledger *Ledger
	done   bool
}

func (t *tx) finish() {
	t.done = true
	t.readOnly = true
	t.ledger.txLock.Unlock()
}

func (t *tx) Commit() error {
	if t.done {
		return errTxDone
	}
	defer t.finish()

	if len(t.pending) == 0 {
		return nil
	}
	batch := t.ledger.db.NewBatch()
	for key, e := range t.pending {
		var err error
		if e.deleted {
			err = batch.Delete([]byte(key))
		} else {
			err = batch.Put([]byte(key), e.value)
		}
		if err != nil {
			return fmt.Errorf("staging native write: %w", err)
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("committing native writes: %w", err)
	}
	t.ledger.log.Debug("committed native writes", "keys", len(t.pending))
	t.pending = nil
	return nil
}

func (t *tx) Discard() {
	if t.done {
		return
	}
	t.ledger.log.Debug("discarded native writes", "keys", len(t.pending))
	t.pending = nil
	t.finish()
}
