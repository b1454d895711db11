// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/luxfi/database"

	"github.com/luxfi/subnetprecompile/native"
)

type entry struct {
	value   []byte
	deleted bool
}

type record struct {
	key   []byte
	value []byte
}

// view reads through [pending] to [db]. A nil [pending] map means the view
// never buffers writes.
type view struct {
	db       database.Database
	pending  map[string]entry
	readOnly bool
}

func (v *view) get(key []byte) ([]byte, bool, error) {
	if e, ok := v.pending[string(key)]; ok {
		if e.deleted {
			return nil, false, nil
		}
		return e.value, true, nil
	}
	value, err := v.db.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (v *view) put(key, value []byte) error {
	if v.readOnly || v.pending == nil {
		return errReadOnly(key)
	}
	v.pending[string(key)] = entry{value: bytes.Clone(value)}
	return nil
}

func (v *view) delete(key []byte) error {
	if v.readOnly || v.pending == nil {
		return errReadOnly(key)
	}
	v.pending[string(key)] = entry{deleted: true}
	return nil
}

// scan returns every live record under [prefix] in key order, with buffered
// writes applied on top of the database.
func (v *view) scan(prefix []byte) ([]record, error) {
	merged := make(map[string][]byte)

	it := v.db.NewIteratorWithPrefix(prefix)
	for it.Next() {
		merged[string(it.Key())] = bytes.Clone(it.Value())
	}
	err := it.Error()
	it.Release()
	if err != nil {
		return nil, err
	}

	for key, e := range v.pending {
		if !strings.HasPrefix(key, string(prefix)) {
			continue
		}
		if e.deleted {
			delete(merged, key)
		} else {
			merged[key] = e.value
		}
	}

	records := make([]record, 0, len(merged))
	for key, value := range merged {
		records = append(records, record{key: []byte(key), value: value})
	}
	sort.Slice(records, func(i, j int) bool {
		return bytes.Compare(records[i].key, records[j].key) < 0
	})
	return records, nil
}

func errReadOnly(key []byte) error {
	return fmt.Errorf("%w: key %x", native.ErrReadOnly, key)
}
