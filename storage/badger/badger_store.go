/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package badger implements a storage backend on a badger database
// directory.
package badger

import (
	"bytes"

	b "github.com/dgraph-io/badger"

	"github.com/histree/histree/storage"
)

type BadgerStore struct {
	db *b.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := b.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.SyncWrites = false
	db, err := b.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) Mutate(mutations []*storage.Mutation) error {
	return s.db.Update(func(txn *b.Txn) error {
		for _, m := range mutations {
			if err := txn.Set(m.Key, m.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BadgerStore) Get(key []byte) (*storage.KVPair, error) {
	result := new(storage.KVPair)
	result.Key = key
	err := s.db.View(func(txn *b.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err := item.Value()
		if err != nil {
			return err
		}
		result.Value = append([]byte{}, value...)
		return nil
	})
	switch err {
	case nil:
		return result, nil
	case b.ErrKeyNotFound:
		return nil, storage.ErrKeyNotFound
	default:
		return nil, err
	}
}

func (s *BadgerStore) GetRange(start, end []byte) (storage.KVRange, error) {
	result := make(storage.KVRange, 0)
	err := s.db.View(func(txn *b.Txn) error {
		it := txn.NewIterator(b.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(start); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if bytes.Compare(key, end) > 0 {
				break
			}
			value, err := item.Value()
			if err != nil {
				return err
			}
			result = append(result, storage.KVPair{Key: key, Value: append([]byte{}, value...)})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BadgerStore) Delete(key []byte) error {
	return s.db.Update(func(txn *b.Txn) error {
		return txn.Delete(key)
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}
