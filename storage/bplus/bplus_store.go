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

// Package bplus implements an in-memory storage backend. Useful for
// tests and throwaway sessions.
package bplus

import (
	"bytes"

	"github.com/google/btree"

	"github.com/histree/histree/storage"
)

type BPlusTreeStore struct {
	db *btree.BTree
}

func NewBPlusTreeStore() *BPlusTreeStore {
	return &BPlusTreeStore{btree.New(2)}
}

func (s *BPlusTreeStore) Mutate(mutations []*storage.Mutation) error {
	for _, m := range mutations {
		s.db.ReplaceOrInsert(KVItem{m.Key, m.Value})
	}
	return nil
}

func (s *BPlusTreeStore) Get(key []byte) (*storage.KVPair, error) {
	item := s.db.Get(KVItem{key, nil})
	if item == nil {
		return nil, storage.ErrKeyNotFound
	}
	return &storage.KVPair{Key: key, Value: item.(KVItem).Value}, nil
}

func (s *BPlusTreeStore) GetRange(start, end []byte) (storage.KVRange, error) {
	result := make(storage.KVRange, 0)
	s.db.AscendGreaterOrEqual(KVItem{start, nil}, func(i btree.Item) bool {
		key := i.(KVItem).Key
		if bytes.Compare(key, end) > 0 {
			return false
		}
		result = append(result, storage.KVPair{Key: key, Value: i.(KVItem).Value})
		return true
	})
	return result, nil
}

func (s *BPlusTreeStore) Delete(key []byte) error {
	s.db.Delete(KVItem{key, nil})
	return nil
}

func (s *BPlusTreeStore) Close() error {
	s.db.Clear(false)
	return nil
}

type KVItem struct {
	Key, Value []byte
}

func (p KVItem) Less(b btree.Item) bool {
	return bytes.Compare(p.Key, b.(KVItem).Key) < 0
}
