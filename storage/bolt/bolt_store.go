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

// Package bolt implements a storage backend on a single bolt database
// file.
package bolt

import (
	"bytes"

	b "github.com/coreos/bbolt"

	"github.com/histree/histree/storage"
)

var sessionsBucket = []byte("sessions")

type BoltStore struct {
	db *b.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := b.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *b.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Mutate(mutations []*storage.Mutation) error {
	return s.db.Update(func(tx *b.Tx) error {
		bucket := tx.Bucket(sessionsBucket)
		for _, m := range mutations {
			if err := bucket.Put(m.Key, m.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) Get(key []byte) (*storage.KVPair, error) {
	result := new(storage.KVPair)
	result.Key = key
	err := s.db.View(func(tx *b.Tx) error {
		value := tx.Bucket(sessionsBucket).Get(key)
		if value == nil {
			return storage.ErrKeyNotFound
		}
		result.Value = append([]byte{}, value...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BoltStore) GetRange(start, end []byte) (storage.KVRange, error) {
	result := make(storage.KVRange, 0)
	err := s.db.View(func(tx *b.Tx) error {
		cursor := tx.Bucket(sessionsBucket).Cursor()
		for k, v := cursor.Seek(start); k != nil; k, v = cursor.Next() {
			if bytes.Compare(k, end) > 0 {
				break
			}
			key := append([]byte{}, k...)
			value := append([]byte{}, v...)
			result = append(result, storage.KVPair{Key: key, Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *BoltStore) Delete(key []byte) error {
	return s.db.Update(func(tx *b.Tx) error {
		return tx.Bucket(sessionsBucket).Delete(key)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
