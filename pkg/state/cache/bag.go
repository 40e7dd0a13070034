/*
Copyright 2022 The Numaproj Authors.

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

package cache

import (
	"context"
)

// BagState is an append only collection cell.
type BagState struct {
	c    *Cache
	cell *cell
}

// Read returns the persisted values followed by the values added in this bundle, in order.
// The returned slice is a copy.
func (s *BagState) Read(ctx context.Context) ([]interface{}, error) {
	if err := s.c.checkOpen(); err != nil {
		return nil, err
	}
	cl := s.cell
	var persisted []interface{}
	if !cl.cleared {
		if err := s.c.load(ctx, cl); err != nil {
			return nil, err
		}
		persisted = cl.persisted
	}
	out := make([]interface{}, 0, len(persisted)+len(cl.added))
	out = append(out, persisted...)
	return append(out, cl.added...), nil
}

// Add stages v at the end of the bag.
func (s *BagState) Add(v interface{}) error {
	if err := s.c.checkOpen(); err != nil {
		return err
	}
	s.cell.added = append(s.cell.added, v)
	return nil
}

// Clear drops both the persisted and the staged values.
func (s *BagState) Clear() error {
	if err := s.c.checkOpen(); err != nil {
		return err
	}
	s.cell.cleared = true
	s.cell.added = nil
	return nil
}
