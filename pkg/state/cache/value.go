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

// ValueState is a single value cell.
type ValueState struct {
	c    *Cache
	cell *cell
}

// Read returns the staged value if any, else the last persisted value. The bool is false when the cell is empty.
func (s *ValueState) Read(ctx context.Context) (interface{}, bool, error) {
	if err := s.c.checkOpen(); err != nil {
		return nil, false, err
	}
	cl := s.cell
	if cl.written {
		return cl.value, true, nil
	}
	if cl.cleared {
		return nil, false, nil
	}
	if err := s.c.load(ctx, cl); err != nil {
		return nil, false, err
	}
	if len(cl.persisted) == 0 {
		return nil, false, nil
	}
	return cl.persisted[len(cl.persisted)-1], true, nil
}

// Write stages v as the replacement of the cell, overwriting any earlier write of the bundle.
func (s *ValueState) Write(v interface{}) error {
	if err := s.c.checkOpen(); err != nil {
		return err
	}
	s.cell.written = true
	s.cell.value = v
	return nil
}

// Clear stages the removal of the cell.
func (s *ValueState) Clear() error {
	if err := s.c.checkOpen(); err != nil {
		return err
	}
	s.cell.written = false
	s.cell.value = nil
	s.cell.cleared = true
	return nil
}
