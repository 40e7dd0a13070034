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

// CombiningState is a cell folding its inputs with a CombineFn.
//
// Inputs added in a bundle go to a local accumulator that starts from the identity. Reads and Flush merge the
// persisted accumulators with it, in that order.
type CombiningState struct {
	c    *Cache
	cell *cell
}

// accumulators returns the persisted accumulators followed by the local one.
func (c *Cache) accumulators(ctx context.Context, cl *cell) ([]interface{}, error) {
	var accs []interface{}
	if !cl.cleared {
		if err := c.load(ctx, cl); err != nil {
			return nil, err
		}
		accs = append(accs, cl.persisted...)
	}
	if cl.hasLocal {
		accs = append(accs, cl.local)
	}
	return accs, nil
}

// ReadAccumulator returns the merged accumulator of the cell.
func (s *CombiningState) ReadAccumulator(ctx context.Context) (interface{}, error) {
	if err := s.c.checkOpen(); err != nil {
		return nil, err
	}
	accs, err := s.c.accumulators(ctx, s.cell)
	if err != nil {
		return nil, err
	}
	fn := s.cell.spec.CombineFn
	switch len(accs) {
	case 0:
		return fn.CreateAccumulator(), nil
	case 1:
		return accs[0], nil
	default:
		return fn.MergeAccumulators(accs...)
	}
}

// Read returns the output extracted from the merged accumulator.
func (s *CombiningState) Read(ctx context.Context) (interface{}, error) {
	acc, err := s.ReadAccumulator(ctx)
	if err != nil {
		return nil, err
	}
	return s.cell.spec.CombineFn.ExtractOutput(acc), nil
}

// Add folds input into the local accumulator.
func (s *CombiningState) Add(input interface{}) error {
	if err := s.c.checkOpen(); err != nil {
		return err
	}
	cl := s.cell
	acc := cl.local
	if !cl.hasLocal {
		acc = cl.spec.CombineFn.CreateAccumulator()
	}
	acc, err := cl.spec.CombineFn.AddInput(acc, input)
	if err != nil {
		return err
	}
	cl.local = acc
	cl.hasLocal = true
	return nil
}

// Clear drops the persisted accumulators and the local one.
func (s *CombiningState) Clear() error {
	if err := s.c.checkOpen(); err != nil {
		return err
	}
	cl := s.cell
	cl.cleared = true
	cl.hasLocal = false
	cl.local = nil
	return nil
}
