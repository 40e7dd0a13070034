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
	"fmt"

	"github.com/numaproj/numaflow-harness/pkg/coder"
)

// Kind is the kind of a state cell.
type Kind int8

const (
	KindValue Kind = iota + 1
	KindBag
	KindCombining
)

func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindBag:
		return "bag"
	case KindCombining:
		return "combining"
	default:
		return "unknown"
	}
}

// CombineFn folds inputs into accumulators. MergeAccumulators must be associative.
type CombineFn interface {
	// CreateAccumulator returns the identity accumulator.
	CreateAccumulator() interface{}
	// AddInput folds one input into acc and returns the result. It fails on inputs it cannot fold.
	AddInput(acc interface{}, input interface{}) (interface{}, error)
	// MergeAccumulators merges accs, in order, into one accumulator.
	MergeAccumulators(accs ...interface{}) (interface{}, error)
	// ExtractOutput returns the value read from acc.
	ExtractOutput(acc interface{}) interface{}
}

// AccumulatorCoderNamer is implemented by combine functions whose accumulators only round trip through the
// named coder.
type AccumulatorCoderNamer interface {
	AccumulatorCoder() string
}

// Spec declares a state cell of a transform. Coder encodes the values of a Value or Bag cell, and the
// accumulators of a Combining cell.
type Spec struct {
	ID        string
	Kind      Kind
	Coder     coder.Coder
	CombineFn CombineFn
}

// Validate checks that the spec is usable.
func (s Spec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("state id is required")
	}
	if s.Coder == nil {
		return fmt.Errorf("state %q: coder is required", s.ID)
	}
	switch s.Kind {
	case KindValue, KindBag:
	case KindCombining:
		if s.CombineFn == nil {
			return fmt.Errorf("state %q: combining state requires a combine function", s.ID)
		}
	default:
		return fmt.Errorf("state %q: unknown kind %d", s.ID, s.Kind)
	}
	return nil
}
