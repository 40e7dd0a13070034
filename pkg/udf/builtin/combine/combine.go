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

// Package combine holds the builtin combine functions.
package combine

import (
	"fmt"
	"math"
	"strings"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/state/cache"
)

// Sum adds integer inputs. Its accumulators are int64 and round trip through the varint coder only.
type Sum struct{}

var _ cache.CombineFn = Sum{}

func (Sum) CreateAccumulator() interface{} { return int64(0) }

func (Sum) AddInput(acc interface{}, input interface{}) (interface{}, error) {
	a, err := accumulator(acc)
	if err != nil {
		return nil, err
	}
	n, err := toInt64(input)
	if err != nil {
		return nil, err
	}
	return a + n, nil
}

func (Sum) MergeAccumulators(accs ...interface{}) (interface{}, error) {
	var s int64
	for _, acc := range accs {
		a, err := accumulator(acc)
		if err != nil {
			return nil, err
		}
		s += a
	}
	return s, nil
}

func (Sum) ExtractOutput(acc interface{}) interface{} { return acc }

func (Sum) AccumulatorCoder() string { return coder.NameVarInt }

// Count counts its inputs, whatever they are.
type Count struct {
	Sum
}

func (Count) AddInput(acc interface{}, _ interface{}) (interface{}, error) {
	a, err := accumulator(acc)
	if err != nil {
		return nil, err
	}
	return a + 1, nil
}

// Concat concatenates string inputs in arrival order.
type Concat struct{}

var _ cache.CombineFn = Concat{}

func (Concat) CreateAccumulator() interface{} { return "" }

func (Concat) AddInput(acc interface{}, input interface{}) (interface{}, error) {
	a, ok := acc.(string)
	if !ok {
		return nil, fmt.Errorf("concat accumulator must be a string, got %T", acc)
	}
	return a + fmt.Sprint(input), nil
}

func (Concat) MergeAccumulators(accs ...interface{}) (interface{}, error) {
	var sb strings.Builder
	for _, acc := range accs {
		a, ok := acc.(string)
		if !ok {
			return nil, fmt.Errorf("concat accumulator must be a string, got %T", acc)
		}
		sb.WriteString(a)
	}
	return sb.String(), nil
}

func (Concat) ExtractOutput(acc interface{}) interface{} { return acc }

func (Concat) AccumulatorCoder() string { return coder.NameStringUtf8 }

func accumulator(acc interface{}) (int64, error) {
	a, ok := acc.(int64)
	if !ok {
		return 0, fmt.Errorf("accumulator must be an int64, got %T", acc)
	}
	return a, nil
}

func toInt64(v interface{}) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("cannot sum fractional value %v", x)
		}
		return int64(x), nil
	default:
		return 0, fmt.Errorf("cannot sum %T", v)
	}
}
