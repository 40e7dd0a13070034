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

package combine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSum(t *testing.T) {
	var s Sum
	acc, err := s.AddInput(s.CreateAccumulator(), 2)
	require.NoError(t, err)
	acc, err = s.AddInput(acc, int64(3))
	require.NoError(t, err)
	acc, err = s.AddInput(acc, float64(4))
	require.NoError(t, err)
	merged, err := s.MergeAccumulators(acc, int64(1))
	require.NoError(t, err)
	assert.Equal(t, int64(10), s.ExtractOutput(merged))
	assert.Equal(t, "varint", s.AccumulatorCoder())
}

func TestSum_InvalidInputs(t *testing.T) {
	var s Sum
	_, err := s.AddInput(int64(0), "abc")
	assert.EqualError(t, err, "cannot sum string")
	_, err = s.AddInput(int64(0), 1.5)
	assert.EqualError(t, err, "cannot sum fractional value 1.5")
	_, err = s.AddInput("0", int64(1))
	assert.EqualError(t, err, "accumulator must be an int64, got string")
	_, err = s.MergeAccumulators(float64(3), int64(1))
	assert.EqualError(t, err, "accumulator must be an int64, got float64")
}

func TestCount(t *testing.T) {
	var c Count
	acc, err := c.AddInput(c.CreateAccumulator(), "a")
	require.NoError(t, err)
	acc, err = c.AddInput(acc, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), acc)
	merged, err := c.MergeAccumulators(acc, int64(3))
	require.NoError(t, err)
	assert.Equal(t, int64(5), merged)
	_, err = c.AddInput(float64(1), "a")
	assert.Error(t, err)
}

func TestConcat(t *testing.T) {
	var c Concat
	acc, err := c.AddInput(c.CreateAccumulator(), "X1")
	require.NoError(t, err)
	acc, err = c.AddInput(acc, "X2")
	require.NoError(t, err)
	merged, err := c.MergeAccumulators("X0", acc)
	require.NoError(t, err)
	assert.Equal(t, "X0X1X2", c.ExtractOutput(merged))
	_, err = c.MergeAccumulators("X0", int64(1))
	assert.Error(t, err)
}
