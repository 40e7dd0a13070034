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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/multierr"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/state"
	"github.com/numaproj/numaflow-harness/pkg/state/inmem"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const transformID = "pTransformId"

type concatFn struct{}

func (concatFn) CreateAccumulator() interface{} { return "" }

func (concatFn) AddInput(acc interface{}, input interface{}) (interface{}, error) {
	s, ok := input.(string)
	if !ok {
		return nil, fmt.Errorf("cannot concat %T", input)
	}
	return acc.(string) + s, nil
}

func (concatFn) MergeAccumulators(accs ...interface{}) (interface{}, error) {
	var sb strings.Builder
	for _, a := range accs {
		sb.WriteString(a.(string))
	}
	return sb.String(), nil
}

func (concatFn) ExtractOutput(acc interface{}) interface{} { return acc }

var (
	valueSpec   = Spec{ID: "value", Kind: KindValue, Coder: coder.StringUtf8{}}
	bagSpec     = Spec{ID: "bag", Kind: KindBag, Coder: coder.StringUtf8{}}
	combineSpec = Spec{ID: "combine", Kind: KindCombining, Coder: coder.StringUtf8{}, CombineFn: concatFn{}}
)

func enc(t *testing.T, values ...string) []byte {
	t.Helper()
	var b []byte
	for _, v := range values {
		chunk, err := coder.EncodeToBytes(coder.StringUtf8{}, v)
		require.NoError(t, err)
		b = append(b, chunk...)
	}
	return b
}

func userKey(id, elementKey string) state.Key {
	return state.NewUserStateKey(transformID, id, []byte(elementKey), nil)
}

func TestSpec_Validate(t *testing.T) {
	assert.NoError(t, valueSpec.Validate())
	assert.NoError(t, combineSpec.Validate())
	assert.Error(t, Spec{Kind: KindBag, Coder: coder.Bytes{}}.Validate())
	assert.Error(t, Spec{ID: "b", Kind: KindBag}.Validate())
	assert.Error(t, Spec{ID: "c", Kind: KindCombining, Coder: coder.Bytes{}}.Validate())
	assert.Error(t, Spec{ID: "x", Coder: coder.Bytes{}}.Validate())
}

func TestValueState_ReadYourWrites(t *testing.T) {
	ctx := context.Background()
	k := userKey("value", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "X0")))
	c := New(ctx, transformID, client)

	v := c.Value(valueSpec, []byte("X"), nil)
	got, ok, err := v.Read(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "X0", got)

	require.NoError(t, v.Write("v1"))
	// a new handle over the same key sees the staged write
	got, _, err = c.Value(valueSpec, []byte("X"), nil).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v1", got)
	require.NoError(t, v.Write("v2"))
	got, _, err = v.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	assert.Equal(t, int64(1), client.FetchCount(k))
	// nothing is written before the flush
	assert.Equal(t, [][]byte{enc(t, "X0")}, client.Chunks(k))

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "v2")}, client.Chunks(k))
	assert.Equal(t, int64(1), client.FetchCount(k))
}

func TestValueState_WriteWithoutRead(t *testing.T) {
	ctx := context.Background()
	k := userKey("value", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a"), enc(t, "b")))
	c := New(ctx, transformID, client)
	require.NoError(t, c.Value(valueSpec, []byte("X"), nil).Write("c"))
	got, ok, err := c.Value(valueSpec, []byte("X"), nil).Read(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "c", got)
	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "c")}, client.Chunks(k))
	assert.Equal(t, int64(0), client.FetchCount(k))
}

func TestValueState_ReadsLastChunk(t *testing.T) {
	ctx := context.Background()
	k := userKey("value", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a"), enc(t, "b")))
	c := New(ctx, transformID, client)
	got, ok, err := c.Value(valueSpec, []byte("X"), nil).Read(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b", got)

	got, ok, err = c.Value(valueSpec, []byte("Y"), nil).Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	// reads only, nothing to flush
	assert.Equal(t, 0, c.Pending())
	require.NoError(t, c.Flush(ctx))
	_, appends, clears := client.Requests()
	assert.Zero(t, appends)
	assert.Zero(t, clears)
}

func TestValueState_Clear(t *testing.T) {
	ctx := context.Background()
	k := userKey("value", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a")))
	c := New(ctx, transformID, client)
	v := c.Value(valueSpec, []byte("X"), nil)
	require.NoError(t, v.Clear())
	_, ok, err := v.Read(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, c.Flush(ctx))
	assert.Empty(t, client.Chunks(k))
	assert.Equal(t, int64(0), client.FetchCount(k))
}

func TestBagState_Accumulation(t *testing.T) {
	ctx := context.Background()
	k := userKey("bag", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a")))
	c := New(ctx, transformID, client)
	b := c.Bag(bagSpec, []byte("X"), nil)
	require.NoError(t, b.Add("b"))
	values, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b"}, values)
	require.NoError(t, b.Add("c"))
	values, err = b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b", "c"}, values)

	// the returned slice is a copy
	values[0] = "z"
	values, err = b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b", "c"}, values)

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "a"), enc(t, "b"), enc(t, "c")}, client.Chunks(k))
	_, _, clears := client.Requests()
	assert.Zero(t, clears)
	assert.Equal(t, int64(1), client.FetchCount(k))
}

func TestBagState_MultiValueChunks(t *testing.T) {
	ctx := context.Background()
	k := userKey("bag", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a", "b"), enc(t, "c")))
	values, err := New(ctx, transformID, client).Bag(bagSpec, []byte("X"), nil).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"a", "b", "c"}, values)
}

func TestBagState_Clear(t *testing.T) {
	ctx := context.Background()
	k := userKey("bag", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a")))
	c := New(ctx, transformID, client)
	b := c.Bag(bagSpec, []byte("X"), nil)
	require.NoError(t, b.Add("b"))
	require.NoError(t, b.Clear())
	require.NoError(t, b.Add("c"))
	values, err := b.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"c"}, values)
	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "c")}, client.Chunks(k))
}

func TestCombiningState_Merge(t *testing.T) {
	ctx := context.Background()
	k := userKey("combine", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "X0")))
	c := New(ctx, transformID, client)
	s := c.Combining(combineSpec, []byte("X"), nil)

	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X0", got)
	require.NoError(t, s.Add("X1"))
	got, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X0X1", got)
	require.NoError(t, s.Add("X2"))
	got, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X0X1X2", got)
	acc, err := s.ReadAccumulator(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X0X1X2", acc)

	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "X0X1X2")}, client.Chunks(k))
	assert.Equal(t, int64(1), client.FetchCount(k))
}

func TestCombiningState_AddWithoutRead(t *testing.T) {
	ctx := context.Background()
	k := userKey("combine", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a"), enc(t, "b")))
	c := New(ctx, transformID, client)
	require.NoError(t, c.Combining(combineSpec, []byte("X"), nil).Add("c"))
	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "abc")}, client.Chunks(k))
	assert.Equal(t, int64(1), client.FetchCount(k))
}

func TestCombiningState_AddInputError(t *testing.T) {
	ctx := context.Background()
	k := userKey("combine", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a")))
	c := New(ctx, transformID, client)
	s := c.Combining(combineSpec, []byte("X"), nil)
	require.NoError(t, s.Add("b"))
	assert.EqualError(t, s.Add(42), "cannot concat int")
	// the failed input leaves the accumulator untouched
	got, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ab", got)

	fresh := c.Combining(combineSpec, []byte("Y"), nil)
	assert.Error(t, fresh.Add(42))
	assert.Equal(t, 1, c.Pending())
}

func TestCombiningState_EmptyAndClear(t *testing.T) {
	ctx := context.Background()
	k := userKey("combine", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a")))
	c := New(ctx, transformID, client)

	got, err := c.Combining(combineSpec, []byte("Y"), nil).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	s := c.Combining(combineSpec, []byte("X"), nil)
	require.NoError(t, s.Add("b"))
	require.NoError(t, s.Clear())
	got, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", got)
	require.NoError(t, s.Add("c"))
	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "c")}, client.Chunks(k))
}

func TestCache_IsolationAcrossKeysAndWindows(t *testing.T) {
	ctx := context.Background()
	client := inmem.NewInMemClient(ctx, "test")
	c := New(ctx, transformID, client)
	require.NoError(t, c.Bag(bagSpec, []byte("K1"), nil).Add("k1"))
	require.NoError(t, c.Bag(bagSpec, []byte("K1"), []byte("w1")).Add("k1w1"))

	values, err := c.Bag(bagSpec, []byte("K2"), nil).Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, values)
	values, err = c.Bag(bagSpec, []byte("K1"), nil).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"k1"}, values)
	values, err = c.Bag(bagSpec, []byte("K1"), []byte("w1")).Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"k1w1"}, values)

	assert.Equal(t, 2, c.Pending())
	require.NoError(t, c.Flush(ctx))
	assert.Equal(t, [][]byte{enc(t, "k1")}, client.Chunks(userKey("bag", "K1")))
	assert.Equal(t, [][]byte{enc(t, "k1w1")}, client.Chunks(state.NewUserStateKey(transformID, "bag", []byte("K1"), []byte("w1"))))
	assert.Empty(t, client.Chunks(userKey("bag", "K2")))
}

func TestCache_DecodeError(t *testing.T) {
	ctx := context.Background()
	k := userKey("value", "X")
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, []byte{0x05, 'a'}))
	c := New(ctx, transformID, client)
	v := c.Value(valueSpec, []byte("X"), nil)
	_, _, err := v.Read(ctx)
	assert.True(t, fnerr.IsKind(err, fnerr.Decode))
	// the failure is remembered, no second fetch
	_, _, err = v.Read(ctx)
	assert.True(t, fnerr.IsKind(err, fnerr.Decode))
	assert.Equal(t, int64(1), client.FetchCount(k))

	// a length prefix far beyond the stored bytes
	huge := userKey("bag", "X")
	client = inmem.NewInMemClient(ctx, "test", inmem.WithChunks(huge, []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x40}))
	c = New(ctx, transformID, client)
	_, err = c.Bag(bagSpec, []byte("X"), nil).Read(ctx)
	assert.True(t, fnerr.IsKind(err, fnerr.Decode))

	// a coder reading no bytes cannot make progress over a non empty chunk
	zeroWidth := Spec{ID: "bag", Kind: KindBag, Coder: coder.GlobalWindow{}}
	client = inmem.NewInMemClient(ctx, "test", inmem.WithChunks(huge, []byte{0x01}))
	c = New(ctx, transformID, client)
	_, err = c.Bag(zeroWidth, []byte("X"), nil).Read(ctx)
	assert.True(t, fnerr.IsKind(err, fnerr.Decode))
}

func TestCache_TransportError(t *testing.T) {
	ctx := context.Background()
	client := inmem.NewInMemClient(ctx, "test")
	c := New(ctx, transformID, client)
	require.NoError(t, c.Bag(bagSpec, []byte("X"), nil).Add("a"))
	client.SetUnreachable(true)
	_, err := c.Bag(bagSpec, []byte("Y"), nil).Read(ctx)
	assert.True(t, fnerr.IsKind(err, fnerr.Transport))

	err = c.Flush(ctx)
	assert.True(t, fnerr.IsKind(err, fnerr.Transport))
}

func TestCache_FlushAggregatesErrors(t *testing.T) {
	ctx := context.Background()
	client := inmem.NewInMemClient(ctx, "test")
	c := New(ctx, transformID, client, WithFlushParallelism(2))
	require.NoError(t, c.Value(valueSpec, []byte("X"), nil).Write(1))
	require.NoError(t, c.Value(valueSpec, []byte("Y"), nil).Write(2))
	require.NoError(t, c.Value(valueSpec, []byte("Z"), nil).Write("ok"))
	err := c.Flush(ctx)
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
	// an encoding failure never clears the key
	_, _, clears := client.Requests()
	assert.Equal(t, int64(1), clears)
	assert.Equal(t, [][]byte{enc(t, "ok")}, client.Chunks(userKey("value", "Z")))
}

func TestCache_ContractViolations(t *testing.T) {
	ctx := context.Background()
	c := New(ctx, transformID, inmem.NewInMemClient(ctx, "test"))
	v := c.Value(valueSpec, nil, nil)
	require.NoError(t, c.Flush(ctx))
	assert.True(t, fnerr.IsKind(c.Flush(ctx), fnerr.ContractViolation))
	assert.True(t, fnerr.IsKind(v.Write("a"), fnerr.ContractViolation))
	_, _, err := v.Read(ctx)
	assert.True(t, fnerr.IsKind(err, fnerr.ContractViolation))
	assert.True(t, fnerr.IsKind(c.Bag(bagSpec, nil, nil).Add("a"), fnerr.ContractViolation))
	assert.True(t, fnerr.IsKind(c.Combining(combineSpec, nil, nil).Add("a"), fnerr.ContractViolation))
}

func TestCache_FlushManyKeys(t *testing.T) {
	ctx := context.Background()
	client := inmem.NewInMemClient(ctx, "test")
	c := New(ctx, transformID, client, WithFlushParallelism(3))
	for i := 0; i < 50; i++ {
		ek := []byte{byte(i)}
		require.NoError(t, c.Bag(bagSpec, ek, nil).Add("a"))
		require.NoError(t, c.Bag(bagSpec, ek, nil).Add("b"))
		require.NoError(t, c.Combining(combineSpec, ek, nil).Add("c"))
	}
	require.NoError(t, c.Flush(ctx))
	assert.Len(t, client.Keys(), 100)
	for i := 0; i < 50; i++ {
		ek := []byte{byte(i)}
		assert.Equal(t, [][]byte{enc(t, "a"), enc(t, "b")}, client.Chunks(state.NewUserStateKey(transformID, "bag", ek, nil)))
		assert.Equal(t, [][]byte{enc(t, "c")}, client.Chunks(state.NewUserStateKey(transformID, "combine", ek, nil)))
	}
}
