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

package sideinputs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/state"
	"github.com/numaproj/numaflow-harness/pkg/state/inmem"
)

const transformID = "pTransformId"

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

var (
	w1 = []byte("w1")
	w2 = []byte("w2")
)

func sideInputKey(id string, window []byte) state.Key {
	return state.NewSideInputKey(transformID, id, nil, window)
}

func views() []View {
	return []View{
		{ID: "defaultSingleton", Pattern: PatternSingletonWithDefault, Coder: coder.StringUtf8{}, Default: "defaultValue"},
		{ID: "singleton", Pattern: PatternSingleton, Coder: coder.StringUtf8{}},
		{ID: "iterable", Pattern: PatternIterable, Coder: coder.StringUtf8{}},
	}
}

func TestNewResolver_Invalid(t *testing.T) {
	ctx := context.Background()
	client := inmem.NewInMemClient(ctx, "test")
	_, err := NewResolver(ctx, transformID, client, []View{{ID: "a", Pattern: PatternIterable}})
	assert.Error(t, err)
	_, err = NewResolver(ctx, transformID, client, []View{
		{ID: "a", Pattern: PatternIterable, Coder: coder.Bytes{}},
		{ID: "a", Pattern: PatternSingleton, Coder: coder.Bytes{}},
	})
	assert.Error(t, err)
	_, err = NewResolver(ctx, transformID, client, []View{{ID: "a", Coder: coder.Bytes{}}})
	assert.Error(t, err)
}

func TestResolver_Patterns(t *testing.T) {
	ctx := context.Background()
	client := inmem.NewInMemClient(ctx, "test",
		inmem.WithChunks(sideInputKey("singleton", w1), enc(t, "singletonValue")),
		inmem.WithChunks(sideInputKey("iterable", w1), enc(t, "iterableValue1", "iterableValue2"), enc(t, "iterableValue3")),
	)
	before := client.Data()
	r, err := NewResolver(ctx, transformID, client, views())
	require.NoError(t, err)

	v, err := r.Resolve(ctx, "defaultSingleton", w1, nil)
	require.NoError(t, err)
	assert.Equal(t, "defaultValue", v)

	v, err = r.Resolve(ctx, "singleton", w1, nil)
	require.NoError(t, err)
	assert.Equal(t, "singletonValue", v)

	v, err = r.Resolve(ctx, "iterable", w1, nil)
	require.NoError(t, err)
	it := v.(*Iterable)
	assert.Equal(t, []interface{}{"iterableValue1", "iterableValue2", "iterableValue3"}, it.Values())

	assert.Equal(t, before, client.Data())
	_, appends, clears := client.Requests()
	assert.Zero(t, appends)
	assert.Zero(t, clears)
}

func TestResolver_CachesPerWindow(t *testing.T) {
	ctx := context.Background()
	k1, k2 := sideInputKey("iterable", w1), sideInputKey("iterable", w2)
	client := inmem.NewInMemClient(ctx, "test",
		inmem.WithChunks(k1, enc(t, "a")),
		inmem.WithChunks(k2, enc(t, "b", "c")),
	)
	r, err := NewResolver(ctx, transformID, client, views())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		v, err := r.Resolve(ctx, "iterable", w1, nil)
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a"}, v.(*Iterable).Values())
		v, err = r.Resolve(ctx, "iterable", w2, nil)
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"b", "c"}, v.(*Iterable).Values())
	}
	assert.Equal(t, int64(1), client.FetchCount(k1))
	assert.Equal(t, int64(1), client.FetchCount(k2))
}

func TestResolver_ElementKeyScope(t *testing.T) {
	ctx := context.Background()
	kx := state.NewSideInputKey(transformID, "singleton", []byte("X"), w1)
	client := inmem.NewInMemClient(ctx, "test",
		inmem.WithChunks(kx, enc(t, "x")),
		inmem.WithChunks(sideInputKey("singleton", w1), enc(t, "global")),
	)
	r, err := NewResolver(ctx, transformID, client, views())
	require.NoError(t, err)
	v, err := r.Resolve(ctx, "singleton", w1, []byte("X"))
	require.NoError(t, err)
	assert.Equal(t, "x", v)
	v, err = r.Resolve(ctx, "singleton", w1, nil)
	require.NoError(t, err)
	assert.Equal(t, "global", v)
}

func TestResolver_SnapshotOutlivesStore(t *testing.T) {
	ctx := context.Background()
	k := sideInputKey("iterable", w1)
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, enc(t, "a", "b")))
	r, err := NewResolver(ctx, transformID, client, views())
	require.NoError(t, err)
	v, err := r.Resolve(ctx, "iterable", w1, nil)
	require.NoError(t, err)
	it := v.(*Iterable)

	require.NoError(t, client.Clear(ctx, k))
	client.SetUnreachable(true)
	assert.Equal(t, 2, it.Len())
	assert.Equal(t, "b", it.At(1))
	var seen []interface{}
	it.ForEach(func(i int, v interface{}) bool {
		seen = append(seen, v)
		return true
	})
	assert.Equal(t, []interface{}{"a", "b"}, seen)

	// later resolutions are served from the bundle cache
	v, err = r.Resolve(ctx, "iterable", w1, nil)
	require.NoError(t, err)
	assert.Same(t, it, v)

	// the copy returned by Values does not alias the snapshot
	values := it.Values()
	values[0] = "z"
	assert.Equal(t, "a", it.At(0))
}

func TestResolver_Errors(t *testing.T) {
	ctx := context.Background()
	client := inmem.NewInMemClient(ctx, "test",
		inmem.WithChunks(sideInputKey("singleton", w2), enc(t, "a", "b")),
		inmem.WithChunks(sideInputKey("iterable", w2), []byte{0x09}),
		inmem.WithChunks(sideInputKey("defaultSingleton", w2), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}),
	)
	r, err := NewResolver(ctx, transformID, client, views())
	require.NoError(t, err)

	_, err = r.Resolve(ctx, "singleton", w1, nil)
	assert.True(t, fnerr.IsKind(err, fnerr.MissingSideInput))
	_, err = r.Resolve(ctx, "singleton", w2, nil)
	assert.True(t, fnerr.IsKind(err, fnerr.InvalidSideInput))
	_, err = r.Resolve(ctx, "iterable", w2, nil)
	assert.True(t, fnerr.IsKind(err, fnerr.Decode))
	_, err = r.Resolve(ctx, "defaultSingleton", w2, nil)
	assert.True(t, fnerr.IsKind(err, fnerr.Decode))
	_, err = r.Resolve(ctx, "unknown", w1, nil)
	assert.True(t, fnerr.IsKind(err, fnerr.ContractViolation))

	client.SetUnreachable(true)
	_, err = r.Resolve(ctx, "iterable", w1, nil)
	assert.True(t, fnerr.IsKind(err, fnerr.Transport))
}
