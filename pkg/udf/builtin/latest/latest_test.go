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

package latest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/state"
	"github.com/numaproj/numaflow-harness/pkg/state/cache"
	"github.com/numaproj/numaflow-harness/pkg/state/inmem"
	"github.com/numaproj/numaflow-harness/pkg/udf/udftest"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

func TestLatest(t *testing.T) {
	ctx := context.Background()
	encodedX, err := coder.EncodeToBytes(coder.StringUtf8{}, "X")
	require.NoError(t, err)
	x0, err := coder.EncodeToBytes(coder.StringUtf8{}, "X0")
	require.NoError(t, err)
	k := state.NewUserStateKey("t", "last", encodedX, nil)
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(k, x0))
	h, err := udftest.NewHarness(ctx, client, []cache.Spec{
		{ID: "last", Kind: cache.KindValue, Coder: coder.StringUtf8{}},
	}, nil)
	require.NoError(t, err)

	fn, err := New(map[string]string{"state": "last"})
	require.NoError(t, err)
	for _, kv := range []coder.KV{{Key: "X", Value: "X1"}, {Key: "Y", Value: "Y1"}, {Key: "X", Value: "X2"}} {
		require.NoError(t, h.Process(ctx, fn, window.ValueInGlobalWindow(kv)))
	}
	assert.Equal(t, []interface{}{
		coder.KV{Key: "X", Value: "X0"},
		coder.KV{Key: "X", Value: "X1"},
	}, h.Values(udftest.MainTag))

	require.NoError(t, h.Cache.Flush(ctx))
	x2, err := coder.EncodeToBytes(coder.StringUtf8{}, "X2")
	require.NoError(t, err)
	assert.Equal(t, [][]byte{x2}, client.Chunks(k))
}
