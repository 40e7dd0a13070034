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

package jetstream

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	natstest "github.com/numaproj/numaflow-harness/pkg/shared/clients/nats/test"
	"github.com/numaproj/numaflow-harness/pkg/state"
)

func TestFraming(t *testing.T) {
	log := frame(nil, []byte("a"))
	log = frame(log, nil)
	log = frame(log, []byte("bcd"))
	chunks, err := unframe(log)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), {}, []byte("bcd")}, chunks)

	_, err = unframe([]byte{5, 'a'})
	assert.Error(t, err)
}

func TestStateClient_Operations(t *testing.T) {
	s := natstest.RunJetStreamServer(t)
	defer natstest.ShutdownJetStreamServer(t, s)
	ctx := context.Background()
	kv := natstest.KeyValueBucket(t, s, "state")
	sc := NewStateClient(ctx, kv)

	k := state.NewUserStateKey("pTransformId", "bag", []byte("X"), nil)
	chunks, err := sc.FetchAll(ctx, k)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	require.NoError(t, sc.Append(ctx, k, []byte("X0")))
	require.NoError(t, sc.Append(ctx, k, []byte("X1")))
	chunks, err = sc.FetchAll(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("X0"), []byte("X1")}, chunks)

	require.NoError(t, sc.Clear(ctx, k))
	chunks, err = sc.FetchAll(ctx, k)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// a cleared key can be written again
	require.NoError(t, sc.Append(ctx, k, []byte("X2")))
	chunks, err = sc.FetchAll(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("X2")}, chunks)

	// clearing a key that never existed is fine
	require.NoError(t, sc.Clear(ctx, state.NewUserStateKey("pTransformId", "other", nil, nil)))

	// corrupted log
	_, err = kv.Put(k.Encoded(), []byte{9, 'x'})
	require.NoError(t, err)
	_, err = sc.FetchAll(ctx, k)
	assert.True(t, fnerr.IsKind(err, fnerr.Decode))
}

func TestStateClient_ConcurrentAppends(t *testing.T) {
	s := natstest.RunJetStreamServer(t)
	defer natstest.ShutdownJetStreamServer(t, s)
	ctx := context.Background()
	sc := NewStateClient(ctx, natstest.KeyValueBucket(t, s, "state"), WithMaxAppendAttempts(100))

	k := state.NewUserStateKey("t", "bag", nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, sc.Append(ctx, k, []byte(fmt.Sprintf("c%d", i))))
		}(i)
	}
	wg.Wait()
	chunks, err := sc.FetchAll(ctx, k)
	require.NoError(t, err)
	assert.Len(t, chunks, 10)
}

func TestStateClient_CancelledContext(t *testing.T) {
	s := natstest.RunJetStreamServer(t)
	defer natstest.ShutdownJetStreamServer(t, s)
	sc := NewStateClient(context.Background(), natstest.KeyValueBucket(t, s, "state"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	k := state.NewUserStateKey("t", "bag", nil, nil)
	_, err := sc.FetchAll(ctx, k)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, sc.Append(ctx, k, nil), context.Canceled)
	assert.ErrorIs(t, sc.Clear(ctx, k), context.Canceled)
}
