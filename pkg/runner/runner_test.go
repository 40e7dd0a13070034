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

package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
	"github.com/numaproj/numaflow-harness/pkg/bundle"
	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/state"
	"github.com/numaproj/numaflow-harness/pkg/state/inmem"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func encode(t *testing.T, c coder.Coder, v interface{}) []byte {
	t.Helper()
	b, err := coder.EncodeToBytes(c, v)
	require.NoError(t, err)
	return b
}

type collector struct {
	values []interface{}
}

func (c *collector) Accept(_ context.Context, wv window.WindowedValue) error {
	c.values = append(c.values, wv.Value)
	return nil
}

func newEnv(t *testing.T) *Environment {
	env, err := NewEnvironment()
	require.NoError(t, err)
	return env
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(newEnv(t))
	f, err := r.Lookup(v1alpha1.ParDoURN)
	require.NoError(t, err)
	assert.IsType(t, &ParDoFactory{}, f)
	assert.Equal(t, []string{v1alpha1.ParDoURN}, r.URNs())
	assert.Error(t, r.Register(v1alpha1.ParDoURN, f))
	_, err = r.Lookup("beam:transform:flatten:v1")
	assert.Error(t, err)
}

func countTransform() *v1alpha1.Transform {
	return &v1alpha1.Transform{
		ID:       "pTransformId",
		Fn:       v1alpha1.Fn{Name: "count", Args: map[string]string{"state": "counter"}},
		Inputs:   map[string]string{"input": "inputPC"},
		Outputs:  map[string]string{"main": "outputPC"},
		Keyed:    true,
		KeyCoder: coder.NameStringUtf8,
		State: []v1alpha1.StateSpec{
			{ID: "counter", Kind: v1alpha1.StateKindCombining, Coder: coder.NameVarInt, CombineFn: "count"},
		},
	}
}

func TestParDoFactory_CreateRunner(t *testing.T) {
	ctx := context.Background()
	counterKey := func(k string) state.Key {
		return state.NewUserStateKey("pTransformId", "counter", encode(t, coder.StringUtf8{}, k), nil)
	}
	client := inmem.NewInMemClient(ctx, "test", inmem.WithChunks(counterKey("X"), encode(t, coder.VarInt{}, int64(5))))
	b := NewBundle()
	out := &collector{}
	b.Consumers.Put("outputPC", out)

	processor, err := DefaultRegistry(newEnv(t)).CreateRunner(ctx, b.Params(Params{
		Transform:   countTransform(),
		StateClient: client,
		Options:     []bundle.Option{bundle.WithFlushParallelism(1)},
	}))
	require.NoError(t, err)
	assert.Equal(t, []forwarder.Receiver{processor}, b.Consumers.Get("inputPC"))
	assert.Equal(t, 1, b.StartFunctions.Len())
	assert.Equal(t, 1, b.FinishFunctions.Len())

	err = b.Execute(ctx, "inputPC", []window.WindowedValue{
		window.ValueInGlobalWindow(coder.KV{Key: "X", Value: "a"}),
		window.ValueInGlobalWindow(coder.KV{Key: "X", Value: "b"}),
		window.ValueInGlobalWindow(coder.KV{Key: "Y", Value: "c"}),
	})
	require.NoError(t, err)
	assert.Equal(t, bundle.StateFinished, processor.State())
	assert.Equal(t, []interface{}{
		coder.KV{Key: "X", Value: int64(6)},
		coder.KV{Key: "X", Value: int64(7)},
		coder.KV{Key: "Y", Value: int64(1)},
	}, out.values)
	assert.Equal(t, map[string][]byte{
		counterKey("X").Encoded(): encode(t, coder.VarInt{}, int64(7)),
		counterKey("Y").Encoded(): encode(t, coder.VarInt{}, int64(1)),
	}, client.Data())
}

func TestParDoFactory_SideInputDefault(t *testing.T) {
	ctx := context.Background()
	def := "none"
	client := inmem.NewInMemClient(ctx, "test")
	b := NewBundle()
	out := &collector{}
	b.Consumers.Put("outputPC", out)
	_, err := NewParDoFactory(newEnv(t)).CreateRunner(ctx, b.Params(Params{
		Transform: &v1alpha1.Transform{
			ID:      "enricher",
			Fn:      v1alpha1.Fn{Name: "enrich", Args: map[string]string{"sideInput": "region"}},
			Inputs:  map[string]string{"input": "inputPC"},
			Outputs: map[string]string{"main": "outputPC"},
			SideInputs: []v1alpha1.SideInputSpec{
				{ID: "region", Pattern: v1alpha1.SideInputSingletonWithDefault, Coder: coder.NameStringUtf8, Default: &def},
			},
		},
		StateClient: client,
	}))
	require.NoError(t, err)
	require.NoError(t, b.Execute(ctx, "inputPC", []window.WindowedValue{window.ValueInGlobalWindow("a")}))
	assert.Equal(t, []interface{}{coder.KV{Key: "a", Value: "none"}}, out.values)
	assert.Empty(t, client.Data())
}

func TestParDoFactory_Errors(t *testing.T) {
	ctx := context.Background()
	env := newEnv(t)
	tests := map[string]func(*v1alpha1.Transform){
		"invalid":          func(tr *v1alpha1.Transform) { tr.ID = "" },
		"unknown fn":       func(tr *v1alpha1.Transform) { tr.Fn.Name = "unknown" },
		"unknown coder":    func(tr *v1alpha1.Transform) { tr.State[0].Coder = "avro" },
		"unknown combine":  func(tr *v1alpha1.Transform) { tr.State[0].CombineFn = "max" },
		"unknown window":   func(tr *v1alpha1.Transform) { tr.WindowCoder = "session" },
		"unknown key":      func(tr *v1alpha1.Transform) { tr.KeyCoder = "avro" },
		"bad default":      func(tr *v1alpha1.Transform) { tr.SideInputs = badDefault() },
		"unbound main tag": func(tr *v1alpha1.Transform) { tr.MainOutput = "late" },
		"combine coder":    func(tr *v1alpha1.Transform) { tr.State[0].Coder = coder.NameJSON },
		"zero width state": func(tr *v1alpha1.Transform) { tr.State[0].Coder = coder.NameGlobalWindow },
		"zero width side input": func(tr *v1alpha1.Transform) {
			tr.SideInputs = []v1alpha1.SideInputSpec{{ID: "w", Pattern: v1alpha1.SideInputIterable, Coder: coder.NameGlobalWindow}}
		},
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			tr := countTransform()
			mutate(tr)
			b := NewBundle()
			_, err := NewParDoFactory(env).CreateRunner(ctx, b.Params(Params{
				Transform:   tr,
				StateClient: inmem.NewInMemClient(ctx, "test"),
			}))
			assert.Error(t, err)
			assert.Empty(t, b.Consumers.Keys())
			assert.Zero(t, b.StartFunctions.Len())
		})
	}
}

func TestParDoFactory_CombineCoderMismatch(t *testing.T) {
	ctx := context.Background()
	tr := countTransform()
	tr.State[0].Coder = coder.NameJSON
	tr.State[0].CombineFn = "sum"
	_, err := NewParDoFactory(newEnv(t)).CreateRunner(ctx, NewBundle().Params(Params{
		Transform:   tr,
		StateClient: inmem.NewInMemClient(ctx, "test"),
	}))
	assert.EqualError(t, err, `transform `+tr.ID+`: state "counter": combine function "sum" requires coder "varint", got "json"`)

	tr.State[0].Coder = coder.NameVarInt
	_, err = NewParDoFactory(newEnv(t)).CreateRunner(ctx, NewBundle().Params(Params{
		Transform:   tr,
		StateClient: inmem.NewInMemClient(ctx, "test"),
	}))
	assert.NoError(t, err)
}

func badDefault() []v1alpha1.SideInputSpec {
	def := "ten"
	return []v1alpha1.SideInputSpec{{ID: "n", Pattern: v1alpha1.SideInputSingletonWithDefault, Coder: coder.NameVarInt, Default: &def}}
}

func TestParseDefault(t *testing.T) {
	v, err := parseDefault(coder.VarInt{}, "10")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)
	v, err = parseDefault(coder.Bytes{}, "ab")
	require.NoError(t, err)
	assert.Equal(t, []byte("ab"), v)
	v, err = parseDefault(coder.JSON{}, `{"a":1}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"a": float64(1)}, v)
	_, err = parseDefault(coder.GlobalWindow{}, "")
	assert.Error(t, err)
}

func TestFunctionRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewFunctionRegistry()
	var calls []string
	boom := errors.New("boom")
	r.Add("a", func(context.Context) error { calls = append(calls, "a"); return nil })
	r.Add("b", func(context.Context) error { calls = append(calls, "b"); return boom })
	r.Add("c", func(context.Context) error { calls = append(calls, "c"); return nil })
	err := r.Run(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "b")
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestBundle_ExecuteWithoutReceiver(t *testing.T) {
	assert.Error(t, NewBundle().Execute(context.Background(), "inputPC", nil))
}
