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

// Package udftest runs DoFns against an in memory state store without a bundle processor.
package udftest

import (
	"context"
	"fmt"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/sideinputs"
	"github.com/numaproj/numaflow-harness/pkg/state/cache"
	"github.com/numaproj/numaflow-harness/pkg/state/inmem"
	"github.com/numaproj/numaflow-harness/pkg/udf"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// MainTag is the main output tag of a Harness.
const MainTag = "main"

// Harness binds DoFns to a fresh state cache, a side input resolver and recording receivers. Every tag is routed
// to a destination of the same name.
type Harness struct {
	Client      *inmem.Client
	Cache       *cache.Cache
	KeyCoder    coder.Coder
	WindowCoder coder.Coder
	// Outputs are the values received per tag
	Outputs  map[string][]window.WindowedValue
	bindings *udf.Bindings
}

// NewHarness returns a harness for transform "t". The main tag is always declared.
func NewHarness(ctx context.Context, client *inmem.Client, states []cache.Spec, views []sideinputs.View, tags ...string) (*Harness, error) {
	h := &Harness{
		Client:      client,
		Cache:       cache.New(ctx, "t", client),
		KeyCoder:    coder.StringUtf8{},
		WindowCoder: coder.GlobalWindow{},
		Outputs:     make(map[string][]window.WindowedValue),
	}
	specs := make(map[string]cache.Spec, len(states))
	for _, s := range states {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		specs[s.ID] = s
	}
	resolver, err := sideinputs.NewResolver(ctx, "t", client, views)
	if err != nil {
		return nil, err
	}
	outputs := map[string]string{MainTag: MainTag}
	for _, t := range tags {
		outputs[t] = t
	}
	consumers := forwarder.NewConsumers()
	for tag := range outputs {
		tag := tag
		consumers.Put(tag, forwarder.ReceiverFunc(func(_ context.Context, wv window.WindowedValue) error {
			h.Outputs[tag] = append(h.Outputs[tag], wv)
			return nil
		}))
	}
	router, err := forwarder.NewRouter(ctx, "t", outputs, MainTag, consumers)
	if err != nil {
		return nil, err
	}
	h.bindings = &udf.Bindings{
		BundleID:   "test-bundle",
		States:     specs,
		Cache:      h.Cache,
		SideInputs: resolver,
		Outputs:    router,
	}
	return h, nil
}

// Process invokes fn once per window of wv. A coder.KV value is processed as a keyed element.
func (h *Harness) Process(ctx context.Context, fn udf.DoFn, wv window.WindowedValue) error {
	var (
		key        interface{}
		encodedKey []byte
		err        error
	)
	if kv, ok := wv.Value.(coder.KV); ok {
		key = kv.Key
		if encodedKey, err = coder.EncodeToBytes(h.KeyCoder, kv.Key); err != nil {
			return fmt.Errorf("failed to encode key: %w", err)
		}
	}
	for _, w := range wv.Windows {
		encodedWindow, err := coder.EncodeToBytes(h.WindowCoder, w)
		if err != nil {
			return fmt.Errorf("failed to encode window: %w", err)
		}
		pc := udf.NewProcessContext(h.bindings, udf.Scope{
			Element:       wv.InWindow(w),
			Key:           key,
			EncodedKey:    encodedKey,
			Window:        w,
			EncodedWindow: encodedWindow,
		})
		if err := fn.ProcessElement(ctx, pc); err != nil {
			return err
		}
	}
	return nil
}

// Values returns the payloads received on tag.
func (h *Harness) Values(tag string) []interface{} {
	var out []interface{}
	for _, wv := range h.Outputs[tag] {
		out = append(out, wv.Value)
	}
	return out
}
