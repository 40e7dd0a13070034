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

package udf

import (
	"context"
	"time"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/sideinputs"
	"github.com/numaproj/numaflow-harness/pkg/state/cache"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// Bindings are the per bundle collaborators a context gives access to.
type Bindings struct {
	BundleID string
	// States are the declared state cells by id
	States     map[string]cache.Spec
	Cache      *cache.Cache
	SideInputs *sideinputs.Resolver
	Outputs    forwarder.Emitter
}

// Scope is the (element, key, window) a ProcessContext is bound to.
type Scope struct {
	// Element is the processed value restricted to Window
	Element window.WindowedValue
	// Key is the decoded key of a keyed element, nil otherwise
	Key        interface{}
	EncodedKey []byte
	Window     window.Window
	// EncodedWindow is the window as encoded by the window coder of the transform
	EncodedWindow []byte
}

// ProcessContext is handed to DoFn.ProcessElement.
type ProcessContext struct {
	bindings *Bindings
	scope    Scope
}

// NewProcessContext returns a context bound to scope.
func NewProcessContext(b *Bindings, scope Scope) *ProcessContext {
	return &ProcessContext{bindings: b, scope: scope}
}

// Element returns the processed value. A keyed element is a coder.KV.
func (pc *ProcessContext) Element() interface{} {
	return pc.scope.Element.Value
}

// Payload returns the value of a keyed element, the element itself otherwise.
func (pc *ProcessContext) Payload() interface{} {
	if kv, ok := pc.scope.Element.Value.(coder.KV); ok {
		return kv.Value
	}
	return pc.scope.Element.Value
}

// WindowedElement returns the processed value with its windowing metadata.
func (pc *ProcessContext) WindowedElement() window.WindowedValue {
	return pc.scope.Element
}

// Key returns the key of a keyed element, nil otherwise.
func (pc *ProcessContext) Key() interface{} {
	return pc.scope.Key
}

// Window returns the window the element is processed in.
func (pc *ProcessContext) Window() window.Window {
	return pc.scope.Window
}

// Timestamp returns the timestamp of the element.
func (pc *ProcessContext) Timestamp() time.Time {
	return pc.scope.Element.Timestamp
}

// BundleID returns the id of the running bundle.
func (pc *ProcessContext) BundleID() string {
	return pc.bindings.BundleID
}

// Output emits v to the main output, in the window and with the timestamp of the element.
func (pc *ProcessContext) Output(ctx context.Context, v interface{}) error {
	return pc.OutputTo(ctx, "", v)
}

// OutputTo emits v to the output tag, in the window and with the timestamp of the element.
func (pc *ProcessContext) OutputTo(ctx context.Context, tag string, v interface{}) error {
	return pc.bindings.Outputs.Emit(ctx, tag, pc.scope.Element.WithValue(v))
}

func (pc *ProcessContext) spec(id string, kind cache.Kind) (cache.Spec, error) {
	spec, ok := pc.bindings.States[id]
	if !ok {
		return cache.Spec{}, fnerr.Newf(fnerr.ContractViolation, "state %q is not declared", id)
	}
	if spec.Kind != kind {
		return cache.Spec{}, fnerr.Newf(fnerr.ContractViolation, "state %q is a %s state, not %s", id, spec.Kind, kind)
	}
	return spec, nil
}

// Value returns the value state id of the current key and window.
func (pc *ProcessContext) Value(id string) (*cache.ValueState, error) {
	spec, err := pc.spec(id, cache.KindValue)
	if err != nil {
		return nil, err
	}
	return pc.bindings.Cache.Value(spec, pc.scope.EncodedKey, pc.scope.EncodedWindow), nil
}

// Bag returns the bag state id of the current key and window.
func (pc *ProcessContext) Bag(id string) (*cache.BagState, error) {
	spec, err := pc.spec(id, cache.KindBag)
	if err != nil {
		return nil, err
	}
	return pc.bindings.Cache.Bag(spec, pc.scope.EncodedKey, pc.scope.EncodedWindow), nil
}

// Combining returns the combining state id of the current key and window.
func (pc *ProcessContext) Combining(id string) (*cache.CombiningState, error) {
	spec, err := pc.spec(id, cache.KindCombining)
	if err != nil {
		return nil, err
	}
	return pc.bindings.Cache.Combining(spec, pc.scope.EncodedKey, pc.scope.EncodedWindow), nil
}

// SideInput resolves the side input id in the current window.
func (pc *ProcessContext) SideInput(ctx context.Context, id string) (interface{}, error) {
	return pc.bindings.SideInputs.Resolve(ctx, id, pc.scope.EncodedWindow, nil)
}

// KeyedSideInput resolves the side input id in the current window, for the key of the element.
func (pc *ProcessContext) KeyedSideInput(ctx context.Context, id string) (interface{}, error) {
	return pc.bindings.SideInputs.Resolve(ctx, id, pc.scope.EncodedWindow, pc.scope.EncodedKey)
}

// BundleContext is handed to the bundle hooks of a DoFn.
type BundleContext struct {
	bindings *Bindings
}

// NewBundleContext returns a bundle context.
func NewBundleContext(b *Bindings) *BundleContext {
	return &BundleContext{bindings: b}
}

// BundleID returns the id of the running bundle.
func (bc *BundleContext) BundleID() string {
	return bc.bindings.BundleID
}

// Output emits wv to the output tag, the empty tag being the main output.
func (bc *BundleContext) Output(ctx context.Context, tag string, wv window.WindowedValue) error {
	return bc.bindings.Outputs.Emit(ctx, tag, wv)
}
