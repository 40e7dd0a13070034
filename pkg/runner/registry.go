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
	"fmt"
	"sort"
	"sync"

	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
	"github.com/numaproj/numaflow-harness/pkg/bundle"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/state"
)

// Params is what a Factory needs to build the runner of one transform.
type Params struct {
	Transform       *v1alpha1.Transform
	StateClient     state.Client
	Consumers       *forwarder.Consumers
	StartFunctions  *FunctionRegistry
	FinishFunctions *FunctionRegistry
	// Options are passed to the processor.
	Options []bundle.Option
}

// Factory creates the runner of a transform.
type Factory interface {
	CreateRunner(ctx context.Context, p Params) (*bundle.Processor, error)
}

// Registry maps transform URNs to factories.
type Registry struct {
	lock      sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a Registry with the ParDo factory bound to env.
func DefaultRegistry(env *Environment) *Registry {
	r := NewRegistry()
	_ = r.Register(v1alpha1.ParDoURN, NewParDoFactory(env))
	return r
}

// Register binds urn to f.
func (r *Registry) Register(urn string, f Factory) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.factories[urn]; ok {
		return fmt.Errorf("factory for %q is already registered", urn)
	}
	r.factories[urn] = f
	return nil
}

// Lookup returns the factory of urn.
func (r *Registry) Lookup(urn string) (Factory, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	f, ok := r.factories[urn]
	if !ok {
		return nil, fmt.Errorf("no factory registered for %q", urn)
	}
	return f, nil
}

// URNs returns the registered URNs, sorted.
func (r *Registry) URNs() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	urns := make([]string, 0, len(r.factories))
	for u := range r.factories {
		urns = append(urns, u)
	}
	sort.Strings(urns)
	return urns
}

// CreateRunner builds the runner of p.Transform with the factory of its URN.
func (r *Registry) CreateRunner(ctx context.Context, p Params) (*bundle.Processor, error) {
	if p.Transform == nil {
		return nil, fmt.Errorf("transform is required")
	}
	f, err := r.Lookup(p.Transform.GetURN())
	if err != nil {
		return nil, err
	}
	return f.CreateRunner(ctx, p)
}
