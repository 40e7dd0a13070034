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
	"fmt"
	"sort"
	"sync"

	"github.com/numaproj/numaflow-harness/pkg/state/cache"
)

// Constructor builds a DoFn from its arguments.
type Constructor func(args map[string]string) (DoFn, error)

// Registry maps DoFn names to their constructor.
type Registry struct {
	lock sync.RWMutex
	fns  map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Constructor)}
}

// Register adds a DoFn constructor under name.
func (r *Registry) Register(name string, c Constructor) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.fns[name]; ok {
		return fmt.Errorf("function %q is already registered", name)
	}
	r.fns[name] = c
	return nil
}

// New builds the DoFn registered under name.
func (r *Registry) New(name string, args map[string]string) (DoFn, error) {
	r.lock.RLock()
	c, ok := r.fns[name]
	r.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unrecognized function %q", name)
	}
	fn, err := c(args)
	if err != nil {
		return nil, fmt.Errorf("failed to create function %q: %w", name, err)
	}
	return fn, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	names := make([]string, 0, len(r.fns))
	for n := range r.fns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CombineRegistry maps combine function names to combine functions.
type CombineRegistry struct {
	lock sync.RWMutex
	fns  map[string]cache.CombineFn
}

// NewCombineRegistry returns an empty registry.
func NewCombineRegistry() *CombineRegistry {
	return &CombineRegistry{fns: make(map[string]cache.CombineFn)}
}

// Register adds fn under name.
func (r *CombineRegistry) Register(name string, fn cache.CombineFn) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.fns[name]; ok {
		return fmt.Errorf("combine function %q is already registered", name)
	}
	r.fns[name] = fn
	return nil
}

// Lookup returns the combine function registered under name.
func (r *CombineRegistry) Lookup(name string) (cache.CombineFn, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	fn, ok := r.fns[name]
	if !ok {
		return nil, fmt.Errorf("unrecognized combine function %q", name)
	}
	return fn, nil
}

// Names returns the registered names, sorted.
func (r *CombineRegistry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	names := make([]string, 0, len(r.fns))
	for n := range r.fns {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
