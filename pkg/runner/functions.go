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
	"sync"
)

type namedFunction struct {
	name string
	fn   func(ctx context.Context) error
}

// FunctionRegistry is an ordered list of bundle callbacks, e.g. the start or finish calls of every transform
// of a stage.
type FunctionRegistry struct {
	lock sync.Mutex
	fns  []namedFunction
}

// NewFunctionRegistry returns an empty FunctionRegistry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{}
}

// Add appends fn, name identifies it in errors.
func (r *FunctionRegistry) Add(name string, fn func(ctx context.Context) error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.fns = append(r.fns, namedFunction{name: name, fn: fn})
}

// Len returns the number of registered functions.
func (r *FunctionRegistry) Len() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.fns)
}

// Run calls the functions in registration order and stops at the first error.
func (r *FunctionRegistry) Run(ctx context.Context) error {
	r.lock.Lock()
	fns := make([]namedFunction, len(r.fns))
	copy(fns, r.fns)
	r.lock.Unlock()
	for _, f := range fns {
		if err := f.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
	}
	return nil
}
