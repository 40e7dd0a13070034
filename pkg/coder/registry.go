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

package coder

import (
	"fmt"
	"sort"
	"sync"
)

// Names of the coders in the default registry.
const (
	NameStringUtf8     = "string_utf8"
	NameBytes          = "bytes"
	NameVarInt         = "varint"
	NameJSON           = "json"
	NameGlobalWindow   = "global_window"
	NameIntervalWindow = "interval_window"
)

// Registry resolves coder names used by transform descriptors.
type Registry struct {
	lock   sync.RWMutex
	coders map[string]Coder
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{coders: make(map[string]Coder)}
}

// DefaultRegistry returns a Registry holding the builtin coders.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NameStringUtf8, StringUtf8{})
	r.Register(NameBytes, Bytes{})
	r.Register(NameVarInt, VarInt{})
	r.Register(NameJSON, JSON{})
	r.Register(NameGlobalWindow, GlobalWindow{})
	r.Register(NameIntervalWindow, IntervalWindow{})
	return r
}

// Register binds name to c, replacing any previous binding.
func (r *Registry) Register(name string, c Coder) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.coders[name] = c
}

// Lookup returns the coder bound to name.
func (r *Registry) Lookup(name string) (Coder, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	c, ok := r.coders[name]
	if !ok {
		return nil, fmt.Errorf("unknown coder %q", name)
	}
	return c, nil
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()
	names := make([]string, 0, len(r.coders))
	for n := range r.coders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
