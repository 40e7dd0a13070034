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

package forwarder

import (
	"sync"
)

// Consumers is an ordered multimap of destination id to receivers. It is safe for concurrent use.
type Consumers struct {
	lock      sync.RWMutex
	receivers map[string][]Receiver
	keys      []string
}

// NewConsumers returns an empty Consumers.
func NewConsumers() *Consumers {
	return &Consumers{receivers: make(map[string][]Receiver)}
}

// Put registers r after the receivers already registered for destination.
func (c *Consumers) Put(destination string, r Receiver) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, ok := c.receivers[destination]; !ok {
		c.keys = append(c.keys, destination)
	}
	c.receivers[destination] = append(c.receivers[destination], r)
}

// Get returns the receivers of destination in registration order.
func (c *Consumers) Get(destination string) []Receiver {
	c.lock.RLock()
	defer c.lock.RUnlock()
	rs := c.receivers[destination]
	out := make([]Receiver, len(rs))
	copy(out, rs)
	return out
}

// Keys returns the destinations with at least one receiver, in first registration order.
func (c *Consumers) Keys() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}
