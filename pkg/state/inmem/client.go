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

/*
Package inmem implements the state client over a process local map. It keeps per key request counters and can
simulate an unreachable store, which makes it the state store double used by the engine tests.
*/
package inmem

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/state"
)

// Client implements state.Client backed up by an in mem map.
type Client struct {
	name string
	lock sync.RWMutex
	// logs maps the encoded key to its chunk log
	logs        map[string][][]byte
	keys        map[string]state.Key
	fetchCounts map[string]*atomic.Int64
	fetches     atomic.Int64
	appends     atomic.Int64
	clears      atomic.Int64
	unreachable atomic.Bool
	log         *zap.SugaredLogger
}

var _ state.Client = (*Client)(nil)

type Option func(*Client)

// WithChunks seeds the log of key with the given chunks.
func WithChunks(key state.Key, chunks ...[]byte) Option {
	return func(c *Client) {
		id := key.Encoded()
		for _, chunk := range chunks {
			c.logs[id] = append(c.logs[id], copyOf(chunk))
		}
		c.keys[id] = key
	}
}

// NewInMemClient returns an in mem state client.
func NewInMemClient(ctx context.Context, name string, opts ...Option) *Client {
	c := &Client{
		name:        name,
		logs:        make(map[string][][]byte),
		keys:        make(map[string]state.Key),
		fetchCounts: make(map[string]*atomic.Int64),
		log:         logging.FromContext(ctx).With("stateStore", name),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func copyOf(b []byte) []byte {
	var v = make([]byte, len(b))
	copy(v, b)
	return v
}

func (c *Client) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fnerr.Wrap(fnerr.Transport, err, "state request cancelled")
	}
	if c.unreachable.Load() {
		return fnerr.Newf(fnerr.Transport, "state store %s is unreachable", c.name)
	}
	return nil
}

// FetchAll returns a copy of the chunks of key.
func (c *Client) FetchAll(ctx context.Context, key state.Key) ([][]byte, error) {
	if err := c.check(ctx); err != nil {
		return nil, err
	}
	id := key.Encoded()
	c.lock.Lock()
	counter, ok := c.fetchCounts[id]
	if !ok {
		counter = atomic.NewInt64(0)
		c.fetchCounts[id] = counter
	}
	chunks := make([][]byte, 0, len(c.logs[id]))
	for _, chunk := range c.logs[id] {
		chunks = append(chunks, copyOf(chunk))
	}
	c.lock.Unlock()
	counter.Inc()
	c.fetches.Inc()
	c.log.Debugw("Fetched state", zap.Stringer("key", key), zap.Int("chunks", len(chunks)))
	return chunks, nil
}

// Append adds chunk at the end of the log of key.
func (c *Client) Append(ctx context.Context, key state.Key, chunk []byte) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	id := key.Encoded()
	c.lock.Lock()
	defer c.lock.Unlock()
	c.logs[id] = append(c.logs[id], copyOf(chunk))
	c.keys[id] = key
	c.appends.Inc()
	return nil
}

// Clear drops the log of key.
func (c *Client) Clear(ctx context.Context, key state.Key) error {
	if err := c.check(ctx); err != nil {
		return err
	}
	id := key.Encoded()
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.logs, id)
	delete(c.keys, id)
	c.clears.Inc()
	return nil
}

// SetUnreachable makes every following request fail with a transport error until reset.
func (c *Client) SetUnreachable(unreachable bool) {
	c.unreachable.Store(unreachable)
}

// Data returns a snapshot of the store: encoded key to the concatenation of its chunks.
func (c *Client) Data() map[string][]byte {
	c.lock.RLock()
	defer c.lock.RUnlock()
	data := make(map[string][]byte, len(c.logs))
	for id, chunks := range c.logs {
		var b []byte
		for _, chunk := range chunks {
			b = append(b, chunk...)
		}
		data[id] = b
	}
	return data
}

// Chunks returns a copy of the chunks of key.
func (c *Client) Chunks(key state.Key) [][]byte {
	c.lock.RLock()
	defer c.lock.RUnlock()
	var chunks [][]byte
	for _, chunk := range c.logs[key.Encoded()] {
		chunks = append(chunks, copyOf(chunk))
	}
	return chunks
}

// Keys returns the keys holding at least one chunk, ordered by their string form.
func (c *Client) Keys() []state.Key {
	c.lock.RLock()
	defer c.lock.RUnlock()
	keys := make([]state.Key, 0, len(c.keys))
	for _, k := range c.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}

// FetchCount returns the number of FetchAll calls made for key.
func (c *Client) FetchCount(key state.Key) int64 {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if counter, ok := c.fetchCounts[key.Encoded()]; ok {
		return counter.Load()
	}
	return 0
}

// Requests returns the number of fetch, append and clear calls served.
func (c *Client) Requests() (fetches, appends, clears int64) {
	return c.fetches.Load(), c.appends.Load(), c.clears.Load()
}
