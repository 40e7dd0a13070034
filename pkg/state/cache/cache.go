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

package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/metrics"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/state"
)

type options struct {
	// flushParallelism is the number of keys flushed concurrently
	flushParallelism int
}

// Option to configure the Cache
type Option func(*options)

// WithFlushParallelism sets how many keys are flushed concurrently.
func WithFlushParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.flushParallelism = n
		}
	}
}

// Cache stages the state mutations of one bundle.
type Cache struct {
	transformID string
	client      state.Client
	// cells by encoded state key, order keeps the first access order
	cells   map[string]*cell
	order   []*cell
	flushed bool
	opts    *options
	log     *zap.SugaredLogger
}

// New returns an empty cache for one bundle of transformID.
func New(ctx context.Context, transformID string, client state.Client, opts ...Option) *Cache {
	o := &options{flushParallelism: 8}
	for _, opt := range opts {
		opt(o)
	}
	return &Cache{
		transformID: transformID,
		client:      client,
		cells:       make(map[string]*cell),
		opts:        o,
		log:         logging.FromContext(ctx).With("transform", transformID),
	}
}

// cell is the cached and staged view of one state key.
type cell struct {
	key  state.Key
	spec Spec

	fetched   bool
	fetchErr  error
	persisted []interface{}

	// cleared drops the persisted values
	cleared bool

	// value
	written bool
	value   interface{}
	// bag
	added []interface{}
	// combining
	hasLocal bool
	local    interface{}
}

func (cl *cell) dirty() bool {
	return cl.cleared || cl.written || len(cl.added) > 0 || cl.hasLocal
}

func (c *Cache) cellFor(spec Spec, elementKey, window []byte) *cell {
	key := state.NewUserStateKey(c.transformID, spec.ID, elementKey, window)
	id := key.Encoded()
	if cl, ok := c.cells[id]; ok {
		return cl
	}
	cl := &cell{key: key, spec: spec}
	c.cells[id] = cl
	c.order = append(c.order, cl)
	return cl
}

// load fetches and decodes the persisted values of cl, once.
func (c *Cache) load(ctx context.Context, cl *cell) error {
	if cl.fetched {
		return cl.fetchErr
	}
	chunks, err := c.client.FetchAll(ctx, cl.key)
	if err != nil {
		// transport failures are not cached, the bundle fails anyway
		return err
	}
	cl.fetched = true
	values, err := coder.DecodeChunks(cl.spec.Coder, chunks)
	if err != nil {
		cl.fetchErr = fmt.Errorf("state %s: %w", cl.key, err)
		return cl.fetchErr
	}
	cl.persisted = values
	c.log.Debugw("Loaded state", zap.Stringer("key", cl.key), zap.Int("values", len(values)))
	return nil
}

func (c *Cache) checkOpen() error {
	if c.flushed {
		return fnerr.New(fnerr.ContractViolation, "state accessed after the bundle state was flushed")
	}
	return nil
}

// Value returns the value cell of spec scoped to (elementKey, window).
func (c *Cache) Value(spec Spec, elementKey, window []byte) *ValueState {
	return &ValueState{c: c, cell: c.cellFor(spec, elementKey, window)}
}

// Bag returns the bag cell of spec scoped to (elementKey, window).
func (c *Cache) Bag(spec Spec, elementKey, window []byte) *BagState {
	return &BagState{c: c, cell: c.cellFor(spec, elementKey, window)}
}

// Combining returns the combining cell of spec scoped to (elementKey, window).
func (c *Cache) Combining(spec Spec, elementKey, window []byte) *CombiningState {
	return &CombiningState{c: c, cell: c.cellFor(spec, elementKey, window)}
}

// Pending returns the number of keys with staged mutations.
func (c *Cache) Pending() int {
	var n int
	for _, cl := range c.order {
		if cl.dirty() {
			n++
		}
	}
	return n
}

// Flush writes the staged mutations to the store. Every key is flushed independently, so the order keys are
// visited in never changes the resulting store content. Flush may run only once.
func (c *Cache) Flush(ctx context.Context) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	c.flushed = true
	start := time.Now()
	var dirty []*cell
	for _, cl := range c.order {
		if cl.dirty() {
			dirty = append(dirty, cl)
		}
	}
	if len(dirty) == 0 {
		return nil
	}
	errs := make([]error, len(dirty))
	var g errgroup.Group
	g.SetLimit(c.opts.flushParallelism)
	for i, cl := range dirty {
		i, cl := i, cl
		g.Go(func() error {
			if err := c.flushCell(ctx, cl); err != nil {
				errs[i] = fmt.Errorf("failed to flush state %s: %w", cl.key, err)
				return nil
			}
			metrics.StateFlushedKeys.WithLabelValues(c.transformID, cl.spec.Kind.String()).Inc()
			return nil
		})
	}
	_ = g.Wait()
	metrics.StateFlushLatency.WithLabelValues(c.transformID).Observe(float64(time.Since(start).Microseconds()))
	if err := multierr.Combine(errs...); err != nil {
		return err
	}
	c.log.Debugw("Flushed state", zap.Int("keys", len(dirty)), zap.Duration("took", time.Since(start)))
	return nil
}

// flushCell encodes the staged content of cl before touching the store, so an encoding failure never leaves a
// cleared key behind.
func (c *Cache) flushCell(ctx context.Context, cl *cell) error {
	var (
		clear  bool
		values []interface{}
	)
	switch cl.spec.Kind {
	case KindValue:
		clear = true
		if cl.written {
			values = []interface{}{cl.value}
		}
	case KindBag:
		clear = cl.cleared
		values = cl.added
	case KindCombining:
		accs, err := c.accumulators(ctx, cl)
		if err != nil {
			return err
		}
		clear = true
		if len(accs) > 0 {
			merged, err := cl.spec.CombineFn.MergeAccumulators(accs...)
			if err != nil {
				return err
			}
			values = []interface{}{merged}
		}
	default:
		return fnerr.Newf(fnerr.ContractViolation, "unknown state kind %d", cl.spec.Kind)
	}
	chunks := make([][]byte, 0, len(values))
	for _, v := range values {
		chunk, err := coder.EncodeToBytes(cl.spec.Coder, v)
		if err != nil {
			return err
		}
		chunks = append(chunks, chunk)
	}
	if clear {
		if err := c.client.Clear(ctx, cl.key); err != nil {
			return err
		}
	}
	for _, chunk := range chunks {
		if err := c.client.Append(ctx, cl.key, chunk); err != nil {
			return err
		}
	}
	return nil
}
