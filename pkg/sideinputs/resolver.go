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

package sideinputs

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/metrics"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/state"
)

// Resolver resolves the side inputs of one bundle. It is not safe for concurrent use.
type Resolver struct {
	transformID string
	client      state.Client
	views       map[string]View
	// materialized snapshots by encoded side input key
	materialized map[string]*Iterable
	log          *zap.SugaredLogger
}

// NewResolver returns a resolver over the given views.
func NewResolver(ctx context.Context, transformID string, client state.Client, views []View) (*Resolver, error) {
	r := &Resolver{
		transformID:  transformID,
		client:       client,
		views:        make(map[string]View, len(views)),
		materialized: make(map[string]*Iterable),
		log:          logging.FromContext(ctx).With("transform", transformID),
	}
	for _, v := range views {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if _, ok := r.views[v.ID]; ok {
			return nil, fmt.Errorf("duplicate side input %q", v.ID)
		}
		r.views[v.ID] = v
	}
	return r, nil
}

// View returns the declared view of id.
func (r *Resolver) View(id string) (View, bool) {
	v, ok := r.views[id]
	return v, ok
}

// Resolve returns the side input id for the encoded window and element key, following the access pattern of its
// view: the single value for singletons, the view default for an empty PatternSingletonWithDefault, an *Iterable
// for PatternIterable.
func (r *Resolver) Resolve(ctx context.Context, id string, window, elementKey []byte) (interface{}, error) {
	view, ok := r.views[id]
	if !ok {
		return nil, fnerr.Newf(fnerr.ContractViolation, "side input %q is not declared by transform %s", id, r.transformID)
	}
	it, err := r.materialize(ctx, view, window, elementKey)
	if err != nil {
		return nil, err
	}
	switch view.Pattern {
	case PatternIterable:
		return it, nil
	case PatternSingletonWithDefault:
		if it.Len() == 0 {
			return view.Default, nil
		}
	case PatternSingleton:
		if it.Len() == 0 {
			return nil, fnerr.Newf(fnerr.MissingSideInput, "side input %q has no value", id)
		}
	}
	if it.Len() > 1 {
		return nil, fnerr.Newf(fnerr.InvalidSideInput, "singleton side input %q has %d values", id, it.Len())
	}
	return it.At(0), nil
}

func (r *Resolver) materialize(ctx context.Context, view View, window, elementKey []byte) (*Iterable, error) {
	key := state.NewSideInputKey(r.transformID, view.ID, elementKey, window)
	id := key.Encoded()
	if it, ok := r.materialized[id]; ok {
		metrics.SideInputCacheHits.WithLabelValues(r.transformID, view.ID).Inc()
		return it, nil
	}
	chunks, err := r.client.FetchAll(ctx, key)
	if err != nil {
		return nil, err
	}
	metrics.SideInputFetches.WithLabelValues(r.transformID, view.ID).Inc()
	values, err := coder.DecodeChunks(view.Coder, chunks)
	if err != nil {
		return nil, fmt.Errorf("side input %s: %w", key, err)
	}
	it := &Iterable{values: values}
	r.materialized[id] = it
	r.log.Debugw("Materialized side input", zap.Stringer("key", key), zap.Int("values", len(values)))
	return it, nil
}
