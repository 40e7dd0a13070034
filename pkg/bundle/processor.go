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

package bundle

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/metrics"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/sideinputs"
	"github.com/numaproj/numaflow-harness/pkg/state/cache"
	"github.com/numaproj/numaflow-harness/pkg/udf"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// State is the lifecycle state of a Processor.
type State int8

const (
	StateCreated State = iota
	StateStarted
	StateFinished
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateStarted:
		return "Started"
	case StateFinished:
		return "Finished"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Processor processes one bundle with a DoFn.
type Processor struct {
	cfg    Config
	opts   *options
	states map[string]cache.Spec
	router *forwarder.Router

	lifecycle State
	bundleID  string
	cache     *cache.Cache
	resolver  *sideinputs.Resolver
	bindings  *udf.Bindings
	startTime time.Time
	processed atomic.Int64
	log       *zap.SugaredLogger
}

var _ forwarder.Receiver = (*Processor)(nil)

// NewProcessor resolves the declared state cells, side inputs and outputs of cfg.
func NewProcessor(ctx context.Context, cfg Config, opts ...Option) (*Processor, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	states := make(map[string]cache.Spec, len(cfg.States))
	for _, s := range cfg.States {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("transform %s: %w", cfg.TransformID, err)
		}
		if _, ok := states[s.ID]; ok {
			return nil, fmt.Errorf("transform %s: duplicate state %q", cfg.TransformID, s.ID)
		}
		states[s.ID] = s
	}
	router, err := forwarder.NewRouter(ctx, cfg.TransformID, cfg.Outputs, cfg.MainTag, cfg.Consumers)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", cfg.TransformID, err)
	}
	if d, ok := cfg.DoFn.(udf.OutputDeclarer); ok {
		for _, tag := range d.OutputTags() {
			if _, ok := cfg.Outputs[tag]; !ok && tag != "" {
				return nil, fnerr.Newf(fnerr.ContractViolation, "transform %s: function emits to undeclared output tag %q", cfg.TransformID, tag)
			}
		}
	}
	return &Processor{
		cfg:       cfg,
		opts:      o,
		states:    states,
		router:    router,
		lifecycle: StateCreated,
		log:       logging.FromContext(ctx).With("transform", cfg.TransformID),
	}, nil
}

// State returns the lifecycle state.
func (p *Processor) State() State {
	return p.lifecycle
}

// BundleID returns the id of the bundle, empty before Start.
func (p *Processor) BundleID() string {
	return p.bundleID
}

// Processed returns the number of (element, window) pairs processed.
func (p *Processor) Processed() int64 {
	return p.processed.Load()
}

func (p *Processor) expect(s State, op string) error {
	if p.lifecycle != s {
		return fnerr.Newf(fnerr.ContractViolation, "%s called on a %s bundle of transform %s", op, p.lifecycle, p.cfg.TransformID)
	}
	return nil
}

// fail marks the bundle failed and returns err unchanged.
func (p *Processor) fail(err error) error {
	p.lifecycle = StateFailed
	metrics.BundlesFailed.WithLabelValues(p.cfg.TransformID, fnerr.KindOf(err).String()).Inc()
	p.log.Errorw("Bundle failed", zap.String("bundleID", p.bundleID), zap.Error(err))
	return err
}

// Start starts the bundle and runs the start bundle hook of the DoFn.
func (p *Processor) Start(ctx context.Context) error {
	if err := p.expect(StateCreated, "Start"); err != nil {
		return err
	}
	p.bundleID = uuid.NewString()
	p.log = p.log.With("bundleID", p.bundleID)
	ctx = logging.WithLogger(ctx, p.log)
	var cacheOpts []cache.Option
	if p.opts.flushParallelism > 0 {
		cacheOpts = append(cacheOpts, cache.WithFlushParallelism(p.opts.flushParallelism))
	}
	p.cache = cache.New(ctx, p.cfg.TransformID, p.cfg.StateClient, cacheOpts...)
	resolver, err := sideinputs.NewResolver(ctx, p.cfg.TransformID, p.cfg.StateClient, p.cfg.SideInputs)
	if err != nil {
		return p.fail(fnerr.Wrap(fnerr.ContractViolation, err, "invalid side inputs"))
	}
	p.resolver = resolver
	p.bindings = &udf.Bindings{
		BundleID:   p.bundleID,
		States:     p.states,
		Cache:      p.cache,
		SideInputs: p.resolver,
		Outputs:    p.router,
	}
	p.lifecycle = StateStarted
	p.startTime = time.Now()
	metrics.BundlesStarted.WithLabelValues(p.cfg.TransformID).Inc()
	p.log.Debug("Bundle started")
	if sb, ok := p.cfg.DoFn.(udf.StartBundler); ok {
		if err := sb.StartBundle(ctx, udf.NewBundleContext(p.bindings)); err != nil {
			return p.fail(err)
		}
	}
	return nil
}

// ProcessElement invokes the DoFn once per window of wv. Outputs are emitted and state mutations staged before
// it returns.
func (p *Processor) ProcessElement(ctx context.Context, wv window.WindowedValue) error {
	if err := p.expect(StateStarted, "ProcessElement"); err != nil {
		return err
	}
	var (
		key        interface{}
		encodedKey []byte
	)
	if p.cfg.Keyed {
		kv, ok := wv.Value.(coder.KV)
		if !ok {
			return p.fail(fnerr.Newf(fnerr.ContractViolation, "keyed transform %s got a %T element", p.cfg.TransformID, wv.Value))
		}
		b, err := coder.EncodeToBytes(p.cfg.KeyCoder, kv.Key)
		if err != nil {
			return p.fail(fnerr.Wrap(fnerr.ContractViolation, err, "failed to encode element key"))
		}
		key, encodedKey = kv.Key, b
	}
	for _, w := range wv.Windows {
		encodedWindow, err := coder.EncodeToBytes(p.cfg.WindowCoder, w)
		if err != nil {
			return p.fail(fnerr.Wrap(fnerr.ContractViolation, err, "failed to encode window"))
		}
		pc := udf.NewProcessContext(p.bindings, udf.Scope{
			Element:       wv.InWindow(w),
			Key:           key,
			EncodedKey:    encodedKey,
			Window:        w,
			EncodedWindow: encodedWindow,
		})
		if err := p.cfg.DoFn.ProcessElement(ctx, pc); err != nil {
			return p.fail(err)
		}
		p.processed.Inc()
		metrics.ElementsProcessed.WithLabelValues(p.cfg.TransformID).Inc()
	}
	return nil
}

// Accept makes the Processor the receiver of its main input.
func (p *Processor) Accept(ctx context.Context, wv window.WindowedValue) error {
	return p.ProcessElement(ctx, wv)
}

// Finish runs the finish bundle hook of the DoFn, then flushes the staged state. State written by the hook is
// persisted with the rest of the bundle. A failing hook fails the bundle and nothing is flushed.
func (p *Processor) Finish(ctx context.Context) error {
	if err := p.expect(StateStarted, "Finish"); err != nil {
		return err
	}
	ctx = logging.WithLogger(ctx, p.log)
	if fb, ok := p.cfg.DoFn.(udf.FinishBundler); ok {
		if err := fb.FinishBundle(ctx, udf.NewBundleContext(p.bindings)); err != nil {
			return p.fail(err)
		}
	}
	pending := p.cache.Pending()
	if err := p.cache.Flush(ctx); err != nil {
		return p.fail(err)
	}
	p.lifecycle = StateFinished
	metrics.BundlesFinished.WithLabelValues(p.cfg.TransformID).Inc()
	metrics.BundleProcessingTime.WithLabelValues(p.cfg.TransformID).Observe(float64(time.Since(p.startTime).Microseconds()))
	p.log.Infow("Bundle finished", zap.Int64("processed", p.processed.Load()), zap.Int("flushedKeys", pending), zap.Duration("took", time.Since(p.startTime)))
	return nil
}
