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
	"strconv"

	"github.com/goccy/go-json"

	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
	"github.com/numaproj/numaflow-harness/pkg/bundle"
	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/sideinputs"
	"github.com/numaproj/numaflow-harness/pkg/state"
	"github.com/numaproj/numaflow-harness/pkg/state/cache"
)

// ParDoFactory creates the runners of ParDo transforms.
type ParDoFactory struct {
	env *Environment
}

var _ Factory = (*ParDoFactory)(nil)

func NewParDoFactory(env *Environment) *ParDoFactory {
	return &ParDoFactory{env: env}
}

// CreateRunner resolves the transform, registers the processor as the receiver of the main input and adds its
// Start and Finish to the function registries of p.
func (f *ParDoFactory) CreateRunner(ctx context.Context, p Params) (*bundle.Processor, error) {
	t := p.Transform
	if t == nil {
		return nil, fmt.Errorf("transform is required")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if p.Consumers == nil || p.StartFunctions == nil || p.FinishFunctions == nil {
		return nil, fmt.Errorf("transform %s: consumers and bundle function registries are required", t.ID)
	}
	cfg, err := f.resolve(t)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", t.ID, err)
	}
	cfg.StateClient = state.NewInstrumentedClient(p.StateClient, t.ID)
	cfg.Consumers = p.Consumers
	processor, err := bundle.NewProcessor(ctx, cfg, p.Options...)
	if err != nil {
		return nil, err
	}
	input, _ := t.GetMainInput()
	p.Consumers.Put(input, processor)
	p.StartFunctions.Add(t.ID, processor.Start)
	p.FinishFunctions.Add(t.ID, processor.Finish)
	logging.FromContext(ctx).Infow("Created ParDo runner", "transform", t.ID, "fn", t.Fn.Name, "input", input)
	return processor, nil
}

func (f *ParDoFactory) resolve(t *v1alpha1.Transform) (bundle.Config, error) {
	cfg := bundle.Config{
		TransformID: t.ID,
		Keyed:       t.Keyed,
		Outputs:     t.Outputs,
		MainTag:     t.GetMainOutput(),
	}
	fn, err := f.env.Fns.New(t.Fn.Name, t.Fn.Args)
	if err != nil {
		return cfg, err
	}
	cfg.DoFn = fn
	if cfg.WindowCoder, err = f.env.Coders.Lookup(t.GetWindowCoder()); err != nil {
		return cfg, err
	}
	if t.Keyed {
		if cfg.KeyCoder, err = f.env.Coders.Lookup(t.GetKeyCoder()); err != nil {
			return cfg, err
		}
	}
	for _, s := range t.State {
		spec, err := f.stateSpec(s)
		if err != nil {
			return cfg, err
		}
		cfg.States = append(cfg.States, spec)
	}
	for _, si := range t.SideInputs {
		view, err := f.view(si)
		if err != nil {
			return cfg, err
		}
		cfg.SideInputs = append(cfg.SideInputs, view)
	}
	return cfg, nil
}

func (f *ParDoFactory) stateSpec(s v1alpha1.StateSpec) (cache.Spec, error) {
	if s.Coder == coder.NameGlobalWindow {
		return cache.Spec{}, fmt.Errorf("state %q: coder %q encodes no bytes", s.ID, s.Coder)
	}
	c, err := f.env.Coders.Lookup(s.Coder)
	if err != nil {
		return cache.Spec{}, fmt.Errorf("state %q: %w", s.ID, err)
	}
	spec := cache.Spec{ID: s.ID, Coder: c}
	switch s.Kind {
	case v1alpha1.StateKindValue:
		spec.Kind = cache.KindValue
	case v1alpha1.StateKindBag:
		spec.Kind = cache.KindBag
	case v1alpha1.StateKindCombining:
		spec.Kind = cache.KindCombining
		if spec.CombineFn, err = f.env.Combines.Lookup(s.CombineFn); err != nil {
			return cache.Spec{}, fmt.Errorf("state %q: %w", s.ID, err)
		}
		if n, ok := spec.CombineFn.(cache.AccumulatorCoderNamer); ok && n.AccumulatorCoder() != s.Coder {
			return cache.Spec{}, fmt.Errorf("state %q: combine function %q requires coder %q, got %q", s.ID, s.CombineFn, n.AccumulatorCoder(), s.Coder)
		}
	default:
		return cache.Spec{}, fmt.Errorf("state %q: unknown kind %q", s.ID, s.Kind)
	}
	return spec, nil
}

func (f *ParDoFactory) view(si v1alpha1.SideInputSpec) (sideinputs.View, error) {
	if si.Coder == coder.NameGlobalWindow {
		return sideinputs.View{}, fmt.Errorf("side input %q: coder %q encodes no bytes", si.ID, si.Coder)
	}
	c, err := f.env.Coders.Lookup(si.Coder)
	if err != nil {
		return sideinputs.View{}, fmt.Errorf("side input %q: %w", si.ID, err)
	}
	view := sideinputs.View{ID: si.ID, Coder: c}
	switch si.Pattern {
	case v1alpha1.SideInputSingleton:
		view.Pattern = sideinputs.PatternSingleton
	case v1alpha1.SideInputSingletonWithDefault:
		view.Pattern = sideinputs.PatternSingletonWithDefault
		if view.Default, err = parseDefault(c, *si.Default); err != nil {
			return sideinputs.View{}, fmt.Errorf("side input %q: %w", si.ID, err)
		}
	case v1alpha1.SideInputIterable:
		view.Pattern = sideinputs.PatternIterable
	default:
		return sideinputs.View{}, fmt.Errorf("side input %q: unknown pattern %q", si.ID, si.Pattern)
	}
	return view, nil
}

// parseDefault converts the textual default of a side input to a value of its coder.
func parseDefault(c coder.Coder, s string) (interface{}, error) {
	switch c.(type) {
	case coder.StringUtf8:
		return s, nil
	case coder.Bytes:
		return []byte(s), nil
	case coder.VarInt:
		return strconv.ParseInt(s, 10, 64)
	case coder.JSON:
		var v interface{}
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("no textual default for %T values", c)
	}
}
