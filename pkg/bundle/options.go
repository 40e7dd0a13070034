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
	"fmt"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/sideinputs"
	"github.com/numaproj/numaflow-harness/pkg/state"
	"github.com/numaproj/numaflow-harness/pkg/state/cache"
	"github.com/numaproj/numaflow-harness/pkg/udf"
)

// Config is what a Processor is built from.
type Config struct {
	TransformID string
	DoFn        udf.DoFn
	// Keyed elements are coder.KV values, their key scopes the state cells
	Keyed       bool
	KeyCoder    coder.Coder
	WindowCoder coder.Coder
	States      []cache.Spec
	SideInputs  []sideinputs.View
	// Outputs maps the local output tags to destination ids
	Outputs     map[string]string
	MainTag     string
	StateClient state.Client
	Consumers   *forwarder.Consumers
}

func (c Config) validate() error {
	if c.TransformID == "" {
		return fmt.Errorf("transform id is required")
	}
	if c.DoFn == nil {
		return fmt.Errorf("transform %s: function is required", c.TransformID)
	}
	if c.WindowCoder == nil {
		return fmt.Errorf("transform %s: window coder is required", c.TransformID)
	}
	if c.Keyed && c.KeyCoder == nil {
		return fmt.Errorf("transform %s: keyed input requires a key coder", c.TransformID)
	}
	if c.StateClient == nil {
		return fmt.Errorf("transform %s: state client is required", c.TransformID)
	}
	if c.Consumers == nil {
		return fmt.Errorf("transform %s: consumers are required", c.TransformID)
	}
	ids := make(map[string]struct{}, len(c.SideInputs))
	for _, v := range c.SideInputs {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("transform %s: %w", c.TransformID, err)
		}
		if _, ok := ids[v.ID]; ok {
			return fmt.Errorf("transform %s: duplicate side input %q", c.TransformID, v.ID)
		}
		ids[v.ID] = struct{}{}
	}
	return nil
}

type options struct {
	flushParallelism int
}

// Option to configure a Processor
type Option func(*options)

// WithFlushParallelism sets how many state keys are flushed concurrently at finish.
func WithFlushParallelism(n int) Option {
	return func(o *options) {
		o.flushParallelism = n
	}
}
