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
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/metrics"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// Router forwards the outputs of a transform. Receivers are looked up at emit time, so receivers registered after
// the router was built still get the values of their destination.
type Router struct {
	transformID string
	// outputs maps a local tag to a destination id
	outputs   map[string]string
	mainTag   string
	consumers *Consumers
	log       *zap.SugaredLogger
}

var _ Emitter = (*Router)(nil)

// NewRouter returns a router over the declared outputs. The main tag must be declared.
func NewRouter(ctx context.Context, transformID string, outputs map[string]string, mainTag string, consumers *Consumers) (*Router, error) {
	if _, ok := outputs[mainTag]; !ok {
		return nil, fmt.Errorf("main output tag %q is not declared", mainTag)
	}
	o := make(map[string]string, len(outputs))
	for tag, dest := range outputs {
		if dest == "" {
			return nil, fmt.Errorf("output tag %q has no destination", tag)
		}
		o[tag] = dest
	}
	return &Router{
		transformID: transformID,
		outputs:     o,
		mainTag:     mainTag,
		consumers:   consumers,
		log:         logging.FromContext(ctx).With("transform", transformID),
	}, nil
}

// MainTag returns the main output tag.
func (r *Router) MainTag() string {
	return r.mainTag
}

// Tags returns the declared tags, sorted.
func (r *Router) Tags() []string {
	tags := make([]string, 0, len(r.outputs))
	for t := range r.outputs {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Emit delivers wv to every receiver of the destination bound to tag, in registration order. The value is
// dropped when the destination has no receiver. The first receiver error is returned.
func (r *Router) Emit(ctx context.Context, tag string, wv window.WindowedValue) error {
	if tag == "" {
		tag = r.mainTag
	}
	dest, ok := r.outputs[tag]
	if !ok {
		return fnerr.Newf(fnerr.ContractViolation, "output tag %q is not declared by transform %s", tag, r.transformID)
	}
	receivers := r.consumers.Get(dest)
	if len(receivers) == 0 {
		metrics.OutputsDropped.WithLabelValues(r.transformID, tag).Inc()
		r.log.Debugw("No receiver, dropping output", zap.String("tag", tag), zap.String("destination", dest))
		return nil
	}
	for _, rcv := range receivers {
		if err := rcv.Accept(ctx, wv); err != nil {
			return err
		}
	}
	metrics.OutputsEmitted.WithLabelValues(r.transformID, tag).Add(float64(len(receivers)))
	return nil
}
