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

package state

import (
	"context"
	"time"

	"github.com/numaproj/numaflow-harness/pkg/metrics"
)

const (
	opFetchAll = "fetch_all"
	opAppend   = "append"
	opClear    = "clear"
)

type instrumentedClient struct {
	Client
	transformID string
}

// NewInstrumentedClient wraps c so that every request is counted and timed under the given transform.
func NewInstrumentedClient(c Client, transformID string) Client {
	return &instrumentedClient{Client: c, transformID: transformID}
}

func (ic *instrumentedClient) observe(op string, start time.Time, err error) {
	metrics.StateRequests.WithLabelValues(ic.transformID, op).Inc()
	metrics.StateRequestLatency.WithLabelValues(ic.transformID, op).Observe(float64(time.Since(start).Microseconds()))
	if err != nil {
		metrics.StateRequestErrors.WithLabelValues(ic.transformID, op).Inc()
	}
}

func (ic *instrumentedClient) FetchAll(ctx context.Context, key Key) ([][]byte, error) {
	start := time.Now()
	chunks, err := ic.Client.FetchAll(ctx, key)
	ic.observe(opFetchAll, start, err)
	var n int
	for _, c := range chunks {
		n += len(c)
	}
	metrics.StateFetchedBytes.WithLabelValues(ic.transformID).Add(float64(n))
	return chunks, err
}

func (ic *instrumentedClient) Append(ctx context.Context, key Key, chunk []byte) error {
	start := time.Now()
	err := ic.Client.Append(ctx, key, chunk)
	ic.observe(opAppend, start, err)
	return err
}

func (ic *instrumentedClient) Clear(ctx context.Context, key Key) error {
	start := time.Now()
	err := ic.Client.Clear(ctx, key)
	ic.observe(opClear, start, err)
	return err
}
