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

// Package logger implements an output receiver logging the values it accepts.
package logger

import (
	"context"

	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// ToLog prints the accepted values to the log.
type ToLog struct {
	name   string
	logger *zap.SugaredLogger
}

var _ forwarder.Receiver = (*ToLog)(nil)

// NewToLog returns ToLog type.
func NewToLog(ctx context.Context, name string) *ToLog {
	return &ToLog{
		name:   name,
		logger: logging.FromContext(ctx).With("sinkType", "log").With("sink", name),
	}
}

// GetName returns the name.
func (t *ToLog) GetName() string {
	return t.name
}

// Accept logs wv, it never fails.
func (t *ToLog) Accept(_ context.Context, wv window.WindowedValue) error {
	logSinkWriteCount.WithLabelValues(t.name).Inc()
	t.logger.Infow("Output",
		zap.Any("payload", wv.Value),
		zap.Int64("eventTime", wv.Timestamp.UnixMilli()),
		zap.Strings("windows", windowNames(wv.Windows)),
		zap.Stringer("timing", wv.Pane.Timing))
	return nil
}

func windowNames(ws []window.Window) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.String()
	}
	return out
}
