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

// Package forwarder routes the outputs of a transform to the receivers registered for their destination.
package forwarder

import (
	"context"

	"github.com/numaproj/numaflow-harness/pkg/window"
)

// Receiver accepts the windowed values forwarded to a destination.
type Receiver interface {
	Accept(ctx context.Context, wv window.WindowedValue) error
}

// ReceiverFunc is a function receiver
type ReceiverFunc func(ctx context.Context, wv window.WindowedValue) error

// Accept calls f.
func (f ReceiverFunc) Accept(ctx context.Context, wv window.WindowedValue) error {
	return f(ctx, wv)
}

// Emitter emits windowed values under a local output tag.
type Emitter interface {
	// Emit forwards wv to the destination bound to tag, the empty tag being the main output.
	Emit(ctx context.Context, tag string, wv window.WindowedValue) error
}
