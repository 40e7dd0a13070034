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
)

// Client reaches the remote state store. Calls block until the store answers. Implementations must be safe for
// concurrent use by independent bundles and report unreachable or failing stores with fnerr.Transport errors.
type Client interface {
	// FetchAll returns every chunk appended to key since its last clear, in append order. A key that was never
	// written yields an empty result.
	FetchAll(ctx context.Context, key Key) ([][]byte, error)
	// Append adds one chunk at the end of the log of key.
	Append(ctx context.Context, key Key, chunk []byte) error
	// Clear drops every chunk of key.
	Clear(ctx context.Context, key Key) error
}
