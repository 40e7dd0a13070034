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

package udf

import (
	"context"
)

// DoFn processes the elements of a bundle.
type DoFn interface {
	ProcessElement(ctx context.Context, pc *ProcessContext) error
}

// StartBundler is implemented by DoFns that need a hook before the first element of a bundle.
type StartBundler interface {
	StartBundle(ctx context.Context, bc *BundleContext) error
}

// FinishBundler is implemented by DoFns that need a hook after the last element of a bundle.
type FinishBundler interface {
	FinishBundle(ctx context.Context, bc *BundleContext) error
}

// OutputDeclarer is implemented by DoFns that know the output tags they emit to. "" stands for the main tag.
type OutputDeclarer interface {
	OutputTags() []string
}

// DoFnFunc is a DoFn without bundle hooks.
type DoFnFunc func(ctx context.Context, pc *ProcessContext) error

// ProcessElement calls f.
func (f DoFnFunc) ProcessElement(ctx context.Context, pc *ProcessContext) error {
	return f(ctx, pc)
}
