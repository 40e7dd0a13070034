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

	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// Bundle is one execution over the runners registered in Consumers.
type Bundle struct {
	Consumers       *forwarder.Consumers
	StartFunctions  *FunctionRegistry
	FinishFunctions *FunctionRegistry
}

// NewBundle returns a Bundle with empty registries.
func NewBundle() *Bundle {
	return &Bundle{
		Consumers:       forwarder.NewConsumers(),
		StartFunctions:  NewFunctionRegistry(),
		FinishFunctions: NewFunctionRegistry(),
	}
}

// Params returns the factory params of a transform taking part in the bundle.
func (b *Bundle) Params(p Params) Params {
	p.Consumers = b.Consumers
	p.StartFunctions = b.StartFunctions
	p.FinishFunctions = b.FinishFunctions
	return p
}

// Execute starts the bundle, pushes elements to the receivers of input in order and finishes the bundle.
func (b *Bundle) Execute(ctx context.Context, input string, elements []window.WindowedValue) error {
	receivers := b.Consumers.Get(input)
	if len(receivers) == 0 {
		return fmt.Errorf("no receiver registered for input %q", input)
	}
	if err := b.StartFunctions.Run(ctx); err != nil {
		return fmt.Errorf("failed to start bundle, %w", err)
	}
	for _, e := range elements {
		for _, r := range receivers {
			if err := r.Accept(ctx, e); err != nil {
				return err
			}
		}
	}
	if err := b.FinishFunctions.Run(ctx); err != nil {
		return fmt.Errorf("failed to finish bundle, %w", err)
	}
	return nil
}
