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

package format

import (
	"context"
	"fmt"

	"github.com/numaproj/numaflow-harness/pkg/shared/expr"
	"github.com/numaproj/numaflow-harness/pkg/udf"
)

type format struct {
	expression string
}

// New returns a DoFn outputting the result of the "expression" argument evaluated on every element, as a string.
func New(args map[string]string) (udf.DoFn, error) {
	expression, existing := args["expression"]
	if !existing {
		return nil, fmt.Errorf("missing \"expression\"")
	}
	return format{expression: expression}, nil
}

func (f format) ProcessElement(ctx context.Context, pc *udf.ProcessContext) error {
	out, err := expr.Compile(f.expression, expr.Env{
		Payload: pc.Payload(),
		Key:     pc.Key(),
		Window:  pc.Window().String(),
	})
	if err != nil {
		return err
	}
	return pc.Output(ctx, out)
}
