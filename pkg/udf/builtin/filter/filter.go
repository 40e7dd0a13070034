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

package filter

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/shared/expr"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/udf"
)

type filter struct {
	expression string
}

// New returns a DoFn forwarding the elements for which the "expression" argument evaluates to true. Elements the
// expression fails on are dropped.
func New(args map[string]string) (udf.DoFn, error) {
	expression, existing := args["expression"]
	if !existing {
		return nil, fmt.Errorf("missing \"expression\"")
	}
	return filter{expression: expression}, nil
}

func (f filter) ProcessElement(ctx context.Context, pc *udf.ProcessContext) error {
	ok, err := expr.EvalBool(f.expression, expr.Env{
		Payload: pc.Payload(),
		Key:     pc.Key(),
		Window:  pc.Window().String(),
	})
	if err != nil {
		logging.FromContext(ctx).Errorw("Filter function apply got an error", zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	return pc.Output(ctx, pc.Element())
}
