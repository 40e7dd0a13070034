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

package latest

import (
	"context"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/udf"
)

const defaultState = "latest"

type latest struct {
	stateID string
}

// New returns a DoFn keeping the last element of each key in the value state named by the "state" argument. It
// outputs the key with the element it replaces, if any.
func New(args map[string]string) (udf.DoFn, error) {
	l := latest{stateID: defaultState}
	if s, ok := args["state"]; ok && s != "" {
		l.stateID = s
	}
	return l, nil
}

func (l latest) ProcessElement(ctx context.Context, pc *udf.ProcessContext) error {
	v, err := pc.Value(l.stateID)
	if err != nil {
		return err
	}
	previous, ok, err := v.Read(ctx)
	if err != nil {
		return err
	}
	if err := v.Write(pc.Payload()); err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return pc.Output(ctx, coder.KV{Key: pc.Key(), Value: previous})
}
