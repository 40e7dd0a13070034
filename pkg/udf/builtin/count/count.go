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

package count

import (
	"context"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/udf"
)

const defaultState = "count"

type count struct {
	stateID string
}

// New returns a DoFn that adds every element to the combining state named by the "state" argument and outputs
// the key with the combined value read back.
func New(args map[string]string) (udf.DoFn, error) {
	c := count{stateID: defaultState}
	if s, ok := args["state"]; ok && s != "" {
		c.stateID = s
	}
	return c, nil
}

func (c count) ProcessElement(ctx context.Context, pc *udf.ProcessContext) error {
	s, err := pc.Combining(c.stateID)
	if err != nil {
		return err
	}
	if err := s.Add(pc.Payload()); err != nil {
		return err
	}
	v, err := s.Read(ctx)
	if err != nil {
		return err
	}
	return pc.Output(ctx, coder.KV{Key: pc.Key(), Value: v})
}
