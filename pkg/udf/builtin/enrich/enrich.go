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

package enrich

import (
	"context"
	"fmt"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/sideinputs"
	"github.com/numaproj/numaflow-harness/pkg/udf"
)

type enrich struct {
	sideInput string
	keyed     bool
}

// New returns a DoFn outputting every element paired with the side input named by the "sideInput" argument, in
// the window of the element. With "keyed" set to "true", the side input is looked up for the key of the element.
// Iterable side inputs are paired as a slice of their values.
func New(args map[string]string) (udf.DoFn, error) {
	id, ok := args["sideInput"]
	if !ok || id == "" {
		return nil, fmt.Errorf("missing \"sideInput\"")
	}
	return enrich{sideInput: id, keyed: args["keyed"] == "true"}, nil
}

func (e enrich) ProcessElement(ctx context.Context, pc *udf.ProcessContext) error {
	var (
		si  interface{}
		err error
	)
	if e.keyed {
		si, err = pc.KeyedSideInput(ctx, e.sideInput)
	} else {
		si, err = pc.SideInput(ctx, e.sideInput)
	}
	if err != nil {
		return err
	}
	if it, ok := si.(*sideinputs.Iterable); ok {
		si = it.Values()
	}
	return pc.Output(ctx, coder.KV{Key: pc.Payload(), Value: si})
}
