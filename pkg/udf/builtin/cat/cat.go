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

package cat

import (
	"context"

	"github.com/numaproj/numaflow-harness/pkg/udf"
)

type cat struct{}

// New returns a DoFn forwarding every element unchanged to the main output.
func New() udf.DoFn {
	return cat{}
}

func (cat) ProcessElement(ctx context.Context, pc *udf.ProcessContext) error {
	return pc.Output(ctx, pc.Element())
}
