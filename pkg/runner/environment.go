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
	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/udf"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin"
)

// Environment holds what descriptors refer to by name.
type Environment struct {
	Fns      *udf.Registry
	Combines *udf.CombineRegistry
	Coders   *coder.Registry
}

// NewEnvironment returns an Environment with the builtin functions and coders.
func NewEnvironment() (*Environment, error) {
	env := &Environment{
		Fns:      udf.NewRegistry(),
		Combines: udf.NewCombineRegistry(),
		Coders:   coder.DefaultRegistry(),
	}
	if err := builtin.Register(env.Fns, env.Combines); err != nil {
		return nil, err
	}
	return env, nil
}
