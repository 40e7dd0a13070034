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

// Package builtin registers the builtin DoFns and combine functions.
package builtin

import (
	"go.uber.org/multierr"

	"github.com/numaproj/numaflow-harness/pkg/udf"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/cat"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/collect"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/combine"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/count"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/enrich"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/filter"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/format"
	"github.com/numaproj/numaflow-harness/pkg/udf/builtin/latest"
)

// Register adds the builtin DoFns to fns and the builtin combine functions to combines.
func Register(fns *udf.Registry, combines *udf.CombineRegistry) error {
	return multierr.Combine(
		fns.Register("cat", func(map[string]string) (udf.DoFn, error) { return cat.New(), nil }),
		fns.Register("filter", filter.New),
		fns.Register("format", format.New),
		fns.Register("count", count.New),
		fns.Register("collect", collect.New),
		fns.Register("latest", latest.New),
		fns.Register("enrich", enrich.New),
		combines.Register("sum", combine.Sum{}),
		combines.Register("count", combine.Count{}),
		combines.Register("concat", combine.Concat{}),
	)
}
