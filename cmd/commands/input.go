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

package commands

import (
	"fmt"
	"os"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// inputElement is one element of an input file.
type inputElement struct {
	// +optional
	Key *string `json:"key,omitempty"`
	// Value is decoded as JSON, strings stay strings.
	Value interface{} `json:"value"`
	// Window is the interval window of the element, the global window when absent.
	// +optional
	Window *inputWindow `json:"window,omitempty"`
}

type inputWindow struct {
	// StartMillis and EndMillis are epoch milliseconds.
	StartMillis int64 `json:"startMillis"`
	EndMillis   int64 `json:"endMillis"`
}

func parseInput(data []byte, keyed bool) ([]window.WindowedValue, error) {
	var elements []inputElement
	if err := yaml.UnmarshalStrict(data, &elements); err != nil {
		return nil, fmt.Errorf("failed to parse input, %w", err)
	}
	values := make([]window.WindowedValue, 0, len(elements))
	for i, e := range elements {
		var v interface{} = e.Value
		switch {
		case keyed && e.Key == nil:
			return nil, fmt.Errorf("element %d: keyed transform requires a key", i)
		case keyed:
			v = coder.KV{Key: *e.Key, Value: e.Value}
		case e.Key != nil:
			return nil, fmt.Errorf("element %d: unkeyed transform got a key", i)
		}
		if e.Window == nil {
			values = append(values, window.ValueInGlobalWindow(v))
			continue
		}
		if e.Window.EndMillis <= e.Window.StartMillis {
			return nil, fmt.Errorf("element %d: window end must be after its start", i)
		}
		w := window.NewIntervalWindow(time.UnixMilli(e.Window.StartMillis), time.UnixMilli(e.Window.EndMillis))
		values = append(values, window.ValueInWindow(v, w))
	}
	return values, nil
}

func readInput(path string, keyed bool) ([]window.WindowedValue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %q, %w", path, err)
	}
	return parseInput(data, keyed)
}
