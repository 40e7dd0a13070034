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

package sideinputs

import (
	"fmt"

	"github.com/numaproj/numaflow-harness/pkg/coder"
)

// Pattern is the way a side input is accessed.
type Pattern int8

const (
	// PatternSingleton requires exactly one value.
	PatternSingleton Pattern = iota + 1
	// PatternSingletonWithDefault yields the view default when there is no value.
	PatternSingletonWithDefault
	// PatternIterable yields all the values in persisted order.
	PatternIterable
)

func (p Pattern) String() string {
	switch p {
	case PatternSingleton:
		return "singleton"
	case PatternSingletonWithDefault:
		return "singleton_with_default"
	case PatternIterable:
		return "iterable"
	default:
		return "unknown"
	}
}

// View declares a side input of a transform.
type View struct {
	ID      string
	Pattern Pattern
	Coder   coder.Coder
	// Default is returned by a PatternSingletonWithDefault view without value
	Default interface{}
}

// Validate checks that the view is usable.
func (v View) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("side input id is required")
	}
	if v.Coder == nil {
		return fmt.Errorf("side input %q: coder is required", v.ID)
	}
	switch v.Pattern {
	case PatternSingleton, PatternSingletonWithDefault, PatternIterable:
		return nil
	default:
		return fmt.Errorf("side input %q: unknown access pattern %d", v.ID, v.Pattern)
	}
}
