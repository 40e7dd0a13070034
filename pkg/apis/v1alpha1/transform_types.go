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

package v1alpha1

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Transform describes one executable transform of a pipeline stage.
type Transform struct {
	// ID of the transform, it scopes every state and side input key.
	ID string `json:"id"`
	// +optional
	URN string `json:"urn,omitempty"`
	Fn  Fn     `json:"fn"`
	// Inputs maps the local input names to destination ids.
	Inputs map[string]string `json:"inputs"`
	// MainInput is the local name of the main input, required when there is more than one input.
	// +optional
	MainInput string `json:"mainInput,omitempty"`
	// Outputs maps the local output tags to destination ids.
	Outputs map[string]string `json:"outputs"`
	// +optional
	MainOutput string `json:"mainOutput,omitempty"`
	// Keyed inputs carry key/value elements, the key scopes the user state.
	// +optional
	Keyed bool `json:"keyed,omitempty"`
	// +optional
	KeyCoder string `json:"keyCoder,omitempty"`
	// +optional
	ValueCoder string `json:"valueCoder,omitempty"`
	// +optional
	WindowCoder string `json:"windowCoder,omitempty"`
	// +optional
	State []StateSpec `json:"state,omitempty"`
	// +optional
	SideInputs []SideInputSpec `json:"sideInputs,omitempty"`
}

// Fn names a registered function and its arguments.
type Fn struct {
	Name string `json:"name"`
	// +optional
	Args map[string]string `json:"args,omitempty"`
}

// StateSpec declares a user state cell.
type StateSpec struct {
	ID string `json:"id"`
	// Kind is one of value, bag and combining.
	Kind  string `json:"kind"`
	Coder string `json:"coder"`
	// CombineFn names a registered combine function, combining state only.
	// +optional
	CombineFn string `json:"combineFn,omitempty"`
}

// SideInputSpec declares a side input view.
type SideInputSpec struct {
	ID string `json:"id"`
	// Pattern is one of singleton, singletonWithDefault and iterable.
	Pattern string `json:"pattern"`
	Coder   string `json:"coder"`
	// Default is the textual form of the default value of a singletonWithDefault view.
	// +optional
	Default *string `json:"default,omitempty"`
}

func (t Transform) GetURN() string {
	if t.URN == "" {
		return ParDoURN
	}
	return t.URN
}

func (t Transform) GetMainOutput() string {
	if t.MainOutput == "" {
		return DefaultMainTag
	}
	return t.MainOutput
}

func (t Transform) GetWindowCoder() string {
	if t.WindowCoder == "" {
		return "global_window"
	}
	return t.WindowCoder
}

func (t Transform) GetKeyCoder() string {
	if t.KeyCoder == "" {
		return "string_utf8"
	}
	return t.KeyCoder
}

// GetMainInput returns the destination id of the main input.
func (t Transform) GetMainInput() (string, error) {
	if t.MainInput != "" {
		dest, ok := t.Inputs[t.MainInput]
		if !ok {
			return "", fmt.Errorf("main input %q is not an input", t.MainInput)
		}
		return dest, nil
	}
	if len(t.Inputs) != 1 {
		return "", fmt.Errorf("mainInput is required with %d inputs", len(t.Inputs))
	}
	for _, dest := range t.Inputs {
		return dest, nil
	}
	return "", nil
}

// Validate checks the structure of the transform, not the availability of the named functions and coders.
func (t Transform) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("transform id is required")
	}
	if t.Fn.Name == "" {
		return fmt.Errorf("transform %s: fn name is required", t.ID)
	}
	if _, err := t.GetMainInput(); err != nil {
		return fmt.Errorf("transform %s: %w", t.ID, err)
	}
	if _, ok := t.Outputs[t.GetMainOutput()]; !ok {
		return fmt.Errorf("transform %s: main output %q is not an output", t.ID, t.GetMainOutput())
	}
	ids := make(map[string]struct{})
	for _, s := range t.State {
		if s.ID == "" {
			return fmt.Errorf("transform %s: state id is required", t.ID)
		}
		if _, ok := ids[s.ID]; ok {
			return fmt.Errorf("transform %s: duplicate state %q", t.ID, s.ID)
		}
		ids[s.ID] = struct{}{}
		switch s.Kind {
		case StateKindValue, StateKindBag:
		case StateKindCombining:
			if s.CombineFn == "" {
				return fmt.Errorf("transform %s: combining state %q requires combineFn", t.ID, s.ID)
			}
		default:
			return fmt.Errorf("transform %s: state %q has unknown kind %q", t.ID, s.ID, s.Kind)
		}
	}
	ids = make(map[string]struct{})
	for _, si := range t.SideInputs {
		if si.ID == "" {
			return fmt.Errorf("transform %s: side input id is required", t.ID)
		}
		if _, ok := ids[si.ID]; ok {
			return fmt.Errorf("transform %s: duplicate side input %q", t.ID, si.ID)
		}
		ids[si.ID] = struct{}{}
		switch si.Pattern {
		case SideInputSingleton, SideInputIterable:
		case SideInputSingletonWithDefault:
			if si.Default == nil {
				return fmt.Errorf("transform %s: side input %q requires a default", t.ID, si.ID)
			}
		default:
			return fmt.Errorf("transform %s: side input %q has unknown pattern %q", t.ID, si.ID, si.Pattern)
		}
	}
	return nil
}

// ParseTransform parses a YAML or JSON transform and validates it.
func ParseTransform(data []byte) (*Transform, error) {
	t := &Transform{}
	if err := yaml.UnmarshalStrict(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse transform, %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTransform reads a transform from a file.
func LoadTransform(path string) (*Transform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transform file %q, %w", path, err)
	}
	return ParseTransform(data)
}
