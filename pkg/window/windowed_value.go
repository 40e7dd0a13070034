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

package window

import (
	"fmt"
	"time"
)

// Timing is when a pane fired relative to the watermark.
type Timing int8

const (
	Unknown Timing = iota
	Early
	OnTime
	Late
)

func (t Timing) String() string {
	switch t {
	case Early:
		return "EARLY"
	case OnTime:
		return "ON_TIME"
	case Late:
		return "LATE"
	default:
		return "UNKNOWN"
	}
}

// PaneInfo describes which firing of a window produced a value.
type PaneInfo struct {
	Timing  Timing
	IsFirst bool
	IsLast  bool
	Index   int64
}

// NoFiring is the pane of values that were never part of a trigger firing.
var NoFiring = PaneInfo{Timing: Unknown, IsFirst: true, IsLast: true}

// OnTimeAndOnlyFiring is the pane of a window that fired exactly once, on time.
var OnTimeAndOnlyFiring = PaneInfo{Timing: OnTime, IsFirst: true, IsLast: true}

// WindowedValue is a value with its timestamp, windows and pane.
type WindowedValue struct {
	Value     interface{}
	Timestamp time.Time
	Windows   []Window
	Pane      PaneInfo
}

// ValueInGlobalWindow returns v in the global window at the minimum timestamp.
func ValueInGlobalWindow(v interface{}) WindowedValue {
	return WindowedValue{
		Value:     v,
		Timestamp: time.UnixMilli(0).UTC(),
		Windows:   []Window{GlobalWindow{}},
		Pane:      NoFiring,
	}
}

// ValueInWindow returns v at the max timestamp of w, fired on time.
func ValueInWindow(v interface{}, w Window) WindowedValue {
	return WindowedValue{
		Value:     v,
		Timestamp: w.MaxTimestamp(),
		Windows:   []Window{w},
		Pane:      OnTimeAndOnlyFiring,
	}
}

// WithValue returns a copy of wv carrying v. Windows are shared, they are never mutated.
func (wv WindowedValue) WithValue(v interface{}) WindowedValue {
	wv.Value = v
	return wv
}

// InWindow returns a copy of wv scoped to the single window w.
func (wv WindowedValue) InWindow(w Window) WindowedValue {
	wv.Windows = []Window{w}
	return wv
}

func (wv WindowedValue) String() string {
	return fmt.Sprintf("%v@%d%v", wv.Value, wv.Timestamp.UnixMilli(), wv.Windows)
}
