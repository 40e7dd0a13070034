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
	"math"
	"time"
)

// Window groups elements for state and side input scoping.
type Window interface {
	// MaxTimestamp returns the largest timestamp that can belong to the window.
	MaxTimestamp() time.Time
	// Equals returns true if both windows represent the same boundaries.
	Equals(other Window) bool
	fmt.Stringer
}

// maxTimestamp is the end of time as seen by the global window.
var maxTimestamp = time.UnixMilli(math.MaxInt64 / 1000).UTC()

// GlobalWindow is the single window covering all of time.
type GlobalWindow struct{}

var _ Window = GlobalWindow{}

func (GlobalWindow) MaxTimestamp() time.Time {
	return maxTimestamp
}

func (GlobalWindow) Equals(other Window) bool {
	_, ok := other.(GlobalWindow)
	return ok
}

func (GlobalWindow) String() string {
	return "[*]"
}

// IntervalWindow is a window over [Start, End).
type IntervalWindow struct {
	Start time.Time
	End   time.Time
}

var _ Window = IntervalWindow{}

// NewIntervalWindow returns an IntervalWindow truncated to millisecond precision.
func NewIntervalWindow(start, end time.Time) IntervalWindow {
	return IntervalWindow{
		Start: time.UnixMilli(start.UnixMilli()).UTC(),
		End:   time.UnixMilli(end.UnixMilli()).UTC(),
	}
}

// MaxTimestamp is one millisecond before the end of the window.
func (w IntervalWindow) MaxTimestamp() time.Time {
	return w.End.Add(-time.Millisecond)
}

func (w IntervalWindow) Equals(other Window) bool {
	o, ok := other.(IntervalWindow)
	return ok && w.Start.Equal(o.Start) && w.End.Equal(o.End)
}

func (w IntervalWindow) String() string {
	return fmt.Sprintf("[%d, %d)", w.Start.UnixMilli(), w.End.UnixMilli())
}

// FixedWindowFor returns the fixed window of the given size containing ts.
func FixedWindowFor(ts time.Time, size time.Duration) IntervalWindow {
	start := ts.Truncate(size)
	return NewIntervalWindow(start, start.Add(size))
}
