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

// Iterable is an immutable snapshot of the values of a side input. It stays valid after the bundle finished and
// never contacts the state store.
type Iterable struct {
	values []interface{}
}

// Len returns the number of values.
func (it *Iterable) Len() int {
	return len(it.values)
}

// At returns the i-th value.
func (it *Iterable) At(i int) interface{} {
	return it.values[i]
}

// Values returns a copy of the values.
func (it *Iterable) Values() []interface{} {
	out := make([]interface{}, len(it.values))
	copy(out, it.values)
	return out
}

// ForEach calls f for every value in order, until f returns false.
func (it *Iterable) ForEach(f func(i int, v interface{}) bool) {
	for i, v := range it.values {
		if !f(i, v) {
			return
		}
	}
}
