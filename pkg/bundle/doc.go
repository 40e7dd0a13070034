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

/*
Package bundle runs a DoFn over one bundle.

A Processor goes through Start, any number of ProcessElement calls and Finish, in that order and from a single
goroutine. Start creates the state cache and the side input resolver of the bundle and runs the start bundle hook.
ProcessElement invokes the DoFn once per window of the element, with a context scoped to the key of the element and
that window. Finish runs the finish bundle hook, then flushes the staged state to the store.

Any error fails the bundle: a failed bundle never flushes its state and accepts no more calls. Errors returned by the
DoFn are passed through unchanged.
*/
package bundle
