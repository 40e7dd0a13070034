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

// Package window holds the windowing constructs seen by the bundle execution engine. Windows are assigned upstream;
// by the time an element reaches a transform it already carries the set of windows it belongs to, and the engine
// only uses a window as an opaque, encodable token that scopes user state and side inputs.
//
// A WindowedValue is the unit delivered to and produced by a transform. Outputs keep the timestamp, windows and pane of
// the element they were produced for; only the payload is substituted.
package window
