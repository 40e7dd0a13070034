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

// Package sideinputs resolves the side inputs of a transform for a bundle.
//
// A side input is read from the state store under its side input key, once per (side input, window, element key)
// and bundle, and kept as an immutable snapshot for the rest of the bundle. Resolution never writes to the store.
package sideinputs
