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

// Package runner turns transform descriptors into bundle processors.
//
// A Factory is looked up by the URN of the transform. It resolves the named function, coders and combine
// functions from an Environment, registers the processor as the receiver of the main input and adds its
// start and finish calls to the bundle function registries of the caller.
package runner
