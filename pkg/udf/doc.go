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
Package udf is the API between the bundle processor and user functions.

A DoFn is invoked once per (element, window) with a ProcessContext scoped to the key of the element and that window.
The context gives access to the declared state cells, the declared side inputs and the declared outputs.
DoFns may also implement StartBundler and FinishBundler to run code around a bundle, with a BundleContext.

DoFns and combine functions are looked up by name in a Registry and a CombineRegistry, which the embedding runtime
fills explicitly at startup.
*/
package udf
