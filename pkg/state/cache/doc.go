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
Package cache is the per bundle overlay of pending state mutations on top of a state.Client.

Three cell kinds share one chunk log representation in the store:

  - Value: a read returns the staged replacement, else the last persisted value. Flush compacts the log to one chunk.
  - Bag: a read returns the persisted values followed by the staged ones. Flush only appends.
  - Combining: a read merges the persisted accumulators with the local one. Flush compacts the log to one chunk.

Every key is fetched from the store at most once per bundle, and nothing is written before Flush.
A Cache belongs to a single bundle and is not safe for concurrent use.
*/
package cache
