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
Package state defines how the bundle execution engine addresses and reaches the remote state store.

Every state cell and every side input materialization is identified by a Key. The store sees the cell behind a key as
an append-only log of opaque chunks and exposes only three operations on it through the Client interface: read all the
chunks, append one chunk, and clear the log. Value, bag and combining semantics are layered on top of that log by the
cache subpackage.

Client implementations live in subpackages: inmem (process local, used in tests and local runs), redis and jetstream.
*/
package state
