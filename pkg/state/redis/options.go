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

package redis

import (
	"time"
)

// Options for the redis state client
type Options struct {
	// KeyPrefix is prepended to every encoded state key
	KeyPrefix string
	// TTL expires a state log after it has not been appended to for the duration, zero keeps logs forever
	TTL time.Duration
}

// Option to apply different options
type Option interface {
	Apply(*Options)
}

// keyPrefix option
type keyPrefix string

func (k keyPrefix) Apply(o *Options) {
	o.KeyPrefix = string(k)
}

// WithKeyPrefix sets the key prefix
func WithKeyPrefix(prefix string) Option {
	return keyPrefix(prefix)
}

// ttl option
type ttl time.Duration

func (t ttl) Apply(o *Options) {
	o.TTL = time.Duration(t)
}

// WithTTL sets the TTL of state logs
func WithTTL(d time.Duration) Option {
	return ttl(d)
}
