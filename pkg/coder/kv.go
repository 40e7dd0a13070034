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

package coder

import (
	"fmt"
	"io"
)

// KV is a keyed element.
type KV struct {
	Key   interface{}
	Value interface{}
}

func (kv KV) String() string {
	return fmt.Sprintf("KV(%v, %v)", kv.Key, kv.Value)
}

// KVCoder encodes a KV as the key encoding followed by the value encoding.
type KVCoder struct {
	Key   Coder
	Value Coder
}

func (c KVCoder) Encode(w io.Writer, v interface{}) error {
	kv, ok := v.(KV)
	if !ok {
		return typeErr("kv", v)
	}
	if err := c.Key.Encode(w, kv.Key); err != nil {
		return err
	}
	return c.Value.Encode(w, kv.Value)
}

func (c KVCoder) Decode(r io.Reader) (interface{}, error) {
	k, err := c.Key.Decode(r)
	if err != nil {
		return nil, err
	}
	v, err := c.Value.Decode(r)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return KV{Key: k, Value: v}, nil
}
