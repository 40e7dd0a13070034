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
	"encoding/binary"
	"io"

	"github.com/goccy/go-json"
)

// StringUtf8 encodes strings as a varint length followed by the UTF-8 bytes.
type StringUtf8 struct{}

func (StringUtf8) Encode(w io.Writer, v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return typeErr("string_utf8", v)
	}
	return writeLengthPrefixed(w, []byte(s))
}

func (StringUtf8) Decode(r io.Reader) (interface{}, error) {
	p, err := readLengthPrefixed(r)
	if err != nil {
		return nil, err
	}
	return string(p), nil
}

// Bytes encodes byte slices as a varint length followed by the bytes.
type Bytes struct{}

func (Bytes) Encode(w io.Writer, v interface{}) error {
	p, ok := v.([]byte)
	if !ok {
		return typeErr("bytes", v)
	}
	return writeLengthPrefixed(w, p)
}

func (Bytes) Decode(r io.Reader) (interface{}, error) {
	p, err := readLengthPrefixed(r)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// VarInt encodes int64 values as zig-zag varints.
type VarInt struct{}

func (VarInt) Encode(w io.Writer, v interface{}) error {
	var n int64
	switch x := v.(type) {
	case int64:
		n = x
	case int:
		n = int64(x)
	case int32:
		n = int64(x)
	default:
		return typeErr("varint", v)
	}
	var buf [binary.MaxVarintLen64]byte
	l := binary.PutVarint(buf[:], n)
	_, err := w.Write(buf[:l])
	return err
}

func (VarInt) Decode(r io.Reader) (interface{}, error) {
	n, err := binary.ReadVarint(asByteReader(r))
	if err != nil {
		return nil, err
	}
	return n, nil
}

// JSON encodes values as length prefixed JSON documents.
type JSON struct {
	// New returns the pointer to decode into. When nil, values decode to generic maps, slices and scalars.
	New func() interface{}
}

func (c JSON) Encode(w io.Writer, v interface{}) error {
	p, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return writeLengthPrefixed(w, p)
}

func (c JSON) Decode(r io.Reader) (interface{}, error) {
	p, err := readLengthPrefixed(r)
	if err != nil {
		return nil, err
	}
	if c.New == nil {
		var v interface{}
		if err = json.Unmarshal(p, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	v := c.New()
	if err = json.Unmarshal(p, v); err != nil {
		return nil, err
	}
	return v, nil
}
