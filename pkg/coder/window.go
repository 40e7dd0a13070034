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
	"math"
	"time"

	"github.com/numaproj/numaflow-harness/pkg/window"
)

// GlobalWindow encodes the global window as zero bytes.
type GlobalWindow struct{}

func (GlobalWindow) Encode(_ io.Writer, v interface{}) error {
	if _, ok := v.(window.GlobalWindow); !ok {
		return typeErr("global_window", v)
	}
	return nil
}

func (GlobalWindow) Decode(_ io.Reader) (interface{}, error) {
	return window.GlobalWindow{}, nil
}

// IntervalWindow encodes the end of the window as a sign-flipped big endian millisecond instant, which keeps the
// byte order equal to the time order, followed by the window span in milliseconds as a varint.
type IntervalWindow struct{}

func (IntervalWindow) Encode(w io.Writer, v interface{}) error {
	iw, ok := v.(window.IntervalWindow)
	if !ok {
		return typeErr("interval_window", v)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(iw.End.UnixMilli())^(1<<63))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	return writeUvarint(w, uint64(iw.End.Sub(iw.Start).Milliseconds()))
}

func (IntervalWindow) Decode(r io.Reader) (interface{}, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	end := int64(binary.BigEndian.Uint64(buf[:]) ^ (1 << 63))
	span, err := readUvarint(r)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if span > math.MaxInt64 {
		return nil, io.ErrUnexpectedEOF
	}
	return window.NewIntervalWindow(time.UnixMilli(end-int64(span)), time.UnixMilli(end)), nil
}
