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

// Package coder converts typed values to and from the bytes kept in the state store. Coders use nested encodings:
// every value is self-delimiting, so a single chunk may carry several values back to back.
package coder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/numaproj/numaflow-harness/pkg/fnerr"
)

// Coder encodes and decodes values of one type.
type Coder interface {
	// Encode writes the nested encoding of v to w.
	Encode(w io.Writer, v interface{}) error
	// Decode reads one value from r. It returns io.EOF only if r is exhausted before the first byte.
	Decode(r io.Reader) (interface{}, error)
}

// EncodeToBytes returns the encoding of v.
func EncodeToBytes(c Coder, v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeFromBytes decodes exactly one value from data.
func DecodeFromBytes(c Coder, data []byte) (interface{}, error) {
	r := bytes.NewReader(data)
	v, err := c.Decode(r)
	if err != nil {
		return nil, fnerr.Wrap(fnerr.Decode, err, "failed to decode value")
	}
	if r.Len() != 0 {
		return nil, fnerr.Newf(fnerr.Decode, "%d trailing bytes after decoded value", r.Len())
	}
	return v, nil
}

// DecodeAll decodes every value in chunk, in order.
func DecodeAll(c Coder, chunk []byte) ([]interface{}, error) {
	r := bytes.NewReader(chunk)
	var values []interface{}
	for r.Len() > 0 {
		remaining := r.Len()
		v, err := c.Decode(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return nil, fnerr.Wrap(fnerr.Decode, err, fmt.Sprintf("failed to decode value %d of chunk", len(values)))
		}
		if r.Len() == remaining {
			return nil, fnerr.Newf(fnerr.Decode, "value %d of chunk consumed no bytes, %d bytes left", len(values), remaining)
		}
		values = append(values, v)
	}
	return values, nil
}

// DecodeChunks decodes all the chunks of a state log, in order.
func DecodeChunks(c Coder, chunks [][]byte) ([]interface{}, error) {
	var values []interface{}
	for _, chunk := range chunks {
		vs, err := DecodeAll(c, chunk)
		if err != nil {
			return nil, err
		}
		values = append(values, vs...)
	}
	return values, nil
}

// byteReader adapts an io.Reader without over-reading, so the caller can keep decoding after us.
type byteReader struct {
	io.Reader
	b [1]byte
}

func (br *byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(br.Reader, br.b[:]); err != nil {
		return 0, err
	}
	return br.b[0], nil
}

func asByteReader(r io.Reader) io.ByteReader {
	if b, ok := r.(io.ByteReader); ok {
		return b
	}
	return &byteReader{Reader: r}
}

func writeUvarint(w io.Writer, n uint64) error {
	var buf [binary.MaxVarintLen64]byte
	l := binary.PutUvarint(buf[:], n)
	_, err := w.Write(buf[:l])
	return err
}

func readUvarint(r io.Reader) (uint64, error) {
	return binary.ReadUvarint(asByteReader(r))
}

// writeLengthPrefixed writes len(p) as a varint followed by p.
func writeLengthPrefixed(w io.Writer, p []byte) error {
	if err := writeUvarint(w, uint64(len(p))); err != nil {
		return err
	}
	_, err := w.Write(p)
	return err
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	n, err := readUvarint(r)
	if err != nil {
		return nil, err
	}
	// the length comes from stored bytes, never allocate more than the input can hold
	if l, ok := r.(interface{ Len() int }); ok {
		if n > uint64(l.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		p := make([]byte, n)
		if _, err = io.ReadFull(r, p); err != nil {
			return nil, io.ErrUnexpectedEOF
		}
		return p, nil
	}
	if n > math.MaxInt64 {
		return nil, io.ErrUnexpectedEOF
	}
	var buf bytes.Buffer
	if _, err = io.CopyN(&buf, r, int64(n)); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func typeErr(coder string, v interface{}) error {
	return fmt.Errorf("%s coder cannot encode %T", coder, v)
}
