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

package state

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
)

// KeyType is the kind of state cell a Key addresses.
type KeyType uint8

const (
	UserState KeyType = iota + 1
	SideInput
)

func (kt KeyType) String() string {
	switch kt {
	case UserState:
		return "user_state"
	case SideInput:
		return "side_input"
	default:
		return "unknown"
	}
}

// Key identifies a logical state cell. Keys are values: two keys are equal iff all their fields are equal.
type Key struct {
	Type        KeyType
	TransformID string
	// ID is the user state id for UserState keys and the side input id for SideInput keys.
	ID string
	// ElementKey is the encoded element key, empty for unkeyed access.
	ElementKey []byte
	// Window is the encoded window.
	Window []byte
}

// NewUserStateKey returns the key of user state stateID of the given element key and window.
func NewUserStateKey(transformID, stateID string, elementKey, window []byte) Key {
	return Key{Type: UserState, TransformID: transformID, ID: stateID, ElementKey: elementKey, Window: window}
}

// NewSideInputKey returns the key of the materialization of side input sideInputID in the given window.
func NewSideInputKey(transformID, sideInputID string, elementKey, window []byte) Key {
	return Key{Type: SideInput, TransformID: transformID, ID: sideInputID, ElementKey: elementKey, Window: window}
}

// Equal compares two keys structurally.
func (k Key) Equal(o Key) bool {
	return k.Type == o.Type &&
		k.TransformID == o.TransformID &&
		k.ID == o.ID &&
		bytes.Equal(k.ElementKey, o.ElementKey) &&
		bytes.Equal(k.Window, o.Window)
}

type keyPreamble struct {
	Type     KeyType
	TLen     uint16
	IDLen    uint16
	EKeyLen  uint32
	WindowLn uint32
}

// MarshalBinary encodes Key to the binary wire form.
func (k Key) MarshalBinary() ([]byte, error) {
	if len(k.TransformID) > 0xffff || len(k.ID) > 0xffff {
		return nil, fmt.Errorf("transform id or state id too long: %d, %d", len(k.TransformID), len(k.ID))
	}
	var buf = new(bytes.Buffer)
	var preamble = keyPreamble{
		Type:     k.Type,
		TLen:     uint16(len(k.TransformID)),
		IDLen:    uint16(len(k.ID)),
		EKeyLen:  uint32(len(k.ElementKey)),
		WindowLn: uint32(len(k.Window)),
	}
	if err := binary.Write(buf, binary.LittleEndian, preamble); err != nil {
		return nil, err
	}
	buf.WriteString(k.TransformID)
	buf.WriteString(k.ID)
	buf.Write(k.ElementKey)
	buf.Write(k.Window)
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes Key from the binary wire form.
func (k *Key) UnmarshalBinary(data []byte) error {
	var r = bytes.NewReader(data)
	var preamble = new(keyPreamble)
	if err := binary.Read(r, binary.LittleEndian, preamble); err != nil {
		return err
	}
	want := int(preamble.TLen) + int(preamble.IDLen) + int(preamble.EKeyLen) + int(preamble.WindowLn)
	if r.Len() != want {
		return fmt.Errorf("expected %d bytes of key fields but got %d", want, r.Len())
	}
	fields := make([][]byte, 4)
	for i, l := range []int{int(preamble.TLen), int(preamble.IDLen), int(preamble.EKeyLen), int(preamble.WindowLn)} {
		fields[i] = make([]byte, l)
		if _, err := io.ReadFull(r, fields[i]); err != nil {
			return err
		}
	}
	k.Type = preamble.Type
	k.TransformID = string(fields[0])
	k.ID = string(fields[1])
	k.ElementKey = fields[2]
	k.Window = fields[3]
	return nil
}

// Encoded returns the wire form of k as a URL safe string. It is stable, injective and usable as a map or store key.
func (k Key) Encoded() string {
	b, err := k.MarshalBinary()
	if err != nil {
		// only oversized ids fail, which descriptors reject before any key is built
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// ParseKey decodes a key produced by Encoded.
func ParseKey(encoded string) (Key, error) {
	b, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Key{}, fmt.Errorf("invalid encoded state key: %w", err)
	}
	var k Key
	if err = k.UnmarshalBinary(b); err != nil {
		return Key{}, fmt.Errorf("invalid encoded state key: %w", err)
	}
	return k, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s[key=%s,window=%s]", k.Type, k.TransformID, k.ID, hex.EncodeToString(k.ElementKey), hex.EncodeToString(k.Window))
}
