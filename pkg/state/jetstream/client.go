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

// Package jetstream implements the state client on a jetstream key value bucket.
//
// Each state key maps to one bucket entry holding the whole chunk log, every chunk framed by its uvarint length.
// Appends are optimistic: the entry is rewritten guarded by the revision it was read at, and retried on conflict.
package jetstream

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/state"
)

const defaultMaxAppendAttempts = 8

// StateClient is a state.Client backed by a jetstream key value bucket.
type StateClient struct {
	kv                nats.KeyValue
	maxAppendAttempts int
	log               *zap.SugaredLogger
}

var _ state.Client = (*StateClient)(nil)

// Option to configure the StateClient
type Option func(*StateClient)

// WithMaxAppendAttempts sets how many times a conflicting append is retried.
func WithMaxAppendAttempts(n int) Option {
	return func(sc *StateClient) {
		if n > 0 {
			sc.maxAppendAttempts = n
		}
	}
}

// NewStateClient returns a state client on the given bucket.
func NewStateClient(ctx context.Context, kv nats.KeyValue, opts ...Option) *StateClient {
	sc := &StateClient{
		kv:                kv,
		maxAppendAttempts: defaultMaxAppendAttempts,
		log:               logging.FromContext(ctx).With("stateStore", "jetstream", "bucket", kv.Bucket()),
	}
	for _, o := range opts {
		o(sc)
	}
	return sc
}

// FetchAll returns the chunk log of key, empty if the key was never written or has been cleared.
func (sc *StateClient) FetchAll(ctx context.Context, key state.Key) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, err := sc.kv.Get(key.Encoded())
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fnerr.Wrap(fnerr.Transport, err, "failed to fetch state "+key.String())
	}
	chunks, err := unframe(entry.Value())
	if err != nil {
		return nil, fnerr.Wrap(fnerr.Decode, err, "corrupted chunk log for "+key.String())
	}
	return chunks, nil
}

// Append adds chunk at the end of the chunk log of key.
func (sc *StateClient) Append(ctx context.Context, key state.Key, chunk []byte) error {
	id := key.Encoded()
	for attempt := 1; attempt <= sc.maxAppendAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		entry, err := sc.kv.Get(id)
		switch {
		case errors.Is(err, nats.ErrKeyNotFound):
			_, err = sc.kv.Create(id, frame(nil, chunk))
		case err != nil:
			return fnerr.Wrap(fnerr.Transport, err, "failed to read state "+key.String())
		default:
			_, err = sc.kv.Update(id, frame(entry.Value(), chunk), entry.Revision())
		}
		if err == nil {
			return nil
		}
		if !isConflict(err) {
			return fnerr.Wrap(fnerr.Transport, err, "failed to append state "+key.String())
		}
		sc.log.Debugw("Conflicting append, retrying", zap.String("key", key.String()), zap.Int("attempt", attempt))
	}
	return fnerr.Newf(fnerr.Transport, "failed to append state %s: still conflicting after %d attempts", key, sc.maxAppendAttempts)
}

// Clear removes the chunk log of key.
func (sc *StateClient) Clear(ctx context.Context, key state.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := sc.kv.Delete(key.Encoded()); err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fnerr.Wrap(fnerr.Transport, err, "failed to clear state "+key.String())
	}
	return nil
}

func isConflict(err error) bool {
	if errors.Is(err, nats.ErrKeyExists) {
		return true
	}
	var apiErr *nats.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == nats.JSErrCodeStreamWrongLastSequence
}

// frame returns log followed by chunk prefixed with its uvarint length.
func frame(log []byte, chunk []byte) []byte {
	out := make([]byte, 0, len(log)+binary.MaxVarintLen64+len(chunk))
	out = append(out, log...)
	out = binary.AppendUvarint(out, uint64(len(chunk)))
	return append(out, chunk...)
}

func unframe(log []byte) ([][]byte, error) {
	var chunks [][]byte
	r := bytes.NewReader(log)
	for r.Len() > 0 {
		n, err := binary.ReadUvarint(r)
		if err != nil {
			return nil, err
		}
		if n > uint64(r.Len()) {
			return nil, io.ErrUnexpectedEOF
		}
		chunk := make([]byte, n)
		if _, err := io.ReadFull(r, chunk); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}
