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

// Package redis implements the state client on redis lists: one list per state key, one list element per chunk.
package redis

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/shared/util"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/state"
)

// StateClient is a state.Client backed by redis.
type StateClient struct {
	client redis.UniversalClient
	opts   *Options
	log    *zap.SugaredLogger
}

var _ state.Client = (*StateClient)(nil)

// NewUniversalClient returns a new redis client.
func NewUniversalClient(options *redis.UniversalOptions) redis.UniversalClient {
	return redis.NewUniversalClient(options)
}

// NewUniversalClientFromEnv returns a new redis client configured from the environment.
func NewUniversalClientFromEnv() redis.UniversalClient {
	opts := &redis.UniversalOptions{
		Username:   os.Getenv(v1alpha1.EnvRedisUser),
		Password:   os.Getenv(v1alpha1.EnvRedisPassword),
		MasterName: os.Getenv(v1alpha1.EnvRedisSentinelMaster),
	}
	opts.Addrs = util.LookupEnvListOr(v1alpha1.EnvRedisURL, nil)
	return NewUniversalClient(opts)
}

// NewStateClient returns a state client using the given redis client.
func NewStateClient(ctx context.Context, client redis.UniversalClient, opts ...Option) *StateClient {
	o := &Options{KeyPrefix: v1alpha1.DefaultRedisKeyPrefix}
	for _, opt := range opts {
		opt.Apply(o)
	}
	return &StateClient{
		client: client,
		opts:   o,
		log:    logging.FromContext(ctx).With("stateStore", "redis"),
	}
}

func (sc *StateClient) redisKey(key state.Key) string {
	return sc.opts.KeyPrefix + key.Encoded()
}

// FetchAll reads the whole list of key.
func (sc *StateClient) FetchAll(ctx context.Context, key state.Key) ([][]byte, error) {
	values, err := sc.client.LRange(ctx, sc.redisKey(key), 0, -1).Result()
	if err != nil {
		return nil, fnerr.Wrap(fnerr.Transport, err, "failed to fetch state "+key.String())
	}
	chunks := make([][]byte, len(values))
	for i, v := range values {
		chunks[i] = []byte(v)
	}
	return chunks, nil
}

// Append pushes chunk at the tail of the list of key.
func (sc *StateClient) Append(ctx context.Context, key state.Key, chunk []byte) error {
	rk := sc.redisKey(key)
	_, err := sc.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, rk, chunk)
		if sc.opts.TTL > 0 {
			pipe.Expire(ctx, rk, sc.opts.TTL)
		}
		return nil
	})
	if err != nil {
		return fnerr.Wrap(fnerr.Transport, err, "failed to append state "+key.String())
	}
	return nil
}

// Clear deletes the list of key.
func (sc *StateClient) Clear(ctx context.Context, key state.Key) error {
	if err := sc.client.Del(ctx, sc.redisKey(key)).Err(); err != nil {
		return fnerr.Wrap(fnerr.Transport, err, "failed to clear state "+key.String())
	}
	return nil
}

// Close closes the underlying redis client.
func (sc *StateClient) Close() error {
	sc.log.Info("Closing redis state client")
	return sc.client.Close()
}
