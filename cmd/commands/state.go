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

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
	"github.com/numaproj/numaflow-harness/pkg/config"
	natsclient "github.com/numaproj/numaflow-harness/pkg/shared/clients/nats"
	"github.com/numaproj/numaflow-harness/pkg/shared/util"
	"github.com/numaproj/numaflow-harness/pkg/state"
	"github.com/numaproj/numaflow-harness/pkg/state/inmem"
	"github.com/numaproj/numaflow-harness/pkg/state/jetstream"
	redisstate "github.com/numaproj/numaflow-harness/pkg/state/redis"
)

// newStateClient connects to the configured state backend, the returned function releases the connection.
func newStateClient(ctx context.Context, conf config.StateConfig) (state.Client, func() error, error) {
	noop := func() error { return nil }
	switch conf.Backend {
	case config.StateBackendInMem:
		return inmem.NewInMemClient(ctx, "local"), noop, nil
	case config.StateBackendRedis:
		var client redis.UniversalClient
		if len(conf.Redis.Addrs) == 0 {
			client = redisstate.NewUniversalClientFromEnv()
		} else {
			client = redisstate.NewUniversalClient(&redis.UniversalOptions{
				Addrs:      conf.Redis.Addrs,
				MasterName: conf.Redis.MasterName,
				Username:   os.Getenv(v1alpha1.EnvRedisUser),
				Password:   os.Getenv(v1alpha1.EnvRedisPassword),
			})
		}
		var opts []redisstate.Option
		if conf.Redis.KeyPrefix != "" {
			opts = append(opts, redisstate.WithKeyPrefix(conf.Redis.KeyPrefix))
		}
		if conf.Redis.TTL > 0 {
			opts = append(opts, redisstate.WithTTL(conf.Redis.TTL))
		}
		sc := redisstate.NewStateClient(ctx, client, opts...)
		return sc, sc.Close, nil
	case config.StateBackendJetStream:
		url := util.LookupEnvStringOr(v1alpha1.EnvJetStreamURL, conf.JetStream.URL)
		nc, err := natsclient.NewNATSClient(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		kv, err := nc.KeyValue(conf.JetStream.Bucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		var opts []jetstream.Option
		if conf.JetStream.MaxAppendAttempts > 0 {
			opts = append(opts, jetstream.WithMaxAppendAttempts(conf.JetStream.MaxAppendAttempts))
		}
		return jetstream.NewStateClient(ctx, kv, opts...), func() error { nc.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", conf.Backend)
	}
}
