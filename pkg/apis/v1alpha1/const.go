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

package v1alpha1

const (
	Project = "numaflow-harness"

	// ParDoURN identifies a parallel do transform.
	ParDoURN = "beam:transform:pardo:v1"

	DefaultMainTag = "main"

	// State kinds
	StateKindValue     = "value"
	StateKindBag       = "bag"
	StateKindCombining = "combining"

	// Side input access patterns
	SideInputSingleton            = "singleton"
	SideInputSingletonWithDefault = "singletonWithDefault"
	SideInputIterable             = "iterable"

	DefaultRedisKeyPrefix     = "harness:state:"
	DefaultJetStreamKVBucket  = "harness-state"
	DefaultMetricsPort        = 2469
	DefaultFlushParallelism   = 8
	DefaultKafkaSinkTopicName = "harness-output"

	// Environment variables
	EnvRedisURL            = "NUMAFLOW_HARNESS_REDIS_URL"
	EnvRedisUser           = "NUMAFLOW_HARNESS_REDIS_USER"
	EnvRedisPassword       = "NUMAFLOW_HARNESS_REDIS_PASSWORD"
	EnvRedisSentinelMaster = "NUMAFLOW_HARNESS_REDIS_SENTINEL_MASTER"
	EnvJetStreamURL        = "NUMAFLOW_HARNESS_JETSTREAM_URL"
	EnvJetStreamUser       = "NUMAFLOW_HARNESS_JETSTREAM_USER"
	EnvJetStreamPassword   = "NUMAFLOW_HARNESS_JETSTREAM_PASSWORD"
	EnvJetStreamTLSEnabled = "NUMAFLOW_HARNESS_JETSTREAM_TLS_ENABLED"
	EnvTransformObject     = "NUMAFLOW_HARNESS_TRANSFORM_OBJECT"
)
