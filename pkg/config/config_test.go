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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "harness.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
transform: /etc/harness/transform.yaml
state:
  backend: redis
  redis:
    addrs:
      - localhost:6379
    keyPrefix: "test:"
    ttl: 1h
sinks:
  - name: out
    destination: outputPC
    type: kafka
    kafka:
      brokers:
        - localhost:9092
      topic: output
      valueCoder: string_utf8
  - name: debug
    destination: outputPC
    type: log
`)
	conf, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/etc/harness/transform.yaml", conf.Transform)
	assert.Equal(t, StateBackendRedis, conf.State.Backend)
	require.NotNil(t, conf.State.Redis)
	assert.Equal(t, []string{"localhost:6379"}, conf.State.Redis.Addrs)
	assert.Equal(t, "test:", conf.State.Redis.KeyPrefix)
	assert.Equal(t, time.Hour, conf.State.Redis.TTL)
	require.Len(t, conf.Sinks, 2)
	assert.Equal(t, "output", conf.Sinks[0].Kafka.Topic)
	assert.Equal(t, SinkTypeLog, conf.Sinks[1].Type)
	assert.Equal(t, v1alpha1.DefaultMetricsPort, conf.MetricsPort)
	assert.Equal(t, v1alpha1.DefaultFlushParallelism, conf.FlushParallelism)
}

func TestLoadConfig_Defaults(t *testing.T) {
	conf, err := LoadConfig(writeConfig(t, "transform: t.yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, StateBackendInMem, conf.State.Backend)

	conf, err = LoadConfig(writeConfig(t, "state:\n  backend: jetstream\n  jetstream:\n    url: nats://localhost:4222\n"))
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.DefaultJetStreamKVBucket, conf.State.JetStream.Bucket)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("NUMAFLOW_HARNESS_METRICSPORT", "9090")
	conf, err := LoadConfig(writeConfig(t, "transform: t.yaml\n"))
	require.NoError(t, err)
	assert.Equal(t, 9090, conf.MetricsPort)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
	_, err = LoadConfig(writeConfig(t, "state:\n  backend: etcd\n"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := map[string]Config{
		"redis without config":  {State: StateConfig{Backend: StateBackendRedis}},
		"jetstream without url": {State: StateConfig{Backend: StateBackendJetStream, JetStream: &JetStreamConfig{}}},
		"sink without name":     {State: StateConfig{Backend: StateBackendInMem}, Sinks: []SinkConfig{{Destination: "d", Type: SinkTypeLog}}},
		"duplicate sink": {State: StateConfig{Backend: StateBackendInMem}, Sinks: []SinkConfig{
			{Name: "a", Destination: "d", Type: SinkTypeLog},
			{Name: "a", Destination: "d", Type: SinkTypeLog},
		}},
		"kafka without topic": {State: StateConfig{Backend: StateBackendInMem}, Sinks: []SinkConfig{
			{Name: "a", Destination: "d", Type: SinkTypeKafka, Kafka: &KafkaSinkConfig{Brokers: []string{"b"}}},
		}},
		"unknown sink": {State: StateConfig{Backend: StateBackendInMem}, Sinks: []SinkConfig{{Name: "a", Destination: "d", Type: "s3"}}},
	}
	for name, c := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, c.Validate())
		})
	}
}
