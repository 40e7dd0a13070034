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

// Package config loads the configuration of the harness.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/numaproj/numaflow-harness/pkg/apis/v1alpha1"
)

const (
	StateBackendInMem     = "inmem"
	StateBackendRedis     = "redis"
	StateBackendJetStream = "jetstream"

	SinkTypeLog   = "log"
	SinkTypeKafka = "kafka"
)

// Config is the configuration of a harness run.
type Config struct {
	// Transform is the path of the transform descriptor.
	Transform        string       `json:"transform"`
	State            StateConfig  `json:"state"`
	Sinks            []SinkConfig `json:"sinks"`
	MetricsPort      int          `json:"metricsPort"`
	FlushParallelism int          `json:"flushParallelism"`
}

type StateConfig struct {
	// Backend is one of inmem, redis and jetstream.
	Backend   string           `json:"backend"`
	Redis     *RedisConfig     `json:"redis"`
	JetStream *JetStreamConfig `json:"jetstream"`
}

type RedisConfig struct {
	// Addrs of the redis servers, read from the environment when empty.
	Addrs      []string      `json:"addrs"`
	MasterName string        `json:"masterName"`
	KeyPrefix  string        `json:"keyPrefix"`
	TTL        time.Duration `json:"ttl"`
}

type JetStreamConfig struct {
	URL               string `json:"url"`
	Bucket            string `json:"bucket"`
	MaxAppendAttempts int    `json:"maxAppendAttempts"`
}

// SinkConfig attaches a sink to a destination of the transform.
type SinkConfig struct {
	Name        string           `json:"name"`
	Destination string           `json:"destination"`
	Type        string           `json:"type"`
	Kafka       *KafkaSinkConfig `json:"kafka"`
}

type KafkaSinkConfig struct {
	Brokers []string `json:"brokers"`
	Topic   string   `json:"topic"`
	// Config is a sarama config in yaml.
	Config     string `json:"config"`
	ValueCoder string `json:"valueCoder"`
	// +optional
	KeyCoder string `json:"keyCoder"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.State.Backend {
	case StateBackendInMem:
	case StateBackendRedis:
		if c.State.Redis == nil {
			return fmt.Errorf("redis state backend requires redis config")
		}
	case StateBackendJetStream:
		if c.State.JetStream == nil || c.State.JetStream.URL == "" {
			return fmt.Errorf("jetstream state backend requires a url")
		}
	default:
		return fmt.Errorf("unknown state backend %q", c.State.Backend)
	}
	names := make(map[string]struct{})
	for _, s := range c.Sinks {
		if s.Name == "" || s.Destination == "" {
			return fmt.Errorf("sink name and destination are required")
		}
		if _, ok := names[s.Name]; ok {
			return fmt.Errorf("duplicate sink %q", s.Name)
		}
		names[s.Name] = struct{}{}
		switch s.Type {
		case SinkTypeLog:
		case SinkTypeKafka:
			if s.Kafka == nil || len(s.Kafka.Brokers) == 0 || s.Kafka.Topic == "" {
				return fmt.Errorf("kafka sink %q requires brokers and a topic", s.Name)
			}
		default:
			return fmt.Errorf("sink %q has unknown type %q", s.Name, s.Type)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("state.backend", StateBackendInMem)
	v.SetDefault("metricsPort", v1alpha1.DefaultMetricsPort)
	v.SetDefault("flushParallelism", v1alpha1.DefaultFlushParallelism)
}

// LoadConfig reads the configuration file at path. Top level settings can be overridden by NUMAFLOW_HARNESS_*
// environment variables, e.g. NUMAFLOW_HARNESS_STATE_BACKEND.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("NUMAFLOW_HARNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration file. %w", err)
	}
	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed unmarshal configuration file. %w", err)
	}
	if conf.State.Backend == StateBackendJetStream && conf.State.JetStream != nil && conf.State.JetStream.Bucket == "" {
		conf.State.JetStream.Bucket = v1alpha1.DefaultJetStreamKVBucket
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}
