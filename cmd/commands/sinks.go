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

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/config"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/sinks/kafka"
	"github.com/numaproj/numaflow-harness/pkg/sinks/logger"
)

// attachSinks registers the configured sinks as receivers of their destinations. The returned functions close
// them.
func attachSinks(ctx context.Context, sinks []config.SinkConfig, coders *coder.Registry, consumers *forwarder.Consumers) ([]func() error, error) {
	var closers []func() error
	for _, s := range sinks {
		switch s.Type {
		case config.SinkTypeLog:
			consumers.Put(s.Destination, logger.NewToLog(ctx, s.Name))
		case config.SinkTypeKafka:
			valueCoder, err := coders.Lookup(s.Kafka.ValueCoder)
			if err != nil {
				return closers, fmt.Errorf("sink %s: %w", s.Name, err)
			}
			var opts []kafka.Option
			if s.Kafka.KeyCoder != "" {
				keyCoder, err := coders.Lookup(s.Kafka.KeyCoder)
				if err != nil {
					return closers, fmt.Errorf("sink %s: %w", s.Name, err)
				}
				opts = append(opts, kafka.WithKeyCoder(keyCoder))
			}
			producer, err := kafka.NewSyncProducer(s.Kafka.Brokers, s.Kafka.Config)
			if err != nil {
				return closers, fmt.Errorf("sink %s: %w", s.Name, err)
			}
			toKafka, err := kafka.NewToKafka(ctx, s.Name, producer, s.Kafka.Topic, valueCoder, opts...)
			if err != nil {
				_ = producer.Close()
				return closers, fmt.Errorf("sink %s: %w", s.Name, err)
			}
			closers = append(closers, toKafka.Close)
			consumers.Put(s.Destination, toKafka)
		default:
			return closers, fmt.Errorf("sink %s: unknown type %q", s.Name, s.Type)
		}
	}
	return closers, nil
}
