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

// Package kafka implements an output receiver producing the values it accepts to a kafka topic.
package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/numaproj/numaflow-harness/pkg/coder"
	"github.com/numaproj/numaflow-harness/pkg/fnerr"
	"github.com/numaproj/numaflow-harness/pkg/forwarder"
	"github.com/numaproj/numaflow-harness/pkg/shared/logging"
	"github.com/numaproj/numaflow-harness/pkg/shared/util"
	"github.com/numaproj/numaflow-harness/pkg/window"
)

// ToKafka produces the accepted values to a kafka topic.
type ToKafka struct {
	name       string
	topic      string
	producer   sarama.SyncProducer
	valueCoder coder.Coder
	keyCoder   coder.Coder
	log        *zap.SugaredLogger
}

var _ forwarder.Receiver = (*ToKafka)(nil)

type Option func(*ToKafka) error

// WithKeyCoder sets the coder of the keys of coder.KV values. The key becomes the message key and the value
// alone is encoded into the message value.
func WithKeyCoder(c coder.Coder) Option {
	return func(t *ToKafka) error {
		t.keyCoder = c
		return nil
	}
}

// NewSyncProducer creates a sync producer to brokers, config is the yaml form of a sarama config.
func NewSyncProducer(brokers []string, config string) (sarama.SyncProducer, error) {
	cfg, err := util.GetSaramaProducerConfig(config)
	if err != nil {
		return nil, err
	}
	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer. %w", err)
	}
	return producer, nil
}

// NewToKafka returns a ToKafka encoding values with valueCoder. It takes over the producer.
func NewToKafka(ctx context.Context, name string, producer sarama.SyncProducer, topic string, valueCoder coder.Coder, opts ...Option) (*ToKafka, error) {
	if topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if valueCoder == nil {
		return nil, fmt.Errorf("value coder is required")
	}
	toKafka := &ToKafka{
		name:       name,
		topic:      topic,
		producer:   producer,
		valueCoder: valueCoder,
		log:        logging.FromContext(ctx).With("sinkType", "kafka").With("topic", topic),
	}
	for _, o := range opts {
		if err := o(toKafka); err != nil {
			return nil, err
		}
	}
	return toKafka, nil
}

// GetName returns the name.
func (tk *ToKafka) GetName() string {
	return tk.name
}

func (tk *ToKafka) message(wv window.WindowedValue) (*sarama.ProducerMessage, error) {
	msg := &sarama.ProducerMessage{
		Topic:     tk.topic,
		Timestamp: wv.Timestamp,
	}
	v := wv.Value
	if kv, ok := v.(coder.KV); ok && tk.keyCoder != nil {
		k, err := coder.EncodeToBytes(tk.keyCoder, kv.Key)
		if err != nil {
			return nil, err
		}
		msg.Key = sarama.ByteEncoder(k)
		v = kv.Value
	}
	b, err := coder.EncodeToBytes(tk.valueCoder, v)
	if err != nil {
		return nil, err
	}
	msg.Value = sarama.ByteEncoder(b)
	return msg, nil
}

// Accept produces wv to the topic and waits for the acknowledgement.
func (tk *ToKafka) Accept(_ context.Context, wv window.WindowedValue) error {
	msg, err := tk.message(wv)
	if err != nil {
		return fnerr.Wrap(fnerr.ContractViolation, err, fmt.Sprintf("sink %s failed to encode %T", tk.name, wv.Value))
	}
	if _, _, err = tk.producer.SendMessage(msg); err != nil {
		kafkaSinkWriteErrors.WithLabelValues(tk.name).Inc()
		tk.log.Errorw("SendMessage failed", zap.Error(err))
		return fnerr.Wrap(fnerr.Transport, err, "failed to produce to "+tk.topic)
	}
	kafkaSinkWriteCount.WithLabelValues(tk.name).Inc()
	return nil
}

func (tk *ToKafka) Close() error {
	tk.log.Info("Closing kafka producer...")
	return tk.producer.Close()
}
