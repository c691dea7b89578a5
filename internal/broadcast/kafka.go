package broadcast

import (
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaSink publishes every snapshot to a Kafka topic as an additional,
// off-by-default broadcaster output (SPEC_FULL.md §3). Unlike the
// websocket subscribers it has no drop-oldest buffer: a synchronous
// producer backs it, and a snapshot whose send fails is logged and dropped
// (see deliver). This matches the pack's periodic-drain-and-publish
// broadcaster shape, but
// delivering inline per snapshot rather than on a ticker, since this sink
// is driven by the same delivery loop as the websocket fan-out.
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
	connID   string
}

// NewKafkaSink dials brokers and returns a sink publishing to topic.
func NewKafkaSink(brokers []string, topic string, log *zap.Logger) (*KafkaSink, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 5

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &KafkaSink{producer: producer, topic: topic, log: log, connID: "kafka"}, nil
}

func (k *KafkaSink) id() string { return k.connID }

// deliver publishes payload synchronously. Errors are logged and the
// record dropped rather than retried inline, keeping this sink from
// stalling the shared delivery loop feeding the websocket subscribers.
func (k *KafkaSink) deliver(payload []byte) {
	msg := &sarama.ProducerMessage{Topic: k.topic, Value: sarama.ByteEncoder(payload)}
	if _, _, err := k.producer.SendMessage(msg); err != nil {
		k.log.Warn("kafka publish failed", zap.Error(err))
	}
}

// Close releases the underlying producer.
func (k *KafkaSink) Close() error { return k.producer.Close() }
