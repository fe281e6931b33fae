package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer owns one writer per event topic. Writers for the catalog
// topics (activity_events, user_events) are provisioned up front; anything
// else, such as a requeued DLQ entry with an unexpected topic, still gets a
// writer lazily.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

// NewKafkaProducer creates a KafkaProducer with a writer for every topic in
// the event catalog.
func NewKafkaProducer(brokers []string) *KafkaProducer {
	p := &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]*kafka.Writer, len(topicSubjects)),
	}
	for _, topic := range catalogTopics() {
		p.writers[topic] = p.newWriter(topic)
	}
	return p
}

// WriteMessages writes messages to the given topic.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if writer, ok := p.writers[topic]; ok {
		return writer
	}

	writer := p.newWriter(topic)
	p.writers[topic] = writer
	return writer
}

func (p *KafkaProducer) newWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:  kafka.TCP(p.brokers...),
		Topic: topic,
		// Messages are keyed by aggregate ID, so hashing pins every event
		// for a given activity or user to one partition and preserves
		// their order.
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: 50 * time.Millisecond,
		Async:        false,
	}
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, writer := range p.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}
