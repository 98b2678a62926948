package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Publisher emits order events. Publishing is best effort: the order
// mutation has already committed by the time an event goes out, so failures
// are logged, never propagated to the caller.
type Publisher interface {
	Publish(topic, eventType string, key []byte, payload any)
	Close()
}

type kafkaPublisher struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	name    string
}

// NewKafkaPublisher builds an async publisher over the given brokers. The
// topic travels per message so one writer serves all order topics.
func NewKafkaPublisher(brokers []string, serviceName string, buf int) Publisher {
	p := &kafkaPublisher{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		name:    serviceName,
	}
	go p.loop()
	return p
}

func (p *kafkaPublisher) loop() {
	for m := range p.inbox {
		if err := p.w.WriteMessages(context.Background(), m); err != nil {
			log.Printf("kafka publish to %s failed: %v", m.Topic, err)
		}
	}
	if err := p.w.Close(); err != nil {
		log.Printf("kafka writer close: %v", err)
	}
	close(p.closeCh)
}

func (p *kafkaPublisher) Publish(topic, eventType string, key []byte, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("marshal %s payload: %v", eventType, err)
		return
	}
	envelope := Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.name,
		Payload:      raw,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("marshal %s envelope: %v", eventType, err)
		return
	}

	select {
	case p.inbox <- kafka.Message{Topic: topic, Key: key, Value: value, Time: time.Now()}:
	default:
		// Full inbox means the broker is behind; dropping beats blocking
		// the request path.
		log.Printf("kafka inbox full, dropping %s event", eventType)
	}
}

// Close flushes buffered messages and stops the writer goroutine.
func (p *kafkaPublisher) Close() {
	close(p.inbox)
	<-p.closeCh
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(topic, eventType string, key []byte, payload any) {}
func (NoopPublisher) Close()                                                   {}
