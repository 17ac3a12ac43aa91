// Package kafka publica los eventos de dominio en un tópico Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/jhoicas/hospitality-ops/internal/application/events"
	"github.com/jhoicas/hospitality-ops/pkg/config"
)

var _ events.Publisher = (*Publisher)(nil)

// MessageWriter lo que el publisher necesita de *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher serializa cada evento como JSON; la clave del mensaje es el ID del agregado.
type Publisher struct {
	w MessageWriter
}

// NewWriter arma un *kafka.Writer para el tópico configurado.
func NewWriter(cfg config.KafkaConfig) *kafkago.Writer {
	return &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
}

// NewPublisher construye el publisher sobre w.
func NewPublisher(w MessageWriter) *Publisher {
	return &Publisher{w: w}
}

// Publish escribe el evento. El header "event-type" permite filtrar sin decodificar el cuerpo.
func (p *Publisher) Publish(ctx context.Context, evt events.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("serializar evento %s: %w", evt.Type, err)
	}
	msg := kafkago.Message{
		Key:     []byte(evt.Key),
		Value:   body,
		Time:    evt.OccurredAt,
		Headers: []kafkago.Header{{Key: "event-type", Value: []byte(evt.Type)}},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publicar evento %s: %w", evt.Type, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (p *Publisher) Close() error {
	return p.w.Close()
}
