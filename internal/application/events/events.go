// Package events define los eventos de dominio que se publican después del commit.
package events

import (
	"context"
	"sync"
	"time"
)

// Tipos de evento.
const (
	OrderFulfilled       = "order.fulfilled"
	TransferCompleted    = "transfer.completed"
	ExtrasTransferFailed = "extras.transfer_failed"
)

// Event mensaje publicado. Key agrupa por agregado (orderID, transferID) para preservar orden.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New arma un evento con la hora actual.
func New(eventType, key string, payload any) Event {
	return Event{Type: eventType, Key: key, Payload: payload, OccurredAt: time.Now().UTC()}
}

// Publisher publica eventos. La publicación es best-effort: quien llama registra el error y sigue.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Nop descarta los eventos (Kafka no configurado).
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder guarda los eventos en memoria; usado en tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

// Events devuelve una copia de lo publicado.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType filtra por tipo.
func (r *Recorder) OfType(eventType string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// OrderFulfilledPayload cuerpo de order.fulfilled.
type OrderFulfilledPayload struct {
	OrderID     string   `json:"order_id"`
	OrderNumber string   `json:"order_number"`
	Departments []string `json:"departments"`
	Total       int64    `json:"total"`
}

// TransferCompletedPayload cuerpo de transfer.completed.
type TransferCompletedPayload struct {
	TransferID   string `json:"transfer_id"`
	From         string `json:"from"`
	To           string `json:"to"`
	Items        int    `json:"items"`
	FailedExtras int    `json:"failed_extras"`
}

// ExtrasTransferFailedPayload cuerpo de extras.transfer_failed.
type ExtrasTransferFailedPayload struct {
	TransferID string `json:"transfer_id"`
	ExtraID    string `json:"extra_id"`
	Quantity   string `json:"quantity"`
	Error      string `json:"error"`
}
