package eventbus

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/annel0/casino-server/internal/logging"
)

// Event is a domain event published for audit and integration consumers
// (user.registered, user.login, skin.purchased, ...).
type Event struct {
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Publisher emits domain events. Publishing is best-effort: request handling
// never fails because an event could not be delivered.
type Publisher interface {
	Publish(eventType string, data map[string]interface{})
	Close()
}

// subjectPrefix namespaces every event subject on the bus.
const subjectPrefix = "casino.events."

// NatsPublisher publishes events to a NATS server.
type NatsPublisher struct {
	conn *nats.Conn
}

// NewNatsPublisher connects to the NATS server at url.
func NewNatsPublisher(url string) (*NatsPublisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: conn}, nil
}

// Publish implements Publisher.
func (p *NatsPublisher) Publish(eventType string, data map[string]interface{}) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logging.Warn("eventbus: marshal %s: %v", eventType, err)
		return
	}
	if err := p.conn.Publish(subjectPrefix+eventType, payload); err != nil {
		logging.Warn("eventbus: publish %s: %v", eventType, err)
	}
}

// Close implements Publisher.
func (p *NatsPublisher) Close() {
	p.conn.Drain()
}

// NopPublisher discards every event. Used when NATS is not configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(string, map[string]interface{}) {}

// Close implements Publisher.
func (NopPublisher) Close() {}
