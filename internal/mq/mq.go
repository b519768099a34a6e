package mq

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/teashop/apiserver/config"
)

// Event types published by the inventory service.
const (
	EventSaleAdjusted = "inventory.sale_adjusted"
	EventLowStock     = "inventory.low_stock"
)

// Event is the JSON payload published after a successful inventory
// mutation. Date and Change are only set for sale adjustments.
type Event struct {
	Type       string    `json:"type"`
	ItemID     int64     `json:"item_id"`
	Name       string    `json:"name,omitempty"`
	Date       string    `json:"date,omitempty"`
	Change     int64     `json:"change,omitempty"`
	Quantity   int64     `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// Publisher wraps a backend with a typed event API bound to one channel.
type Publisher struct {
	backend Backend
	channel string
}

// NewPublisher constructs a Publisher for the provided backend.
func NewPublisher(backend Backend, channel string) *Publisher {
	return &Publisher{backend: backend, channel: channel}
}

// PublishEvent serializes the event and sends it to the configured channel.
func (p *Publisher) PublishEvent(ctx context.Context, event Event) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", err
	}
	return p.backend.Publish(ctx, p.channel, data, map[string]string{"type": event.Type})
}

// Close closes the underlying backend.
func (p *Publisher) Close() error {
	return p.backend.Close()
}

// NewBackend constructs the broker backend selected by config. A "none"
// backend yields (nil, nil); callers skip publishing entirely.
func NewBackend(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendRabbitMQ:
		return NewRabbitMQClient(cfg.RabbitMQ)
	case config.BackendPubSub:
		return NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, errors.New("unknown mq backend: " + cfg.Backend)
	}
}
