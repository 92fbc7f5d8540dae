package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/streadway/amqp"

	"github.com/minhvo/tiemao-backend/pkg/logger"
)

const orderQueue = "order_events"

// OrderEvent is the payload published when an order is paid.
type OrderEvent struct {
	OrderID  uint   `json:"order_id"`
	UserID   uint   `json:"user_id"`
	Total    int64  `json:"total"`
	Status   string `json:"status"`
	PaidAt   string `json:"paid_at"`
	ItemsQty int    `json:"items_qty"`
}

// Client publishes order events to RabbitMQ. The broker is optional: a nil
// *Client is safe to use and drops every publish.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ and declares the order event queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		orderQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", orderQueue, err)
	}

	logger.Info("RabbitMQ client connected", map[string]interface{}{
		"queue": orderQueue,
	})

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// PublishOrderCreated publishes an order event. Failures are logged and
// returned but callers treat them as best-effort.
func (c *Client) PublishOrderCreated(event OrderEvent) error {
	if c == nil || c.channel == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	err = c.channel.Publish(
		"",         // default exchange
		orderQueue, // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		logger.Error("Failed to publish order event", err, map[string]interface{}{
			"order_id": event.OrderID,
		})
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	return nil
}
