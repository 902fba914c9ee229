package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp091 "github.com/rabbitmq/amqp091-go"
)

// This file contains the message queue plumbing between the orchestrator and
// the forecast workers. Route chunks travel through a single quorum queue;
// messages that keep failing are dead-lettered after the broker's delivery
// limit so one poisoned chunk cannot wedge the nightly run.

const (
	chunkQueueName      = "forecast.chunks"
	deadLetterExchange  = "forecast.dlx"
	deadLetterQueueName = "forecast.chunks.dlq"

	// queueDeliveryLimit is how many times the broker redelivers a chunk
	// before routing it to the dead-letter queue.
	queueDeliveryLimit = 3
)

// chunkPublisher is the orchestrator's view of the queue.
type chunkPublisher interface {
	PublishChunk(ctx context.Context, msg ChunkMessage, chunkIndex int) error
}

// amqpQueue wraps an AMQP connection and channel for both publishing and
// consuming route chunks.
type amqpQueue struct {
	conn   *amqp091.Connection
	ch     *amqp091.Channel
	mu     sync.Mutex
	logger *slog.Logger
}

// newAMQPQueue connects to the broker and declares the chunk queue together
// with its dead-letter topology.
func newAMQPQueue(url string, logger *slog.Logger) (*amqpQueue, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("could not connect to message broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(deadLetterExchange, "direct", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not declare dead-letter exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(deadLetterQueueName, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not declare dead-letter queue: %w", err)
	}
	if err := ch.QueueBind(deadLetterQueueName, chunkQueueName, deadLetterExchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not bind dead-letter queue: %w", err)
	}
	_, err = ch.QueueDeclare(chunkQueueName, true, false, false, false, amqp091.Table{
		"x-queue-type":           "quorum",
		"x-delivery-limit":       queueDeliveryLimit,
		"x-dead-letter-exchange": deadLetterExchange,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not declare chunk queue: %w", err)
	}

	return &amqpQueue{conn: conn, ch: ch, logger: logger}, nil
}

// PublishChunk serializes a chunk message and publishes it to the chunk
// queue as a persistent message.
func (q *amqpQueue) PublishChunk(ctx context.Context, msg ChunkMessage, chunkIndex int) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("could not marshal chunk %d: %w", chunkIndex, err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = q.ch.PublishWithContext(ctx, "", chunkQueueName, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		Headers: amqp091.Table{
			"ChunkIndex": int32(chunkIndex),
			"ChunkSize":  int32(len(msg.Routes)),
		},
		Body: body,
	})
	if err != nil {
		return fmt.Errorf("could not publish chunk %d: %w", chunkIndex, err)
	}
	return nil
}

// Consume starts delivering chunk messages on a dedicated channel with a
// prefetch matching the worker pool size. Each delivery must be acked or
// nacked by the handler.
func (q *amqpQueue) Consume(prefetch int) (<-chan amqp091.Delivery, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("could not open consumer channel: %w", err)
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("could not set prefetch: %w", err)
	}
	deliveries, err := ch.Consume(chunkQueueName, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("could not start consuming: %w", err)
	}
	return deliveries, nil
}

// Close shuts down the channel and connection.
func (q *amqpQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ch != nil {
		q.ch.Close()
	}
	if q.conn != nil {
		q.conn.Close()
	}
}
