package queue

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type TaskHandler interface {
	Handle(ctx context.Context, task Task) error
}

type Consumer struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	claimInterval time.Duration
	maxAttempts   int
	logger        zerolog.Logger
	handler       TaskHandler
}

// NewConsumer reads tasks for group on stream. A task delivered maxAttempts
// times without success is dropped; zero or less retries forever.
func NewConsumer(client *redis.Client, stream, group, consumer string, claimInterval time.Duration, maxAttempts int, logger zerolog.Logger, handler TaskHandler) *Consumer {
	return &Consumer{
		client:        client,
		stream:        stream,
		group:         group,
		consumer:      consumer,
		claimInterval: claimInterval,
		maxAttempts:   maxAttempts,
		logger:        logger,
		handler:       handler,
	}
}

// EnsureGroup creates the consumer group (and the stream) if missing.
func (c *Consumer) EnsureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.EnsureGroup(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.claimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.read(ctx); err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error().Err(err).Msg("stream read error")
				time.Sleep(2 * time.Second)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.claimStalled(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("claim stalled failed")
			}
		default:
		}
	}
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	task, err := DecodeTask(msg.Values)
	if err != nil {
		// Undecodable entries can never succeed; ack so they do not cycle.
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("decode task failed")
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.handler.Handle(ctx, task); err != nil {
		c.logger.Error().
			Err(err).
			Str("message_id", msg.ID).
			Str("type", string(task.Type)).
			Msg("handle task failed")
		return
	}
	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", id).Msg("ack failed")
	}
}

func (c *Consumer) claimStalled(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Start:  "-",
		End:    "+",
		Count:  10,
	}).Result()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if entry.Idle < c.claimInterval {
			continue
		}
		if c.exhausted(entry) {
			c.logger.Error().
				Str("message_id", entry.ID).
				Int64("deliveries", entry.RetryCount).
				Msg("task gave up after repeated failures")
			c.ack(ctx, entry.ID)
			continue
		}
		msgs, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  c.claimInterval,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil {
			c.logger.Error().Err(err).Msg("claim error")
			continue
		}
		for _, msg := range msgs {
			c.process(ctx, msg)
		}
	}
	return nil
}

// exhausted reports whether a pending entry has used up its deliveries.
func (c *Consumer) exhausted(entry redis.XPendingExt) bool {
	return c.maxAttempts > 0 && entry.RetryCount >= int64(c.maxAttempts)
}
