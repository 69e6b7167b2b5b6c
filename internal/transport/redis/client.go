package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/transport/chat"
)

type Options struct {
	InboxKey     string
	OutboxPrefix string
	PollTimeout  time.Duration
	BatchSize    int
}

// Client is a chat transport on top of redis lists: updates are popped from the
// inbox list, replies are pushed to a per-chat outbox list and published on a
// channel of the same name.
type Client struct {
	logger *slog.Logger
	client *redis.Client
	opts   Options
}

func New(logger *slog.Logger, client *redis.Client, opts Options) *Client {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}

	return &Client{
		logger: logger.With("component", "redis-chat"),
		client: client,
		opts:   opts,
	}
}

// Fetch blocks for up to PollTimeout waiting for the first update, then takes
// whatever else is queued up to BatchSize. An empty batch means the poll timed out.
func (that *Client) Fetch(ctx context.Context) ([]chat.Update, error) {
	first, err := that.client.BLPop(ctx, that.opts.PollTimeout, that.opts.InboxKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pop update: %w", err)
	}

	// BLPOP replies with the key name followed by the value
	raw := []string{first[1]}

	if that.opts.BatchSize > 1 {
		rest, err := that.client.LPopCount(ctx, that.opts.InboxKey, that.opts.BatchSize-1).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			that.logger.Error("failed to pop update batch", "error", err)
		}
		raw = append(raw, rest...)
	}

	updates := make([]chat.Update, 0, len(raw))
	for _, value := range raw {
		var update chat.Update
		if err = json.Unmarshal([]byte(value), &update); err != nil {
			that.logger.Warn("dropping malformed update", "error", err)
			continue
		}
		updates = append(updates, update)
	}

	return updates, nil
}

// Send appends the reply to the chat outbox and notifies subscribers.
func (that *Client) Send(ctx context.Context, reply chat.Outgoing) error {
	replyJSON, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	key := that.OutboxKey(reply.Chat)

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, replyJSON)
		pipe.Publish(ctx, key, replyJSON)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}

	return nil
}

// Push enqueues an update, the way a chat gateway feeds the bot.
func (that *Client) Push(ctx context.Context, update chat.Update) error {
	updateJSON, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	if err = that.client.RPush(ctx, that.opts.InboxKey, updateJSON).Err(); err != nil {
		return fmt.Errorf("failed to push update: %w", err)
	}

	return nil
}

func (that *Client) OutboxKey(chatID string) string {
	return that.opts.OutboxPrefix + chatID
}
