package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/usecase"
)

const retryDelay = time.Second

type updateSource interface {
	Fetch(ctx context.Context) ([]Update, error)
}

type replySink interface {
	Send(ctx context.Context, reply Outgoing) error
}

type commandHandler interface {
	Handle(ctx context.Context, req usecase.Request) usecase.Reply
}

// Poller drains batches of updates and handles them one at a time, so no two
// commands ever run concurrently.
type Poller struct {
	logger  *slog.Logger
	source  updateSource
	sink    replySink
	handler commandHandler

	lastUpdateID int64
}

func NewPoller(logger *slog.Logger, source updateSource, sink replySink, handler commandHandler) *Poller {
	return &Poller{
		logger:  logger.With("component", "poller"),
		source:  source,
		sink:    sink,
		handler: handler,
	}
}

// Run polls until ctx is canceled. Fetch failures are retried after a short delay.
func (that *Poller) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	for {
		if ctx.Err() != nil {
			return nil
		}

		log.Debug("getting updates", "offset", that.lastUpdateID+1)

		updates, err := that.source.Fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			log.Error("failed to fetch updates", "error", err)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}

			continue
		}

		for _, update := range updates {
			that.ProcessUpdate(ctx, update)
		}
	}
}

// ProcessUpdate handles a single update. A failure, panics included, is logged and
// never stops the poller.
func (that *Poller) ProcessUpdate(ctx context.Context, update Update) {
	log := that.logger.With("method", "ProcessUpdate", "updateID", update.ID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("recovered from panic while processing update", "panic", fmt.Sprint(rec))
		}
	}()

	if update.ID != 0 {
		if update.ID <= that.lastUpdateID {
			log.Warn("skipping already processed update")
			return
		}
		that.lastUpdateID = update.ID
	}

	if update.Text == "" {
		return
	}

	log.Debug("processing message", "sender", update.Sender)

	reply := that.handler.Handle(ctx, usecase.Request{
		UpdateID: update.ID,
		Sender:   update.Sender,
		Chat:     update.Chat,
		Text:     update.Text,
	})

	if reply.Text == "" {
		return
	}

	outgoing := Outgoing{
		Chat:    reply.Chat,
		Text:    reply.Text,
		ReplyTo: reply.ReplyTo,
	}

	if err := that.sink.Send(ctx, outgoing); err != nil {
		log.Error("failed to send reply", "chat", reply.Chat, "error", err)
		return
	}

	log.Debug("message processed")
}
