package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-chatbot/internal/usecase"
)

var errMissingSender = errors.New("sender is required")

// handleJoin subscribes the connection to a chat without sending a command.
func (that *Server) handleJoin(_ context.Context, c *client, msg *Message) error {
	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Chat == "" {
		if payload.Sender == "" {
			return errMissingSender
		}
		payload.Chat = directChat(payload.Sender)
	}

	that.join(c, payload.Chat)

	return nil
}

// handleCommand runs the command text and broadcasts the reply to its chat.
// A connection that sends a command joins that chat.
func (that *Server) handleCommand(ctx context.Context, c *client, msg *Message) error {
	log := that.logger.With("method", "handleCommand")

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Sender == "" {
		return errMissingSender
	}

	if payload.Chat == "" {
		payload.Chat = directChat(payload.Sender)
	}

	that.join(c, payload.Chat)

	reply := that.handler.Handle(ctx, usecase.Request{
		Sender: payload.Sender,
		Chat:   payload.Chat,
		Text:   payload.Text,
	})

	response, err := newMessage(actionReply, Payload{
		Chat:    reply.Chat,
		Text:    reply.Text,
		ReplyTo: reply.ReplyTo,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	that.broadcast(reply.Chat, response)

	log.Debug("command handled", "sender", payload.Sender, "chat", reply.Chat)

	return nil
}

func directChat(sender string) string {
	return "direct:" + sender
}
