package websocket

import (
	"encoding/json"
)

const (
	actionCommand = "command"
	actionJoin    = "chat:join"
	actionReply   = "reply"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload carries a chat command in and a rendered reply out.
type Payload struct {
	Sender  string `json:"sender,omitempty"`
	Chat    string `json:"chat,omitempty"`
	Text    string `json:"text,omitempty"`
	ReplyTo int64  `json:"reply_to,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newMessage(action string, payload Payload) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: action, Payload: raw}, nil
}
