package chat

// Update is one inbound chat message as delivered by the transport.
type Update struct {
	ID     int64  `json:"update_id"`
	Sender string `json:"sender"`
	Chat   string `json:"chat"`
	Text   string `json:"text"`
}

// Outgoing is a rendered reply addressed to a chat.
type Outgoing struct {
	Chat    string `json:"chat"`
	Text    string `json:"text"`
	ReplyTo int64  `json:"reply_to,omitempty"`
}
