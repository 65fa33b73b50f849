package transport

import (
	"time"
)

// Frame types the server understands. Unknown values are ignored on
// receive.
const (
	FrameID      = "IdMessage"
	FrameChat    = "ChatMessage"
	FrameHistory = "history"
)

// Payload carries a chat message's user-visible content.
type Payload struct {
	Content     string `json:"content"`
	DisplayName string `json:"displayName"`
}

// Meta carries a chat message's routing and identity fields.
type Meta struct {
	MessageID      string `json:"messageId,omitempty"`
	SenderID       string `json:"senderId"`
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestamp"`
}

// Frame is one JSON text frame on the socket. IdMessage frames carry
// their fields flat on the envelope; chat and history frames nest them
// under payload/meta.
type Frame struct {
	MessageType string   `json:"messageType"`
	Payload     *Payload `json:"payload,omitempty"`
	Meta        *Meta    `json:"meta,omitempty"`

	// IdMessage fields
	SenderID  string `json:"senderId,omitempty"`
	ConvID    string `json:"convId,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// NewIDFrame builds the session init frame sent once per connection.
func NewIDFrame(userID, conversationID string) Frame {
	return Frame{
		MessageType: FrameID,
		SenderID:    userID,
		ConvID:      conversationID,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// NewChatFrame builds an outbound chat message frame.
func NewChatFrame(messageID, senderID, conversationID, content, displayName string, at time.Time) Frame {
	return Frame{
		MessageType: FrameChat,
		Payload: &Payload{
			Content:     content,
			DisplayName: displayName,
		},
		Meta: &Meta{
			MessageID:      messageID,
			SenderID:       senderID,
			ConversationID: conversationID,
			Timestamp:      at.UTC().Format(time.RFC3339),
		},
	}
}
