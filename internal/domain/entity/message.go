package entity

type MessageType string

const (
	MessageTypeRequest  MessageType = "request"
	MessageTypeApproved MessageType = "approved"
	MessageTypeDenied   MessageType = "denied"
	MessageTypeMessage  MessageType = "message"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeRequest, MessageTypeApproved, MessageTypeDenied, MessageTypeMessage:
		return true
	}
	return false
}

// MessageStatus only moves forward: sent -> delivered -> read.
type MessageStatus string

const (
	MessageStatusSent      MessageStatus = "sent"
	MessageStatusDelivered MessageStatus = "delivered"
	MessageStatusRead      MessageStatus = "read"
)

// Message is the authoritative record stored at messages/{chatId}/{messageId}.
type Message struct {
	ID          string        `json:"-"`
	ChatID      string        `json:"-"`
	SenderID    string        `json:"senderId"`
	RecipientID string        `json:"recipientId"`
	Text        string        `json:"text"`
	Ts          float64       `json:"ts"`
	Type        MessageType   `json:"type"`
	Status      MessageStatus `json:"status"`
}

// ChatStatus returns the relationship status a message of this type settles the chat into.
func (t MessageType) ChatStatus() (ChatStatus, bool) {
	switch t {
	case MessageTypeRequest:
		return ChatStatusPending, true
	case MessageTypeApproved:
		return ChatStatusApproved, true
	case MessageTypeDenied:
		return ChatStatusDenied, true
	}
	return "", false
}
