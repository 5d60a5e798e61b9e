package entity

type ChatStatus string

const (
	ChatStatusPending  ChatStatus = "pending"
	ChatStatusApproved ChatStatus = "approved"
	ChatStatusDenied   ChatStatus = "denied"
)

// Chat is one owner's projection of a two-party conversation,
// stored at chats/{ownerId}/{chatId}. Recipient* fields describe the other party.
type Chat struct {
	ID                 string        `json:"-"`
	RecipientID        string        `json:"recipientId"`
	RecipientName      string        `json:"recipientName"`
	RecipientUserPhoto *string       `json:"recipientUserPhoto"`
	Status             ChatStatus    `json:"status"`
	LastMsgID          string        `json:"lastMsgId"`
	LastMsgTs          float64       `json:"lastMsgTs"`
	LastMsgText        string        `json:"lastMsgText"`
	LastMsgSenderID    string        `json:"lastMsgSenderId"`
	LastMsgStatus      MessageStatus `json:"lastMsgStatus"`
	LastMsgType        MessageType   `json:"lastMsgType"`
}

// Chat projection field names, as addressed by multi-path updates.
const (
	ChatFieldRecipientName      = "recipientName"
	ChatFieldRecipientUserPhoto = "recipientUserPhoto"
	ChatFieldStatus             = "status"
	ChatFieldLastMsgID          = "lastMsgId"
	ChatFieldLastMsgTs          = "lastMsgTs"
	ChatFieldLastMsgText        = "lastMsgText"
	ChatFieldLastMsgSenderID    = "lastMsgSenderId"
	ChatFieldLastMsgStatus      = "lastMsgStatus"
	ChatFieldLastMsgType        = "lastMsgType"
)

// Participant is the denormalized identity one projection keeps about the other party.
type Participant struct {
	ID    string
	Name  string
	Photo *string
}

// NewChat builds the projection seen by the owner whose partner is `partner`.
func NewChat(chatID string, partner Participant, msg *Message) *Chat {
	chat := &Chat{
		ID:                 chatID,
		RecipientID:        partner.ID,
		RecipientName:      partner.Name,
		RecipientUserPhoto: partner.Photo,
		Status:             ChatStatusPending,
	}
	chat.applySummary(msg)
	return chat
}

func (c *Chat) applySummary(msg *Message) {
	c.LastMsgID = msg.ID
	c.LastMsgTs = msg.Ts
	c.LastMsgText = msg.Text
	c.LastMsgSenderID = msg.SenderID
	c.LastMsgStatus = MessageStatusDelivered
	c.LastMsgType = msg.Type
}

// SummaryFields are the lastMsg* values a delivered message puts on both projections.
func SummaryFields(msg *Message) map[string]interface{} {
	return map[string]interface{}{
		ChatFieldLastMsgID:       msg.ID,
		ChatFieldLastMsgTs:       msg.Ts,
		ChatFieldLastMsgText:     msg.Text,
		ChatFieldLastMsgSenderID: msg.SenderID,
		ChatFieldLastMsgStatus:   MessageStatusDelivered,
		ChatFieldLastMsgType:     msg.Type,
	}
}
