package entity

import "pairchat/pkg/utils"

// Updates is a multi-path update keyed by absolute datastore path.
// A nil value deletes the key.
type Updates map[string]interface{}

func (u Updates) SetChat(ownerID string, chat *Chat) {
	u[ChatPath(ownerID, chat.ID)] = chat
}

func (u Updates) SetChatField(ownerID, chatID, field string, value interface{}) {
	u[utils.JoinPath(ChatPath(ownerID, chatID), field)] = value
}

// SetPairFields writes the same fields into both mirrored projections.
func (u Updates) SetPairFields(ownerA, ownerB, chatID string, fields map[string]interface{}) {
	for field, value := range fields {
		u.SetChatField(ownerA, chatID, field, value)
		u.SetChatField(ownerB, chatID, field, value)
	}
}

func (u Updates) SetMessageStatus(chatID, messageID string, status MessageStatus) {
	u[utils.JoinPath(MessagePath(chatID, messageID), "status")] = status
}
