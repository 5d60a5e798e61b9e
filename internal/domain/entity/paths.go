package entity

import "pairchat/pkg/utils"

const (
	RootUsers    = "users"
	RootChats    = "chats"
	RootMessages = "messages"
)

func UserPath(userID string) string {
	return utils.JoinPath(RootUsers, userID)
}

func ProfilePath(userID string) string {
	return utils.JoinPath(RootUsers, userID, "profile")
}

func MetaPath(userID string) string {
	return utils.JoinPath(RootUsers, userID, "meta")
}

func PhotosPath(userID string) string {
	return utils.JoinPath(RootUsers, userID, "photos")
}

func ChatsPath(ownerID string) string {
	return utils.JoinPath(RootChats, ownerID)
}

func ChatPath(ownerID, chatID string) string {
	return utils.JoinPath(RootChats, ownerID, chatID)
}

func MessagePath(chatID, messageID string) string {
	return utils.JoinPath(RootMessages, chatID, messageID)
}
