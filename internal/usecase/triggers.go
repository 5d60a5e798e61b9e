package usecase

import (
	"context"

	"pairchat/internal/infrastructure/trigger"
)

const (
	MessageTemplate = "messages/{chatId}/{messageId}"
	ProfileTemplate = "users/{userId}/profile"
	PhotosTemplate  = "users/{userId}/photos"
	ChatTemplate    = "chats/{userId}/{chatId}"
)

// RegisterTriggers wires the reactive handlers. notifier may be nil.
func RegisterTriggers(d *trigger.Dispatcher, messages *MessageUseCase, chatSync *ChatSyncUseCase, notifier ChatNotifier) {
	d.OnCreate(MessageTemplate, "messagesOnCreate", func(ctx context.Context, change trigger.Change, event trigger.EventContext) error {
		return messages.HandleCreated(ctx, event.Params["chatId"], event.Params["messageId"])
	})

	d.OnUpdate(MessageTemplate, "messagesOnUpdate", func(ctx context.Context, change trigger.Change, event trigger.EventContext) error {
		return messages.HandleUpdated(ctx, event.Params["chatId"], event.Params["messageId"], change.Before, change.After)
	})

	d.OnUpdate(ProfileTemplate, "usersProfileOnUpdate", func(ctx context.Context, change trigger.Change, event trigger.EventContext) error {
		return chatSync.HandleProfileUpdated(ctx, event.Params["userId"], change.Before, change.After)
	})

	d.OnWrite(PhotosTemplate, "usersPhotosOnWrite", func(ctx context.Context, change trigger.Change, event trigger.EventContext) error {
		return chatSync.HandlePhotosWritten(ctx, event.Params["userId"], change.Before, change.After)
	})

	if notifier != nil {
		d.OnWrite(ChatTemplate, "chatsOnWrite", func(ctx context.Context, change trigger.Change, event trigger.EventContext) error {
			return notifier.NotifyChat(event.Params["userId"], event.Params["chatId"], change.After)
		})
	}
}
