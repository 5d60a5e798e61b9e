package policy

import (
	"pairchat/internal/domain/entity"
)

type rule struct {
	shape string
	op    Operation
	allow Predicate
}

// defaultRules is the complete rule table. Shapes and operations missing
// from it are denied.
var defaultRules = []rule{
	{"users/$uid/profile", OpRead, authenticated},
	{"users/$uid/profile", OpCreate, all(owner, validProfile)},
	{"users/$uid/profile", OpUpdate, all(owner, validProfile)},

	// meta is written by the system only and never exposed.
	{"users/$uid/meta", OpRead, never},

	// TODO: tighten location writes once the location payload format is settled.
	{"users/$uid/location", OpRead, owner},
	{"users/$uid/location", OpCreate, owner},
	{"users/$uid/location", OpUpdate, owner},
	{"users/$uid/location", OpDelete, owner},

	// The photo list is maintained by the photo subsystem.
	{"users/$uid/photos", OpRead, authenticated},

	// Projections are written only by the synchronizer with system privilege.
	{"chats/$uid", OpRead, owner},
	{"chats/$uid/$chatId", OpRead, owner},

	{"messages/$chatId", OpRead, participant},
	{"messages/$chatId/$messageId", OpRead, participant},
	{"messages/$chatId/$messageId", OpCreate, validNewMessage},
	{"messages/$chatId/$messageId", OpUpdate, validReadReceipt},
}

var (
	profileKeys = []string{"uid", "firstName", "lastName", "gender", "about", "interests", "photos"}
	messageKeys = []string{"senderId", "recipientId", "text", "ts", "type", "status"}
)

func all(preds ...Predicate) Predicate {
	return func(ev *Evaluation) bool {
		for _, pred := range preds {
			if !pred(ev) {
				return false
			}
		}
		return true
	}
}

func never(*Evaluation) bool {
	return false
}

func authenticated(ev *Evaluation) bool {
	return ev.Authenticated()
}

func owner(ev *Evaluation) bool {
	return ev.Authenticated() && ev.Actor.ID == ev.Vars["uid"]
}

// participant resolves membership through the actor's own projection.
func participant(ev *Evaluation) bool {
	return ev.Authenticated() && ev.Exists(entity.ChatPath(ev.Actor.ID, ev.Vars["chatId"]))
}

func validProfile(ev *Evaluation) bool {
	profile, ok := asObject(ev.NewData)
	if !ok || !onlyKeys(profile, profileKeys...) {
		return false
	}

	if uid, ok := asString(profile["uid"]); !ok || uid != ev.Actor.ID {
		return false
	}

	for _, key := range []string{"firstName", "lastName", "interests", "about"} {
		if _, ok := asString(profile[key]); !ok {
			return false
		}
	}

	gender, _ := asString(profile["gender"])
	if gender != string(entity.GenderMale) && gender != string(entity.GenderFemale) {
		return false
	}

	return validPhotos(profile["photos"])
}

func validPhotos(v interface{}) bool {
	switch photos := v.(type) {
	case nil:
		return true
	case []interface{}:
		if len(photos) > entity.MaxUserPhotos {
			return false
		}
		for _, photo := range photos {
			if _, ok := asString(photo); !ok {
				return false
			}
		}
		return true
	}
	return false
}

func validNewMessage(ev *Evaluation) bool {
	if !ev.Authenticated() || ev.Data != nil {
		return false
	}

	msg, ok := asObject(ev.NewData)
	if !ok || !onlyKeys(msg, messageKeys...) {
		return false
	}

	senderID, _ := asString(msg["senderId"])
	recipientID, _ := asString(msg["recipientId"])
	if senderID == "" || senderID != ev.Actor.ID || recipientID == "" || recipientID == senderID {
		return false
	}

	if _, ok := asString(msg["text"]); !ok {
		return false
	}

	ts, ok := asNumber(msg["ts"])
	if !ok || ts < 0 || ts > float64(ev.Now.UnixMilli()) {
		return false
	}

	if status, _ := asString(msg["status"]); status != string(entity.MessageStatusSent) {
		return false
	}

	if !ev.Exists(entity.UserPath(senderID)) || !ev.Exists(entity.UserPath(recipientID)) {
		return false
	}

	chatID := ev.Vars["chatId"]
	msgType, _ := asString(msg["type"])

	switch entity.MessageType(msgType) {
	case entity.MessageTypeRequest:
		return !ev.Exists(entity.ChatPath(senderID, chatID)) && !ev.Exists(entity.ChatPath(recipientID, chatID))

	case entity.MessageTypeApproved, entity.MessageTypeDenied:
		chat, ok := asObject(ev.Lookup(entity.ChatPath(senderID, chatID)))
		return ok &&
			chat["status"] == string(entity.ChatStatusPending) &&
			chat["lastMsgSenderId"] != senderID &&
			chat["recipientId"] == recipientID

	case entity.MessageTypeMessage:
		chat, ok := asObject(ev.Lookup(entity.ChatPath(senderID, chatID)))
		return ok &&
			chat["status"] == string(entity.ChatStatusApproved) &&
			chat["recipientId"] == recipientID
	}

	return false
}

// validReadReceipt admits exactly one transition: delivered -> read, by the recipient.
func validReadReceipt(ev *Evaluation) bool {
	if !ev.Authenticated() {
		return false
	}

	before, ok := asObject(ev.Data)
	if !ok {
		return false
	}
	after, ok := asObject(ev.NewData)
	if !ok {
		return false
	}

	if recipientID, _ := asString(before["recipientId"]); recipientID != ev.Actor.ID {
		return false
	}

	return onlyChanged(before, after, "status") &&
		before["status"] == string(entity.MessageStatusDelivered) &&
		after["status"] == string(entity.MessageStatusRead)
}
