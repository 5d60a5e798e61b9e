package realtimedb

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/db"

	"pairchat/pkg/errors"
	"pairchat/pkg/utils"
)

// FirebaseStore is the Datastore backed by the Firebase Realtime Database.
type FirebaseStore struct {
	client *db.Client
}

func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) ref(path string) *db.Ref {
	return s.client.NewRef("/" + utils.NormalizePath(path))
}

func (s *FirebaseStore) Get(ctx context.Context, path string) (interface{}, error) {
	var value interface{}
	if err := s.ref(path).Get(ctx, &value); err != nil {
		return nil, errors.Unavailable(fmt.Sprintf("failed to read %q", path), err)
	}
	return value, nil
}

func (s *FirebaseStore) Set(ctx context.Context, path string, value interface{}) error {
	plain, err := utils.Plain(value)
	if err != nil {
		return errors.Validation(fmt.Sprintf("invalid value at %q", path), err)
	}

	if plain == nil {
		err = s.ref(path).Delete(ctx)
	} else {
		err = s.ref(path).Set(ctx, plain)
	}
	if err != nil {
		return errors.Unavailable(fmt.Sprintf("failed to write %q", path), err)
	}
	return nil
}

// Update issues one multi-path update against the database root.
func (s *FirebaseStore) Update(ctx context.Context, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	payload := make(map[string]interface{}, len(updates))
	for path, value := range updates {
		plain, err := utils.Plain(value)
		if err != nil {
			return errors.Validation(fmt.Sprintf("invalid value at %q", path), err)
		}
		payload[utils.NormalizePath(path)] = plain
	}

	if err := s.client.NewRef("/").Update(ctx, payload); err != nil {
		return errors.Unavailable("multi-path update failed", err)
	}
	return nil
}
