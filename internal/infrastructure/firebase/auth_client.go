package firebase

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/errors"
)

// DevTokenPrefix marks bearer tokens of the form "dev:<uid>", accepted only
// when dev tokens are enabled.
const DevTokenPrefix = "dev:"

type FirebaseAuthClient struct {
	client         *auth.Client
	allowDevTokens bool
}

// NewFirebaseAuthClient wraps a Firebase auth client. client may be nil when
// running against the in-memory backend; then only dev tokens verify.
func NewFirebaseAuthClient(client *auth.Client, allowDevTokens bool) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:         client,
		allowDevTokens: allowDevTokens,
	}
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	if f.allowDevTokens && strings.HasPrefix(token, DevTokenPrefix) {
		uid := strings.TrimPrefix(token, DevTokenPrefix)
		if uid == "" || strings.ContainsAny(uid, "/.$#[]") {
			return "", errors.Unauthorized("Invalid dev token", nil)
		}
		return uid, nil
	}

	if f.client == nil {
		return "", errors.Unauthorized("Token verification is not configured", nil)
	}

	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}
	return result.UID, nil
}

// LookupUser loads the identity record used to seed a new user's profile.
func (f *FirebaseAuthClient) LookupUser(ctx context.Context, uid string) (*entity.Identity, error) {
	if f.client == nil {
		return &entity.Identity{UID: uid, DisplayName: uid}, nil
	}

	user, err := f.client.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, errors.NotFound("Auth user", err)
		}
		return nil, errors.Unavailable("Failed to load auth user", err)
	}

	return &entity.Identity{
		UID:         user.UID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}, nil
}
