// Package usermeta persists optional per-user key/value attributes.
package usermeta

import (
	"context"
	"errors"
)

const (
	// KeyAvatarAttachmentID holds a media library attachment id.
	KeyAvatarAttachmentID = "avatar_attachment_id"
	// KeyAvatarURL holds a pre-resolved absolute image URL.
	KeyAvatarURL = "avatar_url"
)

// ErrInvalidKey is returned for an empty key or a non-positive user id.
var ErrInvalidKey = errors.New("invalid user meta key")

// Store is the per-user attribute store. Get reports ok=false when the key is
// absent; an empty stored value is reported as present.
type Store interface {
	Get(ctx context.Context, userID int64, key string) (value string, ok bool, err error)
	Set(ctx context.Context, userID int64, key, value string) error
	Delete(ctx context.Context, userID int64, key string) error
}

func validate(userID int64, key string) error {
	if userID <= 0 || key == "" {
		return ErrInvalidKey
	}
	return nil
}
