package avatar

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/memohai/avatar/internal/media"
)

// AttachmentSelection is returned to the upload widget after a pick.
type AttachmentSelection struct {
	AttachmentID int64  `json:"attachment_id"`
	URL          string `json:"url"`
}

// SelectAttachment confirms a media library pick and returns its thumbnail
// URL for the preview.
func (s *Service) SelectAttachment(ctx context.Context, actorID, attachmentID int64) (AttachmentSelection, error) {
	ok, err := s.dir.CanUpload(ctx, actorID)
	if err != nil {
		return AttachmentSelection{}, fmt.Errorf("check permission: %w", err)
	}
	if !ok {
		return AttachmentSelection{}, ErrPermissionDenied
	}
	if attachmentID <= 0 {
		return AttachmentSelection{}, ErrInvalidAttachment
	}
	if s.resolver == nil {
		return AttachmentSelection{}, ErrAttachmentUnresolvable
	}
	u, err := s.resolver.ResolveURL(ctx, attachmentID, media.ThumbnailSize, media.ThumbnailSize)
	if err != nil || u == "" {
		s.logger.Debug("attachment unresolvable", slog.Int64("attachment_id", attachmentID), slog.Any("error", err))
		return AttachmentSelection{}, ErrAttachmentUnresolvable
	}
	return AttachmentSelection{AttachmentID: attachmentID, URL: u}, nil
}
