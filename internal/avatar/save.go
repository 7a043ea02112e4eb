package avatar

import (
	"context"
	"fmt"
	"log/slog"
)

// Save stores the submitted reference for userID, or removes it when the
// submitted value is empty or not a usable reference.
func (s *Service) Save(ctx context.Context, actorID, userID int64, submitted string) error {
	if err := s.authorizeEdit(ctx, actorID, userID); err != nil {
		return err
	}
	value, ok := s.strategy.Normalize(submitted)
	if !ok {
		return s.clear(ctx, actorID, userID)
	}
	if err := s.meta.Set(ctx, userID, s.strategy.MetaKey(), value); err != nil {
		return fmt.Errorf("store avatar reference: %w", err)
	}
	s.logger.Info("avatar saved",
		slog.Int64("actor_id", actorID),
		slog.Int64("user_id", userID),
		slog.String("strategy", s.strategy.Name()),
	)
	return nil
}

// Clear removes the stored reference for userID.
func (s *Service) Clear(ctx context.Context, actorID, userID int64) error {
	if err := s.authorizeEdit(ctx, actorID, userID); err != nil {
		return err
	}
	return s.clear(ctx, actorID, userID)
}

// Current returns the stored reference for userID.
func (s *Service) Current(ctx context.Context, userID int64) (string, bool, error) {
	return s.meta.Get(ctx, userID, s.strategy.MetaKey())
}

func (s *Service) clear(ctx context.Context, actorID, userID int64) error {
	if err := s.meta.Delete(ctx, userID, s.strategy.MetaKey()); err != nil {
		return fmt.Errorf("delete avatar reference: %w", err)
	}
	s.logger.Info("avatar cleared", slog.Int64("actor_id", actorID), slog.Int64("user_id", userID))
	return nil
}

func (s *Service) authorizeEdit(ctx context.Context, actorID, userID int64) error {
	ok, err := s.dir.CanEdit(ctx, actorID, userID)
	if err != nil {
		return fmt.Errorf("check permission: %w", err)
	}
	if !ok {
		return ErrPermissionDenied
	}
	return nil
}
