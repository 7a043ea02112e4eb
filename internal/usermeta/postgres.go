package usermeta

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/memohai/avatar/internal/db"
)

// PGStore keeps attributes in the user_meta table.
type PGStore struct {
	conn   db.DBTX
	logger *slog.Logger
}

func NewPGStore(log *slog.Logger, conn db.DBTX) *PGStore {
	if log == nil {
		log = slog.Default()
	}
	return &PGStore{
		conn:   conn,
		logger: log.With(slog.String("service", "usermeta")),
	}
}

func (s *PGStore) Get(ctx context.Context, userID int64, key string) (string, bool, error) {
	if err := validate(userID, key); err != nil {
		return "", false, err
	}
	var value string
	err := s.conn.QueryRow(ctx,
		`SELECT meta_value FROM user_meta WHERE user_id = $1 AND meta_key = $2`,
		userID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get user meta: %w", err)
	}
	return value, true, nil
}

func (s *PGStore) Set(ctx context.Context, userID int64, key, value string) error {
	if err := validate(userID, key); err != nil {
		return err
	}
	_, err := s.conn.Exec(ctx,
		`INSERT INTO user_meta (user_id, meta_key, meta_value, updated_at)
		 VALUES ($1, $2, $3, now())
		 ON CONFLICT (user_id, meta_key)
		 DO UPDATE SET meta_value = EXCLUDED.meta_value, updated_at = now()`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("set user meta: %w", err)
	}
	s.logger.Debug("user meta set", slog.Int64("user_id", userID), slog.String("key", key))
	return nil
}

func (s *PGStore) Delete(ctx context.Context, userID int64, key string) error {
	if err := validate(userID, key); err != nil {
		return err
	}
	if _, err := s.conn.Exec(ctx,
		`DELETE FROM user_meta WHERE user_id = $1 AND meta_key = $2`,
		userID, key,
	); err != nil {
		return fmt.Errorf("delete user meta: %w", err)
	}
	s.logger.Debug("user meta deleted", slog.Int64("user_id", userID), slog.String("key", key))
	return nil
}
