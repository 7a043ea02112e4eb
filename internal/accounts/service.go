package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/memohai/avatar/internal/config"
)

const defaultAdminPassword = "change-your-password-here"

// Service is the account directory used for identity lookup and permission
// checks.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(log *slog.Logger, repo Repository) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: log.With(slog.String("service", "accounts")),
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (Account, error) {
	if id <= 0 {
		return Account{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Account{}, ErrNotFound
	}
	return s.repo.GetByEmail(ctx, email)
}

// Create hashes the password and stores a new account.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return Account{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	role := in.Role
	if role == "" {
		role = RoleSubscriber
	}
	var hash string
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return Account{}, fmt.Errorf("hash password: %w", err)
		}
		hash = string(hashed)
	}
	displayName := strings.TrimSpace(in.DisplayName)
	if displayName == "" {
		displayName = email[:strings.Index(email, "@")]
	}
	return s.repo.Create(ctx, Account{
		Email:        email,
		DisplayName:  displayName,
		Role:         role,
		PasswordHash: hash,
	})
}

// Authenticate returns the account whose email and password match.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if account.PasswordHash == "" {
		return Account{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// CanEdit reports whether actor may edit target's profile: themself, or an
// administrator.
func (s *Service) CanEdit(ctx context.Context, actorID, targetID int64) (bool, error) {
	if actorID <= 0 || targetID <= 0 {
		return false, nil
	}
	if actorID == targetID {
		return true, nil
	}
	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return actor.Role == RoleAdmin, nil
}

// CanUpload reports whether actor may add files to the media library.
func (s *Service) CanUpload(ctx context.Context, actorID int64) (bool, error) {
	if actorID <= 0 {
		return false, nil
	}
	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	switch actor.Role {
	case RoleAdmin, RoleEditor, RoleAuthor:
		return true, nil
	default:
		return false, nil
	}
}

// EnsureAdmin creates the configured administrator when the directory is empty.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}
	password := strings.TrimSpace(cfg.Password)
	if strings.TrimSpace(cfg.Email) == "" || password == "" {
		return fmt.Errorf("admin email/password required in config.toml")
	}
	if password == defaultAdminPassword {
		s.logger.Warn("admin password uses default placeholder; please update config.toml")
	}
	account, err := s.Create(ctx, CreateInput{
		Email:       cfg.Email,
		DisplayName: cfg.DisplayName,
		Role:        RoleAdmin,
		Password:    password,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	s.logger.Info("Admin user created", slog.Int64("id", account.ID), slog.String("email", account.Email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
