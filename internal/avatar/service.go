package avatar

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/memohai/avatar/internal/accounts"
	"github.com/memohai/avatar/internal/config"
	"github.com/memohai/avatar/internal/media"
	"github.com/memohai/avatar/internal/usermeta"
)

var (
	// ErrPermissionDenied indicates the actor may not change the target user.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidAttachment indicates a non-positive attachment id.
	ErrInvalidAttachment = errors.New("invalid attachment id")
	// ErrAttachmentUnresolvable indicates the attachment has no displayable URL.
	ErrAttachmentUnresolvable = errors.New("could not get attachment URL")
)

// Directory is the slice of the account directory the avatar service needs.
type Directory interface {
	GetByID(ctx context.Context, id int64) (accounts.Account, error)
	GetByEmail(ctx context.Context, email string) (accounts.Account, error)
	CanEdit(ctx context.Context, actorID, targetID int64) (bool, error)
	CanUpload(ctx context.Context, actorID int64) (bool, error)
}

// Observer receives resolution outcomes, one per Resolve/Embed call.
type Observer interface {
	ObserveResolution(outcome string)
}

const (
	OutcomeCustom          = "custom"
	OutcomeUnknownIdentity = "unknown_identity"
	OutcomeNoReference     = "no_reference"
	OutcomeUnresolvable    = "unresolvable"
	OutcomeError           = "error"
)

// Settings are the rendering defaults.
type Settings struct {
	DefaultSize int
	EmbedSize   int
	EmbedAlt    string
	// DefaultURL is the generic avatar image shown in the profile preview
	// when no custom avatar is set and the caller supplies none.
	DefaultURL string
}

// SettingsFromConfig fills zero values with the package defaults.
func SettingsFromConfig(cfg config.AvatarConfig) Settings {
	s := Settings{
		DefaultSize: cfg.DefaultSize,
		EmbedSize:   cfg.EmbedSize,
		EmbedAlt:    cfg.EmbedAlt,
		DefaultURL:  strings.TrimSpace(cfg.DefaultURL),
	}
	if s.DefaultSize <= 0 {
		s.DefaultSize = config.DefaultAvatarSize
	}
	if s.EmbedSize <= 0 {
		s.EmbedSize = config.DefaultEmbedSize
	}
	if s.EmbedAlt == "" {
		s.EmbedAlt = config.DefaultEmbedAlt
	}
	return s
}

// Service substitutes custom avatars during rendering and manages the stored
// reference for each user.
type Service struct {
	meta     usermeta.Store
	dir      Directory
	strategy RefStrategy
	resolver media.Resolver
	settings Settings
	observer Observer
	logger   *slog.Logger
}

func NewService(log *slog.Logger, settings Settings, meta usermeta.Store, dir Directory, strategy RefStrategy, resolver media.Resolver) *Service {
	if log == nil {
		log = slog.Default()
	}
	if settings.DefaultSize <= 0 {
		settings.DefaultSize = config.DefaultAvatarSize
	}
	if settings.EmbedSize <= 0 {
		settings.EmbedSize = config.DefaultEmbedSize
	}
	if settings.EmbedAlt == "" {
		settings.EmbedAlt = config.DefaultEmbedAlt
	}
	return &Service{
		meta:     meta,
		dir:      dir,
		strategy: strategy,
		resolver: resolver,
		settings: settings,
		logger:   log.With(slog.String("service", "avatar")),
	}
}

// SetObserver attaches a resolution outcome sink.
func (s *Service) SetObserver(o Observer) {
	s.observer = o
}

// Strategy reports the active reference strategy.
func (s *Service) Strategy() RefStrategy {
	return s.strategy
}

func (s *Service) observe(outcome string) {
	if s.observer != nil {
		s.observer.ObserveResolution(outcome)
	}
}
