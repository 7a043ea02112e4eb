package avatar

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strconv"
	"strings"

	"github.com/memohai/avatar/internal/accounts"
)

// Options tweak the rendered tag.
type Options struct {
	// Class replaces the default "avatar avatar-N photo".
	Class string
	// ExtraAttr is appended to the tag verbatim.
	ExtraAttr string
	// Preview omits width and height so the image can be sized by CSS.
	Preview bool
}

// Resolve returns an <img> tag for the identity's custom avatar, or
// fallbackHTML unchanged when there is none. Failures of the collaborators are
// logged and degrade to the fallback.
func (s *Service) Resolve(ctx context.Context, id Identity, size Size, fallbackHTML, alt string, opts Options) string {
	account, ok := s.lookupAccount(ctx, id)
	if !ok {
		s.observe(OutcomeUnknownIdentity)
		return fallbackHTML
	}
	size = size.orDefault(s.settings.DefaultSize)
	src, outcome := s.customURL(ctx, account.ID, size)
	s.observe(outcome)
	if outcome != OutcomeCustom {
		return fallbackHTML
	}
	if alt == "" {
		alt = account.DisplayName
	}
	return renderTag(src, alt, size, opts)
}

// UserID maps an identity onto a known user id.
func (s *Service) UserID(ctx context.Context, id Identity) (int64, bool) {
	account, ok := s.lookupAccount(ctx, id)
	return account.ID, ok
}

// lookupAccount normalizes the identity: numeric id, comment author, user
// record, then email lookup.
func (s *Service) lookupAccount(ctx context.Context, id Identity) (accounts.Account, bool) {
	var (
		account accounts.Account
		err     error
	)
	switch id.kind {
	case kindUserID, kindCommentAuthor, kindUser:
		if id.id <= 0 {
			return accounts.Account{}, false
		}
		account, err = s.dir.GetByID(ctx, id.id)
	case kindEmail:
		if strings.TrimSpace(id.email) == "" {
			return accounts.Account{}, false
		}
		account, err = s.dir.GetByEmail(ctx, id.email)
	default:
		return accounts.Account{}, false
	}
	if err != nil {
		if !errors.Is(err, accounts.ErrNotFound) {
			s.logger.Warn("account lookup failed", slog.String("identity", id.String()), slog.Any("error", err))
		}
		return accounts.Account{}, false
	}
	return account, true
}

// customURL reads the stored reference and resolves it for size.
func (s *Service) customURL(ctx context.Context, userID int64, size Size) (string, string) {
	stored, ok, err := s.meta.Get(ctx, userID, s.strategy.MetaKey())
	if err != nil {
		s.logger.Warn("read avatar reference failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return "", OutcomeError
	}
	if !ok || strings.TrimSpace(stored) == "" {
		return "", OutcomeNoReference
	}
	src, err := s.strategy.URL(ctx, stored, size)
	if err != nil {
		s.logger.Debug("avatar reference unresolvable",
			slog.Int64("user_id", userID),
			slog.String("strategy", s.strategy.Name()),
			slog.Any("error", err),
		)
		return "", OutcomeUnresolvable
	}
	return src, OutcomeCustom
}

func renderTag(src, alt string, size Size, opts Options) string {
	class := opts.Class
	if class == "" {
		class = "avatar avatar-" + strconv.Itoa(size.Width) + " photo"
	}
	var b strings.Builder
	b.WriteString(`<img alt="`)
	b.WriteString(html.EscapeString(alt))
	b.WriteString(`" src="`)
	b.WriteString(html.EscapeString(src))
	b.WriteString(`" class="`)
	b.WriteString(html.EscapeString(class))
	b.WriteString(`"`)
	if !opts.Preview {
		b.WriteString(` width="`)
		b.WriteString(strconv.Itoa(size.Width))
		b.WriteString(`" height="`)
		b.WriteString(strconv.Itoa(size.Height))
		b.WriteString(`"`)
	}
	if extra := strings.TrimSpace(opts.ExtraAttr); extra != "" {
		b.WriteString(" ")
		b.WriteString(extra)
	}
	b.WriteString(" />")
	return b.String()
}

// DefaultTag renders the host's default avatar markup for url, used when a
// caller supplies a default image URL instead of ready-made fallback HTML.
func DefaultTag(url, alt string, size Size) string {
	if !isAbsoluteURL(url) {
		return ""
	}
	url = strings.TrimSpace(url)
	size = size.orDefault(96)
	return renderTag(url, alt, size, Options{
		Class: "avatar avatar-" + strconv.Itoa(size.Width) + " photo avatar-default",
	})
}
