package avatar

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/memohai/avatar/internal/media"
	"github.com/memohai/avatar/internal/usermeta"
)

const (
	StrategyAttachment = "attachment"
	StrategyURL        = "url"
)

// errUnresolvable marks a stored reference that cannot be displayed.
var errUnresolvable = errors.New("avatar reference unresolvable")

// RefStrategy is one way of storing a custom avatar reference in user meta.
type RefStrategy interface {
	Name() string
	MetaKey() string
	// Normalize turns a submitted form value into the stored value; ok=false
	// means the reference must be cleared.
	Normalize(submitted string) (value string, ok bool)
	// URL resolves a stored value to a displayable URL.
	URL(ctx context.Context, stored string, size Size) (string, error)
}

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string, resolver media.Resolver) (RefStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyAttachment:
		if resolver == nil {
			return nil, fmt.Errorf("attachment strategy requires a media resolver")
		}
		return AttachmentStrategy{resolver: resolver}, nil
	case StrategyURL:
		return URLStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown avatar strategy %q", name)
	}
}

// AttachmentStrategy stores a media library attachment id.
type AttachmentStrategy struct {
	resolver media.Resolver
}

func NewAttachmentStrategy(resolver media.Resolver) AttachmentStrategy {
	return AttachmentStrategy{resolver: resolver}
}

func (AttachmentStrategy) Name() string    { return StrategyAttachment }
func (AttachmentStrategy) MetaKey() string { return usermeta.KeyAvatarAttachmentID }

func (AttachmentStrategy) Normalize(submitted string) (string, bool) {
	id := absInt(submitted)
	if id <= 0 {
		return "", false
	}
	return strconv.FormatInt(id, 10), true
}

func (s AttachmentStrategy) URL(ctx context.Context, stored string, size Size) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(stored), 10, 64)
	if err != nil || id <= 0 {
		return "", errUnresolvable
	}
	u, err := s.resolver.ResolveURL(ctx, id, size.Width, size.Height)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUnresolvable, err)
	}
	if strings.TrimSpace(u) == "" {
		return "", errUnresolvable
	}
	return u, nil
}

// URLStrategy stores a pre-resolved absolute URL.
type URLStrategy struct{}

func (URLStrategy) Name() string    { return StrategyURL }
func (URLStrategy) MetaKey() string { return usermeta.KeyAvatarURL }

func (URLStrategy) Normalize(submitted string) (string, bool) {
	v := strings.TrimSpace(submitted)
	return v, v != ""
}

func (URLStrategy) URL(_ context.Context, stored string, _ Size) (string, error) {
	if !isAbsoluteURL(stored) {
		return "", errUnresolvable
	}
	return strings.TrimSpace(stored), nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// absInt reads the leading integer of s and returns its absolute value; any
// non-numeric input yields 0.
func absInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s != "" && (s[0] == '-' || s[0] == '+') {
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
