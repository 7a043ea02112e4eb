package avatar

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// EmbedArgs are the attributes of an avatar embed. Zero values take the
// viewer, the embed size and the embed alt text.
type EmbedArgs struct {
	UserID int64
	Size   int
	Alt    string
}

// Embed renders the custom avatar of a user for inline content. It returns ""
// when the user has none.
func (s *Service) Embed(ctx context.Context, args EmbedArgs, viewerID int64) string {
	userID := args.UserID
	if userID <= 0 {
		userID = viewerID
	}
	if userID <= 0 {
		s.observe(OutcomeUnknownIdentity)
		return ""
	}
	size := args.Size
	if size <= 0 {
		size = s.settings.EmbedSize
	}
	alt := args.Alt
	if alt == "" {
		alt = s.settings.EmbedAlt
	}
	src, outcome := s.customURL(ctx, userID, Square(size))
	s.observe(outcome)
	if outcome != OutcomeCustom {
		return ""
	}
	return renderTag(src, alt, Square(size), Options{})
}

var (
	shortcodePattern = regexp.MustCompile(`\[(avatar|wpadmin_avatar)(\s[^\]]*)?\]`)
	attrPattern      = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"']+))`)
)

// ExpandShortcodes replaces every [avatar ...] and [wpadmin_avatar ...] tag in
// content with its Embed output.
func (s *Service) ExpandShortcodes(ctx context.Context, content string, viewerID int64) string {
	if !strings.Contains(content, "[") {
		return content
	}
	return shortcodePattern.ReplaceAllStringFunc(content, func(tag string) string {
		m := shortcodePattern.FindStringSubmatch(tag)
		return s.Embed(ctx, ParseEmbedArgs(m[2]), viewerID)
	})
}

// ParseEmbedArgs reads user_id, size and alt from a shortcode attribute list.
// Unknown attributes are ignored and malformed numbers are left at zero.
func ParseEmbedArgs(raw string) EmbedArgs {
	var args EmbedArgs
	for _, m := range attrPattern.FindAllStringSubmatch(raw, -1) {
		value := m[2] + m[3] + m[4]
		switch strings.ToLower(m[1]) {
		case "user_id":
			if id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil && id > 0 {
				args.UserID = id
			}
		case "size":
			if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && n > 0 {
				args.Size = n
			}
		case "alt":
			args.Alt = value
		}
	}
	return args
}
