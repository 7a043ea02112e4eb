package avatar

import (
	"math"
	"strconv"
	"strings"
)

type identityKind uint8

const (
	kindUnknown identityKind = iota
	kindUserID
	kindCommentAuthor
	kindUser
	kindEmail
)

// Identity names whose avatar is being rendered. It is a closed variant built
// with ByUserID, ByCommentAuthor, ByUser or ByEmail; the zero value is an
// unrecognized identity and always resolves to the fallback.
type Identity struct {
	kind  identityKind
	id    int64
	email string
}

// ByUserID identifies a user by numeric id.
func ByUserID(id int64) Identity { return Identity{kind: kindUserID, id: id} }

// ByCommentAuthor identifies the registered author of a comment (its user_id).
// Guest comments carry user_id 0 and fall back.
func ByCommentAuthor(userID int64) Identity { return Identity{kind: kindCommentAuthor, id: userID} }

// ByUser identifies a user record by its ID.
func ByUser(id int64) Identity { return Identity{kind: kindUser, id: id} }

// ByEmail identifies a user by email address.
func ByEmail(email string) Identity { return Identity{kind: kindEmail, email: email} }

// ParseIdentity maps a loosely typed request value onto an Identity: numeric
// strings become a user id, anything containing "@" an email.
func ParseIdentity(raw string) Identity {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Identity{}
	}
	if id, ok := NumericID(raw); ok {
		return ByUserID(id)
	}
	if strings.Contains(raw, "@") {
		return ByEmail(raw)
	}
	return Identity{}
}

// NumericID reads a decimal integer, decimal fraction or exponent form
// ("7", "7.0", "7e0") and truncates it toward zero.
func NumericID(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, true
	}
	if strings.ContainsAny(raw, "xXpP_") {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func (i Identity) String() string {
	switch i.kind {
	case kindUserID:
		return "user_id:" + strconv.FormatInt(i.id, 10)
	case kindCommentAuthor:
		return "comment_author:" + strconv.FormatInt(i.id, 10)
	case kindUser:
		return "user:" + strconv.FormatInt(i.id, 10)
	case kindEmail:
		return "email:" + i.email
	default:
		return "unknown"
	}
}
