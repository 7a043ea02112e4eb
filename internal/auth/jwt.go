package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	claimSubject = "sub"
	claimUserID  = "user_id"
	claimEmail   = "email"
)

// JWTMiddleware returns a JWT auth middleware configured for HS256 tokens.
func JWTMiddleware(secret string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		TokenLookup:   "header:Authorization:Bearer ,query:token",
		Skipper:       skipper,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	})
}

// OptionalJWTMiddleware parses a bearer token when one is present and lets
// the request through without one. Invalid tokens are ignored as well.
func OptionalJWTMiddleware(secret string, skipper middleware.Skipper) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:             []byte(secret),
		SigningMethod:          "HS256",
		TokenLookup:            "header:Authorization:Bearer ,query:token",
		Skipper:                skipper,
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			return nil
		},
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	})
}

// UserIDFromContext extracts the account id from JWT claims.
func UserIDFromContext(c echo.Context) (int64, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || token == nil || !token.Valid {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
	}
	for _, key := range []string{claimUserID, claimSubject} {
		raw := strings.TrimSpace(claimString(claims, key))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return 0, echo.NewHTTPError(http.StatusUnauthorized, "invalid user id")
		}
		return id, nil
	}
	return 0, echo.NewHTTPError(http.StatusUnauthorized, "user id missing")
}

// OptionalUserID returns the account id when a valid token was presented, or 0
// on routes where authentication is optional.
func OptionalUserID(c echo.Context) int64 {
	if _, ok := c.Get("user").(*jwt.Token); !ok {
		return 0
	}
	id, err := UserIDFromContext(c)
	if err != nil {
		return 0
	}
	return id
}

// GenerateToken creates a signed JWT for the account.
func GenerateToken(userID int64, email, secret string, expiresIn time.Duration) (string, time.Time, error) {
	if userID <= 0 {
		return "", time.Time{}, fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(secret) == "" {
		return "", time.Time{}, fmt.Errorf("jwt secret is required")
	}
	if expiresIn <= 0 {
		return "", time.Time{}, fmt.Errorf("jwt expires in must be positive")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(expiresIn)
	id := strconv.FormatInt(userID, 10)
	claims := jwt.MapClaims{
		claimSubject: id,
		claimUserID:  id,
		"iat":        now.Unix(),
		"exp":        expiresAt.Unix(),
	}
	if email != "" {
		claims[claimEmail] = email
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	raw, ok := claims[key]
	if !ok || raw == nil {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(raw)
	}
}
