package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, raw, secret string) *jwt.Token {
	t.Helper()
	token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	return token
}

func TestGenerateToken_RoundTrip(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	secret := "test-secret"
	signed, expiresAt, err := GenerateToken(7, "bob@example.com", secret, 5*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expiresAt, 5*time.Second)

	token := parse(t, signed, secret)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "7", claims[claimSubject])
	assert.Equal(t, "bob@example.com", claims[claimEmail])

	c.Set("user", token)
	id, err := UserIDFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int64(7), OptionalUserID(c))
}

func TestGenerateToken_Rejects(t *testing.T) {
	_, _, err := GenerateToken(0, "", "secret", time.Minute)
	assert.Error(t, err)
	_, _, err = GenerateToken(1, "", " ", time.Minute)
	assert.Error(t, err)
	_, _, err = GenerateToken(1, "", "secret", 0)
	assert.Error(t, err)
}

func TestUserIDFromContext_MissingUser(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := UserIDFromContext(c)
	require.Error(t, err)

	httpErr, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	assert.Equal(t, "invalid token", httpErr.Message)
	assert.Equal(t, int64(0), OptionalUserID(c))
}

func TestUserIDFromContext_BadSubject(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	secret := "s"
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		claimSubject: "not-a-number",
		"exp":        time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	c.Set("user", parse(t, raw, secret))

	_, err = UserIDFromContext(c)
	assert.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	secret := "mw-secret"
	e := echo.New()
	e.Use(JWTMiddleware(secret, func(c echo.Context) bool {
		return c.Request().URL.Path == "/open"
	}))
	whoami := func(c echo.Context) error {
		id, err := UserIDFromContext(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]int64{"id": id})
	}
	e.GET("/me", whoami)
	e.GET("/open", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	signed, _, err := GenerateToken(3, "", secret, time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signed)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":3}`, rec.Body.String())
}

func TestOptionalJWTMiddleware(t *testing.T) {
	secret := "opt-secret"
	e := echo.New()
	e.Use(OptionalJWTMiddleware(secret, nil))
	e.GET("/viewer", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]int64{"viewer": OptionalUserID(c)})
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewer", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"viewer":0}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/viewer", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer garbage")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"viewer":0}`, rec.Body.String())

	signed, _, err := GenerateToken(9, "", secret, time.Minute)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/viewer?token="+signed, nil))
	assert.JSONEq(t, `{"viewer":9}`, rec.Body.String())
}
