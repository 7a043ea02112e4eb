package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/avatar/internal/auth"
	"github.com/memohai/avatar/internal/metrics"
)

func TestShouldSkipJWT(t *testing.T) {
	t.Parallel()

	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{method: http.MethodGet, path: "/ping", want: true},
		{method: http.MethodHead, path: "/health", want: true},
		{method: http.MethodPost, path: "/auth/login", want: true},
		{method: http.MethodPost, path: "/avatars/render", want: true},
		{method: http.MethodGet, path: "/avatars/7", want: true},
		{method: http.MethodPost, path: "/avatars/attachments", want: false},
		{method: http.MethodGet, path: "/media/files/7/ab/abc.png", want: true},
		{method: http.MethodPost, path: "/media", want: false},
		{method: http.MethodPut, path: "/users/7/avatar", want: false},
		{method: http.MethodPost, path: "/embed", want: false},
	}

	for _, tc := range cases {
		got := shouldSkipJWT(tc.method, tc.path)
		if got != tc.want {
			t.Fatalf("%s %s want=%v got=%v", tc.method, tc.path, tc.want, got)
		}
	}
	assert.True(t, isOptionalAuthPath("/embed"))
}

type probeHandler struct{}

func (probeHandler) Register(e *echo.Echo) {
	e.GET("/private", func(c echo.Context) error {
		id, err := auth.UserIDFromContext(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]int64{"id": id})
	})
	e.POST("/embed", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]int64{"viewer": auth.OptionalUserID(c)})
	})
}

func TestNew_Middleware(t *testing.T) {
	t.Parallel()
	secret := "server-secret"
	m := metrics.New()
	srv := New(Params{JWTSecret: secret, Metrics: m, Handlers: []Handler{probeHandler{}, nil}})
	e := srv.Echo()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/embed", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"viewer":0}`, rec.Body.String())

	token, _, err := auth.GenerateToken(5, "", secret, time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/embed", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.JSONEq(t, `{"viewer":5}`, rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "avatar_http_requests_total")
}

func TestValidator(t *testing.T) {
	t.Parallel()
	type payload struct {
		Email string `validate:"required,email"`
	}
	v := NewValidator()
	assert.NoError(t, v.Validate(&payload{Email: "a@b.co"}))
	assert.Error(t, v.Validate(&payload{Email: "nope"}))
}
