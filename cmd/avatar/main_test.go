package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/avatar/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestTokenCommand(t *testing.T) {
	path := writeConfig(t, "[auth]\njwt_secret = \"cli-secret\"\n")
	root := newRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs([]string{"token", "--config", path, "--user-id", "7", "--ttl", "10m"})
	require.NoError(t, root.Execute())

	raw := strings.TrimSpace(out.String())
	token, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte("cli-secret"), nil })
	require.NoError(t, err)
	assert.Equal(t, "7", token.Claims.(jwt.MapClaims)["user_id"])
	assert.Contains(t, errOut.String(), "expires at")
}

func TestTokenCommand_RequiresUserID(t *testing.T) {
	path := writeConfig(t, "[auth]\njwt_secret = \"cli-secret\"\n")
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"token", "--config", path})
	assert.Error(t, root.Execute())
}

func TestProvideRuntimeConfig(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "[auth]\njwt_secret = \"s\"\njwt_expires_in = \"2h\"\n"))
	require.NoError(t, err)
	rc, err := provideRuntimeConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "2h0m0s", rc.JWTExpiresIn.String())

	cfg.Auth.JWTSecret = ""
	_, err = provideRuntimeConfig(cfg)
	assert.Error(t, err)

	cfg.Auth.JWTSecret = "s"
	cfg.Auth.JWTExpiresIn = "soon"
	_, err = provideRuntimeConfig(cfg)
	assert.Error(t, err)
}

func TestMemoryStoreWiring(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "[store]\ndriver = \"memory\"\n"))
	require.NoError(t, err)
	assert.False(t, usePostgres(cfg))
	assert.NotNil(t, provideMetaStore(nil, nil))
	assert.NotNil(t, provideAccountRepository(nil))
	assert.NotNil(t, provideCatalog(nil))

	cfg.Storage.DataRoot = t.TempDir()
	provider, err := provideStorageProvider(slog.Default(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, provider)

	checkers := provideHealthCheckers(slog.Default(), cfg, nil, nil, provider)
	require.Len(t, checkers, 1)

	cfg.Storage.Driver = "ftp"
	_, err = provideStorageProvider(slog.Default(), cfg)
	assert.Error(t, err)

	cfg.Avatar.Strategy = "url"
	strategy, err := provideStrategy(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "url", strategy.Name())
}
