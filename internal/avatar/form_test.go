package avatar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/avatar/internal/usermeta"
)

func TestRenderForm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, StrategyAttachment)

	out, err := f.svc.RenderForm(ctx, 8, 7, fallback)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = f.svc.RenderForm(ctx, 7, 7, fallback)
	require.NoError(t, err)
	assert.Contains(t, out, `id="upload_avatar_button"`)
	assert.NotContains(t, out, `id="remove_avatar_button"`)
	assert.Contains(t, out, fallback)
	assert.Contains(t, out, `value=""`)

	require.NoError(t, f.meta.Set(ctx, 7, usermeta.KeyAvatarAttachmentID, "42"))
	out, err = f.svc.RenderForm(ctx, 1, 7, fallback)
	require.NoError(t, err)
	assert.Contains(t, out, `id="remove_avatar_button"`)
	assert.Contains(t, out, `value="42"`)
	assert.Contains(t, out, `data-strategy="attachment"`)
	assert.Contains(t, out, `<img alt="Bob" src="https://cdn/ex/42-150.jpg" class="avatar avatar-150 photo" />`)
}

func TestRenderFormConfiguredDefault(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, StrategyAttachment)
	svc := NewService(nil, Settings{DefaultURL: "https://host/mystery.png"}, f.meta, f.svc.dir, f.svc.strategy, f.svc.resolver)

	out, err := svc.RenderForm(ctx, 7, 7, "")
	require.NoError(t, err)
	assert.Contains(t, out, `src="https://host/mystery.png" class="avatar avatar-150 photo avatar-default"`)

	out, err = svc.RenderForm(ctx, 7, 7, fallback)
	require.NoError(t, err)
	assert.Contains(t, out, fallback)
	assert.NotContains(t, out, "mystery.png")

	out, err = f.svc.RenderForm(ctx, 7, 7, "")
	require.NoError(t, err)
	assert.Contains(t, out, `<div class="current-avatar" style="max-width:150px"></div>`)
}
