package avatar

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/avatar/internal/usermeta"
)

func TestEmbed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, StrategyAttachment)
	require.NoError(t, f.meta.Set(ctx, 7, usermeta.KeyAvatarAttachmentID, "42"))

	assert.Equal(t,
		`<img alt="User avatar" src="https://cdn/ex/42-150.jpg" class="avatar avatar-150 photo" width="150" height="150" />`,
		f.svc.Embed(ctx, EmbedArgs{}, 7),
	)
	assert.Equal(t,
		`<img alt="Bob" src="https://cdn/ex/42-64.jpg" class="avatar avatar-64 photo" width="64" height="64" />`,
		f.svc.Embed(ctx, EmbedArgs{UserID: 7, Size: 64, Alt: "Bob"}, 0),
	)
	assert.Empty(t, f.svc.Embed(ctx, EmbedArgs{}, 8))
	assert.Empty(t, f.svc.Embed(ctx, EmbedArgs{}, 0))
}

func TestExpandShortcodes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, StrategyAttachment)
	require.NoError(t, f.meta.Set(ctx, 7, usermeta.KeyAvatarAttachmentID, "42"))

	got := f.svc.ExpandShortcodes(ctx, `Hi [avatar size="48" alt='Bob B'] and [wpadmin_avatar user_id=8] bye`, 7)
	assert.Equal(t,
		`Hi <img alt="Bob B" src="https://cdn/ex/42-48.jpg" class="avatar avatar-48 photo" width="48" height="48" /> and  bye`,
		got,
	)
	assert.Equal(t, "no tags here", f.svc.ExpandShortcodes(ctx, "no tags here", 7))
	assert.Equal(t, "[avatars] stays", f.svc.ExpandShortcodes(ctx, "[avatars] stays", 7))
}

func TestParseEmbedArgs(t *testing.T) {
	t.Parallel()
	cases := []struct {
		raw  string
		want EmbedArgs
	}{
		{raw: "", want: EmbedArgs{}},
		{raw: ` user_id=7 size=64 alt="Bob"`, want: EmbedArgs{UserID: 7, Size: 64, Alt: "Bob"}},
		{raw: ` user_id='x' size=-1 color=red`, want: EmbedArgs{}},
		{raw: ` ALT='It''s'`, want: EmbedArgs{Alt: "It"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseEmbedArgs(tc.raw), tc.raw)
	}
}

func TestParseIdentityAndSize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, ByUserID(7), ParseIdentity(" 7 "))
	assert.Equal(t, ByEmail("bob@example.com"), ParseIdentity("bob@example.com"))
	assert.Equal(t, Identity{}, ParseIdentity("bob"))
	assert.Equal(t, "unknown", ParseIdentity("").String())

	s, ok := ParseSize("150")
	assert.True(t, ok)
	assert.Equal(t, Square(150), s)
	s, ok = ParseSize("120x80")
	assert.True(t, ok)
	assert.Equal(t, Rect(120, 80), s)
	_, ok = ParseSize("0")
	assert.False(t, ok)
	_, ok = ParseSize("wide")
	assert.False(t, ok)
	assert.Equal(t, Square(96), Size{}.orDefault(96))
	assert.Equal(t, Rect(40, 40), Rect(40, 0).orDefault(96))
	assert.Equal(t, Rect(MaxEdge, 0), Rect(5000, -3).Bounded())
}

func TestNumericID(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{raw: "7", want: 7, ok: true},
		{raw: " 7.0 ", want: 7, ok: true},
		{raw: "7e0", want: 7, ok: true},
		{raw: "7.9", want: 7, ok: true},
		{raw: "-3", want: -3, ok: true},
		{raw: "0x7"},
		{raw: "1_000"},
		{raw: "NaN"},
		{raw: "Inf"},
		{raw: "1e30"},
		{raw: "seven"},
		{raw: ""},
	}
	for _, tc := range cases {
		got, ok := NumericID(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
	assert.Equal(t, ByUserID(7), ParseIdentity("7.0"))
}
