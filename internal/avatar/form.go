package avatar

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

const previewSize = 150

var formTemplate = template.Must(template.New("avatar-form").Parse(`<h2>Profile Picture</h2>
<table class="form-table" role="presentation">
	<tr class="user-avatar-wrap">
		<th><label for="avatar_value">Custom avatar</label></th>
		<td>
			<div class="avatar-container">
				<div class="current-avatar" style="max-width:{{.PreviewSize}}px">{{.Preview}}</div>
				<input type="hidden" name="avatar_value" id="avatar_value" value="{{.Value}}" data-strategy="{{.Strategy}}" data-user-id="{{.UserID}}">
				<button type="button" class="button" id="upload_avatar_button">Choose image</button>
				{{- if .HasAvatar}}
				<button type="button" class="button" id="remove_avatar_button">Remove avatar</button>
				{{- end}}
				<p class="description">Upload a square image of at least {{.PreviewSize}}x{{.PreviewSize}} pixels.</p>
			</div>
		</td>
	</tr>
</table>
`))

type formView struct {
	UserID      int64
	Value       string
	Strategy    string
	HasAvatar   bool
	Preview     template.HTML
	PreviewSize int
}

// RenderForm returns the profile upload widget for userID, or "" when actor
// may not edit that profile. defaultHTML is shown when no custom avatar is set;
// when empty the configured default avatar is used.
func (s *Service) RenderForm(ctx context.Context, actorID, userID int64, defaultHTML string) (string, error) {
	ok, err := s.dir.CanEdit(ctx, actorID, userID)
	if err != nil {
		return "", fmt.Errorf("check permission: %w", err)
	}
	if !ok {
		return "", nil
	}
	value, set, err := s.Current(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("read avatar reference: %w", err)
	}
	value = strings.TrimSpace(value)
	if strings.TrimSpace(defaultHTML) == "" {
		defaultHTML = DefaultTag(s.settings.DefaultURL, "", Square(previewSize))
	}
	view := formView{
		UserID:      userID,
		Value:       value,
		Strategy:    s.strategy.Name(),
		HasAvatar:   set && value != "",
		PreviewSize: previewSize,
		Preview:     template.HTML(s.Resolve(ctx, ByUser(userID), Square(previewSize), defaultHTML, "", Options{Preview: true})), //nolint:gosec // renderTag escapes every attribute
	}
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render avatar form: %w", err)
	}
	return buf.String(), nil
}
