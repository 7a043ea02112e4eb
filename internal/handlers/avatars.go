package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/avatar/internal/auth"
	"github.com/memohai/avatar/internal/avatar"
)

// AvatarsHandler exposes the resolution filter and the attachment picker.
type AvatarsHandler struct {
	service *avatar.Service
	logger  *slog.Logger
}

// RenderRequest mirrors the filter arguments. Identity may be a number, a
// string (numeric id or email), {"user_id": n} for a comment author or
// {"ID": n} for a user record. Size may be a number, a [width, height] pair
// or a "WxH" string. Fields that cannot be interpreted degrade to the
// fallback instead of failing the request.
type RenderRequest struct {
	DefaultHTML string          `json:"default_html"`
	Identity    json.RawMessage `json:"identity"`
	Size        json.RawMessage `json:"size"`
	Width       json.RawMessage `json:"width"`
	Height      json.RawMessage `json:"height"`
	DefaultURL  string          `json:"default_url"`
	Alt         string          `json:"alt"`
	Class       string          `json:"class"`
	ExtraAttr   string          `json:"extra_attr"`
	Preview     bool            `json:"preview"`
}

type RenderResponse struct {
	HTML   string `json:"html"`
	Custom bool   `json:"custom"`
}

type SelectAttachmentRequest struct {
	AttachmentID int64 `json:"attachment_id"`
}

func NewAvatarsHandler(log *slog.Logger, service *avatar.Service) *AvatarsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AvatarsHandler{
		service: service,
		logger:  log.With(slog.String("handler", "avatars")),
	}
}

func (h *AvatarsHandler) Register(e *echo.Echo) {
	g := e.Group("/avatars")
	g.POST("/render", h.Render)
	g.GET("/:user_id", h.Get)
	g.POST("/attachments", h.SelectAttachment)
}

// Render godoc
// @Summary Resolve avatar HTML
// @Description Returns the custom avatar tag for the identity, or the fallback HTML unchanged
// @Tags avatars
// @Param payload body RenderRequest true "Filter arguments"
// @Success 200 {object} RenderResponse
// @Failure 400 {object} ErrorResponse
// @Router /avatars/render [post]
func (h *AvatarsHandler) Render(c echo.Context) error {
	var req RenderRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	size := sizeFromJSON(req.Size)
	if width, height := jsonInt(req.Width), jsonInt(req.Height); width > 0 || height > 0 {
		size = avatar.Rect(int(min(width, avatar.MaxEdge)), int(min(height, avatar.MaxEdge)))
	}
	size = size.Bounded()
	fallback := req.DefaultHTML
	if fallback == "" && req.DefaultURL != "" {
		fallback = avatar.DefaultTag(req.DefaultURL, req.Alt, size)
	}
	html := h.service.Resolve(c.Request().Context(), identityFromJSON(req.Identity), size, fallback, req.Alt, avatar.Options{
		Class:     req.Class,
		ExtraAttr: req.ExtraAttr,
		Preview:   req.Preview,
	})
	return c.JSON(http.StatusOK, RenderResponse{HTML: html, Custom: html != fallback})
}

// Get godoc
// @Summary Render a user's custom avatar
// @Tags avatars
// @Param user_id path int true "User ID"
// @Param size query string false "Edge length or WxH"
// @Param alt query string false "Alt text"
// @Produce html
// @Success 200 {string} string
// @Failure 404 "no custom avatar"
// @Router /avatars/{user_id} [get]
func (h *AvatarsHandler) Get(c echo.Context) error {
	userID, err := pathID(c, "user_id")
	if err != nil {
		return err
	}
	size, _ := avatar.ParseSize(c.QueryParam("size"))
	size = size.Bounded()
	html := h.service.Resolve(c.Request().Context(), avatar.ByUserID(userID), size, "", c.QueryParam("alt"), avatar.Options{})
	if html == "" {
		return c.NoContent(http.StatusNotFound)
	}
	return c.HTML(http.StatusOK, html)
}

// SelectAttachment godoc
// @Summary Confirm a media library pick
// @Description Returns the thumbnail URL of the picked attachment for the profile preview
// @Tags avatars
// @Param payload body SelectAttachmentRequest true "Attachment"
// @Success 200 {object} avatar.AttachmentSelection
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /avatars/attachments [post]
func (h *AvatarsHandler) SelectAttachment(c echo.Context) error {
	actorID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	var req SelectAttachmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sel, err := h.service.SelectAttachment(c.Request().Context(), actorID, req.AttachmentID)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, sel)
	case errors.Is(err, avatar.ErrPermissionDenied):
		return echo.NewHTTPError(http.StatusForbidden, "permission denied")
	case errors.Is(err, avatar.ErrInvalidAttachment):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid attachment ID")
	case errors.Is(err, avatar.ErrAttachmentUnresolvable):
		return echo.NewHTTPError(http.StatusNotFound, "Could not get attachment URL")
	default:
		h.logger.Error("select attachment failed", slog.Int64("attachment_id", req.AttachmentID), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// identityFromJSON maps the loosely typed identity field onto avatar.Identity.
func identityFromJSON(raw json.RawMessage) avatar.Identity {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return avatar.Identity{}
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return avatar.Identity{}
		}
		return avatar.ParseIdentity(s)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return avatar.Identity{}
		}
		if v, ok := obj["user_id"]; ok {
			return avatar.ByCommentAuthor(jsonInt(v))
		}
		if v, ok := obj["ID"]; ok {
			return avatar.ByUser(jsonInt(v))
		}
		return avatar.Identity{}
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return avatar.Identity{}
		}
		id, ok := avatar.NumericID(n.String())
		if !ok {
			return avatar.Identity{}
		}
		return avatar.ByUserID(id)
	}
}

// sizeFromJSON maps the loosely typed size field onto avatar.Size. Anything
// unreadable yields the zero Size, which renders at the default edge.
func sizeFromJSON(raw json.RawMessage) avatar.Size {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return avatar.Size{}
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return avatar.Size{}
		}
		if size, ok := avatar.ParseSize(s); ok {
			return size
		}
		return avatar.Square(int(min(max(jsonInt(raw), 0), avatar.MaxEdge)))
	case '[':
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) == 0 {
			return avatar.Size{}
		}
		w := min(max(jsonInt(pair[0]), 0), avatar.MaxEdge)
		h := w
		if len(pair) > 1 {
			h = min(max(jsonInt(pair[1]), 0), avatar.MaxEdge)
		}
		return avatar.Rect(int(w), int(h))
	default:
		return avatar.Square(int(min(max(jsonInt(raw), 0), avatar.MaxEdge)))
	}
}

// jsonInt reads a number or numeric string; anything else is 0.
func jsonInt(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if id, ok := avatar.NumericID(n.String()); ok {
			return id
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if id, ok := avatar.NumericID(s); ok {
			return id
		}
	}
	return 0
}
