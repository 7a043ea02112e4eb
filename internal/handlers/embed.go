package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/avatar/internal/auth"
	"github.com/memohai/avatar/internal/avatar"
)

type EmbedHandler struct {
	service *avatar.Service
	logger  *slog.Logger
}

// EmbedRequest either carries content with [avatar] shortcodes to expand, or
// the attributes of a single embed when Content is empty.
type EmbedRequest struct {
	Content string `json:"content" form:"content"`
	UserID  int64  `json:"user_id" form:"user_id" validate:"gte=0"`
	Size    int    `json:"size" form:"size" validate:"gte=0,lte=4096"`
	Alt     string `json:"alt" form:"alt"`
}

type EmbedResponse struct {
	HTML string `json:"html"`
}

func NewEmbedHandler(log *slog.Logger, service *avatar.Service) *EmbedHandler {
	if log == nil {
		log = slog.Default()
	}
	return &EmbedHandler{
		service: service,
		logger:  log.With(slog.String("handler", "embed")),
	}
}

func (h *EmbedHandler) Register(e *echo.Echo) {
	e.POST("/embed", h.Embed)
}

// Embed godoc
// @Summary Expand avatar shortcodes
// @Description Replaces [avatar] and [wpadmin_avatar] tags for the current viewer. An avatar without a custom image expands to nothing.
// @Tags embed
// @Param payload body EmbedRequest true "Content or embed attributes"
// @Success 200 {object} EmbedResponse
// @Failure 400 {object} ErrorResponse
// @Router /embed [post]
func (h *EmbedHandler) Embed(c echo.Context) error {
	var req EmbedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	ctx := c.Request().Context()
	viewerID := auth.OptionalUserID(c)
	if req.Content != "" {
		return c.JSON(http.StatusOK, EmbedResponse{HTML: h.service.ExpandShortcodes(ctx, req.Content, viewerID)})
	}
	html := h.service.Embed(ctx, avatar.EmbedArgs{UserID: req.UserID, Size: req.Size, Alt: req.Alt}, viewerID)
	return c.JSON(http.StatusOK, EmbedResponse{HTML: html})
}
