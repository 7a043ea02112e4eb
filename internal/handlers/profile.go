package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/memohai/avatar/internal/auth"
	"github.com/memohai/avatar/internal/avatar"
)

// ProfileHandler serves the profile widget and saves the submitted reference.
type ProfileHandler struct {
	service *avatar.Service
	logger  *slog.Logger
}

type SaveAvatarRequest struct {
	Value string `json:"value" form:"avatar_value"`
}

type SaveAvatarResponse struct {
	UserID int64  `json:"user_id"`
	Value  string `json:"value"`
	Set    bool   `json:"set"`
}

func NewProfileHandler(log *slog.Logger, service *avatar.Service) *ProfileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ProfileHandler{
		service: service,
		logger:  log.With(slog.String("handler", "profile")),
	}
}

func (h *ProfileHandler) Register(e *echo.Echo) {
	g := e.Group("/users/:id/avatar")
	g.GET("/form", h.Form)
	g.PUT("", h.Save)
	g.DELETE("", h.Clear)
}

// Form godoc
// @Summary Profile avatar widget
// @Tags profile
// @Param id path int true "User ID"
// @Param default_url query string false "Default avatar image shown when no custom avatar is set"
// @Produce html
// @Success 200 {string} string
// @Failure 403 {object} ErrorResponse
// @Router /users/{id}/avatar/form [get]
func (h *ProfileHandler) Form(c echo.Context) error {
	actorID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	defaultHTML := avatar.DefaultTag(c.QueryParam("default_url"), "", avatar.Square(150))
	out, err := h.service.RenderForm(c.Request().Context(), actorID, userID, defaultHTML)
	if err != nil {
		h.logger.Error("render form failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if out == "" {
		return echo.NewHTTPError(http.StatusForbidden, "permission denied")
	}
	return c.HTML(http.StatusOK, out)
}

// Save godoc
// @Summary Save the custom avatar reference
// @Description A non-positive attachment id or an empty URL removes the reference
// @Tags profile
// @Param id path int true "User ID"
// @Param payload body SaveAvatarRequest true "Submitted value"
// @Success 200 {object} SaveAvatarResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /users/{id}/avatar [put]
func (h *ProfileHandler) Save(c echo.Context) error {
	actorID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req SaveAvatarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()
	if err := h.service.Save(ctx, actorID, userID, req.Value); err != nil {
		return h.saveError(userID, err)
	}
	value, set, err := h.service.Current(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, SaveAvatarResponse{UserID: userID, Value: value, Set: set})
}

// Clear godoc
// @Summary Remove the custom avatar
// @Tags profile
// @Param id path int true "User ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /users/{id}/avatar [delete]
func (h *ProfileHandler) Clear(c echo.Context) error {
	actorID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	userID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Clear(c.Request().Context(), actorID, userID); err != nil {
		return h.saveError(userID, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProfileHandler) saveError(userID int64, err error) error {
	if errors.Is(err, avatar.ErrPermissionDenied) {
		return echo.NewHTTPError(http.StatusForbidden, "permission denied")
	}
	h.logger.Error("save avatar failed", slog.Int64("user_id", userID), slog.Any("error", err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
