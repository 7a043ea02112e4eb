package handlers

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/avatar/internal/accounts"
	"github.com/memohai/avatar/internal/auth"
	"github.com/memohai/avatar/internal/media"
)

// MediaHandler is the upload transport of the media library.
type MediaHandler struct {
	media    *media.Service
	accounts *accounts.Service
	maxBytes int64
	logger   *slog.Logger
}

func NewMediaHandler(log *slog.Logger, mediaService *media.Service, accountService *accounts.Service, maxBytes int64) *MediaHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MediaHandler{
		media:    mediaService,
		accounts: accountService,
		maxBytes: maxBytes,
		logger:   log.With(slog.String("handler", "media")),
	}
}

func (h *MediaHandler) Register(e *echo.Echo) {
	g := e.Group("/media")
	g.POST("", h.Upload)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/variants", h.AddVariant)
	g.GET("/files/*", h.ServeFile)
}

// Upload godoc
// @Summary Upload an image into the media library
// @Tags media
// @Accept multipart/form-data
// @Param file formData file true "Image"
// @Success 201 {object} media.Asset
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /media [post]
func (h *MediaHandler) Upload(c echo.Context) error {
	actorID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	ok, err := h.accounts.CanUpload(ctx, actorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "permission denied")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	asset, err := h.media.Ingest(ctx, media.IngestInput{
		OwnerID:      actorID,
		OriginalName: file.Filename,
		Reader:       src,
		MaxBytes:     h.maxBytes,
	})
	if err != nil {
		return h.mediaError("ingest", err)
	}
	return c.JSON(http.StatusCreated, asset)
}

// Get godoc
// @Summary Get a media asset
// @Tags media
// @Param id path int true "Asset ID"
// @Success 200 {object} media.Asset
// @Failure 404 {object} ErrorResponse
// @Router /media/{id} [get]
func (h *MediaHandler) Get(c echo.Context) error {
	if _, err := auth.UserIDFromContext(c); err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	asset, err := h.media.GetByID(c.Request().Context(), id)
	if err != nil {
		return h.mediaError("get", err)
	}
	return c.JSON(http.StatusOK, asset)
}

// AddVariant godoc
// @Summary Register a pre-rendered variant
// @Tags media
// @Accept multipart/form-data
// @Param id path int true "Asset ID"
// @Param width formData int true "Variant width"
// @Param height formData int true "Variant height"
// @Param file formData file true "Rendered image"
// @Success 201 {object} media.Variant
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /media/{id}/variants [post]
func (h *MediaHandler) AddVariant(c echo.Context) error {
	actorID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	width, errW := strconv.Atoi(strings.TrimSpace(c.FormValue("width")))
	height, errH := strconv.Atoi(strings.TrimSpace(c.FormValue("height")))
	if errW != nil || errH != nil || width <= 0 || height <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "width and height must be positive integers")
	}
	ctx := c.Request().Context()
	if err := h.requireOwner(c, actorID, id); err != nil {
		return err
	}
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	defer src.Close()

	variant, err := h.media.AddVariant(ctx, media.VariantInput{
		AssetID:  id,
		Width:    width,
		Height:   height,
		Reader:   src,
		MaxBytes: h.maxBytes,
	})
	if err != nil {
		return h.mediaError("add variant", err)
	}
	return c.JSON(http.StatusCreated, variant)
}

// Delete godoc
// @Summary Delete a media asset and its variants
// @Tags media
// @Param id path int true "Asset ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /media/{id} [delete]
func (h *MediaHandler) Delete(c echo.Context) error {
	actorID, err := auth.UserIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.requireOwner(c, actorID, id); err != nil {
		return err
	}
	if err := h.media.Delete(c.Request().Context(), id); err != nil {
		return h.mediaError("delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ServeFile godoc
// @Summary Serve a stored media object
// @Tags media
// @Param key path string true "Storage key"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /media/files/{key} [get]
func (h *MediaHandler) ServeFile(c echo.Context) error {
	key := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
	if key == "" || key == "." {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	reader, err := h.media.OpenObject(c.Request().Context(), key)
	if err != nil {
		h.logger.Debug("open media object failed", slog.String("key", key), slog.Any("error", err))
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	defer reader.Close()
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	c.Response().Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	return c.Stream(http.StatusOK, contentType, reader)
}

func (h *MediaHandler) requireOwner(c echo.Context, actorID, assetID int64) error {
	ctx := c.Request().Context()
	asset, err := h.media.GetByID(ctx, assetID)
	if err != nil {
		return h.mediaError("get", err)
	}
	ok, err := h.accounts.CanEdit(ctx, actorID, asset.OwnerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "permission denied")
	}
	return nil
}

func (h *MediaHandler) mediaError(op string, err error) error {
	switch {
	case errors.Is(err, media.ErrAssetNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, media.ErrAssetTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, media.ErrUnsupportedMedia):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, media.ErrVariantMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("media "+op+" failed", slog.Any("error", err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
