package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// Service provides media asset persistence and URL resolution.
type Service struct {
	catalog  Catalog
	provider StorageProvider
	cache    URLCache
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewService creates a media service with the given catalog and storage provider.
func NewService(log *slog.Logger, catalog Catalog, provider StorageProvider) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		catalog:  catalog,
		provider: provider,
		logger:   log.With(slog.String("service", "media")),
	}
}

// SetURLCache enables caching of resolved URLs.
func (s *Service) SetURLCache(cache URLCache, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

// Ingest persists a new image asset. It hashes the content, deduplicates by
// (owner_id, content_hash), stores the bytes via the provider, and writes the
// catalog record. Returns the asset (existing or newly created).
func (s *Service) Ingest(ctx context.Context, input IngestInput) (Asset, error) {
	if s.provider == nil {
		return Asset{}, ErrProviderUnavailable
	}
	if input.OwnerID <= 0 {
		return Asset{}, fmt.Errorf("owner id is required")
	}
	if input.Reader == nil {
		return Asset{}, fmt.Errorf("reader is required")
	}

	maxBytes := input.MaxBytes
	if maxBytes <= 0 {
		maxBytes = MaxAssetBytes
	}
	contentHash, sizeBytes, tempPath, err := spoolAndHashWithLimit(input.Reader, maxBytes)
	if err != nil {
		return Asset{}, fmt.Errorf("read input: %w", err)
	}
	defer func() {
		_ = os.Remove(tempPath)
	}()

	mime, err := mimetype.DetectFile(tempPath)
	if err != nil {
		return Asset{}, fmt.Errorf("detect mime: %w", err)
	}
	if !isImageMime(mime.String()) {
		return Asset{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mime.String())
	}

	// Dedup: only create when hash truly not found; propagate other catalog errors.
	existing, err := s.catalog.GetByHash(ctx, input.OwnerID, contentHash)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrAssetNotFound) {
		return Asset{}, fmt.Errorf("check existing asset: %w", err)
	}

	storageKey := path.Join(
		strconv.FormatInt(input.OwnerID, 10),
		contentHash[:4],
		contentHash+mime.Extension(),
	)

	tempFile, err := os.Open(tempPath)
	if err != nil {
		return Asset{}, fmt.Errorf("open temp file: %w", err)
	}
	defer func() {
		_ = tempFile.Close()
	}()
	width, height := imageDimensions(tempFile)
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		return Asset{}, fmt.Errorf("rewind temp file: %w", err)
	}
	if err := s.provider.Put(ctx, storageKey, tempFile); err != nil {
		return Asset{}, fmt.Errorf("store media: %w", err)
	}

	asset, err := s.catalog.Create(ctx, Asset{
		OwnerID:      input.OwnerID,
		ContentHash:  contentHash,
		Mime:         mime.String(),
		SizeBytes:    sizeBytes,
		StorageKey:   storageKey,
		OriginalName: strings.TrimSpace(input.OriginalName),
		Width:        width,
		Height:       height,
	})
	if err != nil {
		// A concurrent ingest of the same bytes may own the key by now.
		if winner, lookupErr := s.catalog.GetByHash(ctx, input.OwnerID, contentHash); lookupErr == nil {
			return winner, nil
		}
		if delErr := s.provider.Delete(ctx, storageKey); delErr != nil {
			s.logger.Warn("delete orphaned media object failed", slog.String("key", storageKey), slog.Any("error", delErr))
		}
		return Asset{}, fmt.Errorf("create asset record: %w", err)
	}
	s.logger.Info("media ingested",
		slog.Int64("asset_id", asset.ID),
		slog.Int64("owner_id", asset.OwnerID),
		slog.String("mime", asset.Mime),
		slog.Int64("size_bytes", asset.SizeBytes),
	)
	return asset, nil
}

// AddVariant stores a pre-rendered rendition of an existing asset.
func (s *Service) AddVariant(ctx context.Context, input VariantInput) (Variant, error) {
	if s.provider == nil {
		return Variant{}, ErrProviderUnavailable
	}
	data, err := readVariant(input.Reader, input.MaxBytes, input.Width, input.Height)
	if err != nil {
		return Variant{}, fmt.Errorf("read variant: %w", err)
	}
	asset, err := s.catalog.GetByID(ctx, input.AssetID)
	if err != nil {
		return Variant{}, err
	}
	mime := mimetype.Detect(data)
	if !isImageMime(mime.String()) {
		return Variant{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mime.String())
	}
	variant := Variant{
		Width:  input.Width,
		Height: input.Height,
		StorageKey: path.Join(
			path.Dir(asset.StorageKey),
			fmt.Sprintf("%s-%dx%d%s", asset.ContentHash, input.Width, input.Height, mime.Extension()),
		),
	}
	if err := s.provider.Put(ctx, variant.StorageKey, bytes.NewReader(data)); err != nil {
		return Variant{}, fmt.Errorf("store variant: %w", err)
	}
	if err := s.catalog.AddVariant(ctx, asset.ID, variant); err != nil {
		return Variant{}, fmt.Errorf("record variant: %w", err)
	}
	s.invalidate(ctx, asset.ID)
	return variant, nil
}

// GetByID returns an asset by its ID.
func (s *Service) GetByID(ctx context.Context, id int64) (Asset, error) {
	if id <= 0 {
		return Asset{}, ErrAssetNotFound
	}
	return s.catalog.GetByID(ctx, id)
}

// Open returns a reader for the media asset identified by ID.
func (s *Service) Open(ctx context.Context, id int64) (io.ReadCloser, Asset, error) {
	if s.provider == nil {
		return nil, Asset{}, ErrProviderUnavailable
	}
	asset, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, Asset{}, err
	}
	reader, err := s.provider.Open(ctx, asset.StorageKey)
	if err != nil {
		return nil, Asset{}, fmt.Errorf("open storage: %w", err)
	}
	return reader, asset, nil
}

// OpenObject returns a reader for a raw storage key.
func (s *Service) OpenObject(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	return s.provider.Open(ctx, key)
}

// Delete removes an asset, its variants and their stored objects.
func (s *Service) Delete(ctx context.Context, id int64) error {
	asset, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete asset record: %w", err)
	}
	s.invalidate(ctx, id)
	if s.provider != nil {
		keys := []string{asset.StorageKey}
		for _, v := range asset.Variants {
			keys = append(keys, v.StorageKey)
		}
		for _, key := range keys {
			if err := s.provider.Delete(ctx, key); err != nil {
				s.logger.Warn("delete media object failed", slog.String("key", key), slog.Any("error", err))
			}
		}
	}
	return nil
}

// ResolveURL returns the URL of the rendition best matching width x height:
// an exact variant, else the smallest variant covering the box, else the
// original.
func (s *Service) ResolveURL(ctx context.Context, id int64, width, height int) (string, error) {
	if s.provider == nil {
		return "", ErrProviderUnavailable
	}
	field := sizeField(width, height)
	if s.cache != nil {
		if url, ok, err := s.cache.Get(ctx, id, field); err != nil {
			s.logger.Warn("url cache get failed", slog.Int64("asset_id", id), slog.Any("error", err))
		} else if ok {
			return url, nil
		}
	}
	asset, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	url := s.provider.AccessPath(pickRendition(asset, width, height))
	if s.cache != nil {
		if err := s.cache.Put(ctx, id, field, url, s.cacheTTL); err != nil {
			s.logger.Warn("url cache put failed", slog.Int64("asset_id", id), slog.Any("error", err))
		}
	}
	return url, nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("url cache invalidate failed", slog.Int64("asset_id", id), slog.Any("error", err))
	}
}

// --- helpers ---

func pickRendition(asset Asset, width, height int) string {
	if width <= 0 && height <= 0 {
		return asset.StorageKey
	}
	if height <= 0 {
		height = width
	}
	if width <= 0 {
		width = height
	}
	best := -1
	for i, v := range asset.Variants {
		if v.Width == width && v.Height == height {
			return v.StorageKey
		}
		if v.Width < width || v.Height < height {
			continue
		}
		if best < 0 || v.Width*v.Height < asset.Variants[best].Width*asset.Variants[best].Height {
			best = i
		}
	}
	if best >= 0 {
		return asset.Variants[best].StorageKey
	}
	return asset.StorageKey
}

func sizeField(width, height int) string {
	return strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

func isImageMime(mime string) bool {
	return strings.HasPrefix(strings.ToLower(mime), "image/")
}

func imageDimensions(r io.Reader) (int, int) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

func spoolAndHashWithLimit(reader io.Reader, maxBytes int64) (string, int64, string, error) {
	if reader == nil {
		return "", 0, "", fmt.Errorf("reader is required")
	}
	if maxBytes <= 0 {
		return "", 0, "", fmt.Errorf("max bytes must be greater than 0")
	}
	tempFile, err := os.CreateTemp("", "avatar-media-*")
	if err != nil {
		return "", 0, "", fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	keepFile := false
	defer func() {
		_ = tempFile.Close()
		if !keepFile {
			_ = os.Remove(tempPath)
		}
	}()

	hasher := sha256.New()
	limited := &io.LimitedReader{R: reader, N: maxBytes + 1}
	written, err := io.Copy(io.MultiWriter(tempFile, hasher), limited)
	if err != nil {
		return "", 0, "", fmt.Errorf("copy to temp file: %w", err)
	}
	if written > maxBytes {
		return "", 0, "", fmt.Errorf("%w: max %d bytes", ErrAssetTooLarge, maxBytes)
	}
	if written == 0 {
		return "", 0, "", fmt.Errorf("asset payload is empty")
	}
	keepFile = true
	return hex.EncodeToString(hasher.Sum(nil)), written, tempPath, nil
}
