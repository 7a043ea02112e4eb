package media

import "errors"

var (
	// ErrAssetNotFound indicates the requested media asset does not exist.
	ErrAssetNotFound = errors.New("media asset not found")
	// ErrProviderUnavailable indicates no storage provider is configured.
	ErrProviderUnavailable = errors.New("storage provider unavailable")
	// ErrAssetTooLarge indicates the payload exceeds the configured max asset size.
	ErrAssetTooLarge = errors.New("media asset too large")
	// ErrVariantMismatch indicates a variant payload does not fit its declared box.
	ErrVariantMismatch = errors.New("variant does not match declared size")
	// ErrUnsupportedMedia indicates the payload is not an image.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
