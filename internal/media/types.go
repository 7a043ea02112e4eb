package media

import (
	"context"
	"io"
	"time"
)

// ThumbnailSize is the square edge used for the library's "thumbnail" size.
const ThumbnailSize = 150

// Asset is the domain representation of a persisted media attachment.
type Asset struct {
	ID           int64     `json:"id"`
	OwnerID      int64     `json:"owner_id"`
	ContentHash  string    `json:"content_hash"`
	Mime         string    `json:"mime"`
	SizeBytes    int64     `json:"size_bytes"`
	StorageKey   string    `json:"storage_key"`
	OriginalName string    `json:"original_name,omitempty"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	Variants     []Variant `json:"variants,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Variant is a pre-rendered rendition of an asset. Variants are registered by
// uploaders; the library never resizes images itself.
type Variant struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	StorageKey string `json:"storage_key"`
}

// IngestInput carries the data needed to persist a new media asset.
type IngestInput struct {
	OwnerID      int64
	OriginalName string
	// Reader provides the raw bytes; caller is responsible for closing.
	Reader io.Reader
	// MaxBytes optionally overrides MaxAssetBytes.
	MaxBytes int64
}

// VariantInput carries a pre-rendered rendition for AddVariant.
type VariantInput struct {
	AssetID  int64
	Width    int
	Height   int
	Reader   io.Reader
	MaxBytes int64
}

// StorageProvider abstracts object storage operations.
type StorageProvider interface {
	// Put writes data to storage under the given key.
	Put(ctx context.Context, key string, reader io.Reader) error
	// Open returns a reader for the given storage key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
	// AccessPath returns a consumer-accessible URL for a storage key.
	AccessPath(key string) string
}

// Catalog persists asset records and their variants. GetByID and GetByHash
// return assets with Variants populated.
type Catalog interface {
	GetByID(ctx context.Context, id int64) (Asset, error)
	GetByHash(ctx context.Context, ownerID int64, contentHash string) (Asset, error)
	Create(ctx context.Context, asset Asset) (Asset, error)
	AddVariant(ctx context.Context, assetID int64, variant Variant) error
	Delete(ctx context.Context, id int64) error
}

// Resolver maps an attachment id and a requested size to a displayable URL.
type Resolver interface {
	ResolveURL(ctx context.Context, id int64, width, height int) (string, error)
}
