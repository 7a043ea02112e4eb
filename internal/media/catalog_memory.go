package media

import (
	"context"
	"sync"
	"time"
)

// MemoryCatalog is an in-process Catalog.
type MemoryCatalog struct {
	mu     sync.RWMutex
	nextID int64
	assets map[int64]Asset
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{assets: map[int64]Asset{}}
}

func (c *MemoryCatalog) GetByID(_ context.Context, id int64) (Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.assets[id]
	if !ok {
		return Asset{}, ErrAssetNotFound
	}
	return cloneAsset(a), nil
}

func (c *MemoryCatalog) GetByHash(_ context.Context, ownerID int64, contentHash string) (Asset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.assets {
		if a.OwnerID == ownerID && a.ContentHash == contentHash {
			return cloneAsset(a), nil
		}
	}
	return Asset{}, ErrAssetNotFound
}

// Create assigns the next id unless a.ID is already set.
func (c *MemoryCatalog) Create(_ context.Context, a Asset) (Asset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if a.ID <= 0 {
		c.nextID++
		a.ID = c.nextID
	} else if a.ID > c.nextID {
		c.nextID = a.ID
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	c.assets[a.ID] = cloneAsset(a)
	return a, nil
}

func (c *MemoryCatalog) AddVariant(_ context.Context, assetID int64, v Variant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.assets[assetID]
	if !ok {
		return ErrAssetNotFound
	}
	for i, existing := range a.Variants {
		if existing.Width == v.Width && existing.Height == v.Height {
			a.Variants[i] = v
			c.assets[assetID] = a
			return nil
		}
	}
	a.Variants = append(a.Variants, v)
	c.assets[assetID] = a
	return nil
}

func (c *MemoryCatalog) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.assets[id]; !ok {
		return ErrAssetNotFound
	}
	delete(c.assets, id)
	return nil
}

func cloneAsset(a Asset) Asset {
	if a.Variants != nil {
		a.Variants = append([]Variant(nil), a.Variants...)
	}
	return a
}
