package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/memohai/avatar/internal/db"
)

const assetColumns = `id, owner_id, content_hash, mime, size_bytes, storage_key, original_name, width, height, created_at`

// PGCatalog stores assets in media_assets and media_variants.
type PGCatalog struct {
	conn db.DBTX
}

func NewPGCatalog(conn db.DBTX) *PGCatalog {
	return &PGCatalog{conn: conn}
}

func (c *PGCatalog) GetByID(ctx context.Context, id int64) (Asset, error) {
	row := c.conn.QueryRow(ctx, `SELECT `+assetColumns+` FROM media_assets WHERE id = $1`, id)
	return c.withVariants(ctx, row)
}

func (c *PGCatalog) GetByHash(ctx context.Context, ownerID int64, contentHash string) (Asset, error) {
	row := c.conn.QueryRow(ctx,
		`SELECT `+assetColumns+` FROM media_assets WHERE owner_id = $1 AND content_hash = $2`,
		ownerID, contentHash,
	)
	return c.withVariants(ctx, row)
}

func (c *PGCatalog) Create(ctx context.Context, a Asset) (Asset, error) {
	row := c.conn.QueryRow(ctx,
		`INSERT INTO media_assets (owner_id, content_hash, mime, size_bytes, storage_key, original_name, width, height)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+assetColumns,
		a.OwnerID, a.ContentHash, a.Mime, a.SizeBytes, a.StorageKey, a.OriginalName, a.Width, a.Height,
	)
	return scanAsset(row)
}

func (c *PGCatalog) AddVariant(ctx context.Context, assetID int64, v Variant) error {
	_, err := c.conn.Exec(ctx,
		`INSERT INTO media_variants (asset_id, width, height, storage_key)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (asset_id, width, height) DO UPDATE SET storage_key = EXCLUDED.storage_key`,
		assetID, v.Width, v.Height, v.StorageKey,
	)
	return err
}

func (c *PGCatalog) Delete(ctx context.Context, id int64) error {
	tag, err := c.conn.Exec(ctx, `DELETE FROM media_assets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAssetNotFound
	}
	return nil
}

func (c *PGCatalog) withVariants(ctx context.Context, row pgx.Row) (Asset, error) {
	asset, err := scanAsset(row)
	if err != nil {
		return Asset{}, err
	}
	rows, err := c.conn.Query(ctx,
		`SELECT width, height, storage_key FROM media_variants WHERE asset_id = $1 ORDER BY width, height`,
		asset.ID,
	)
	if err != nil {
		return Asset{}, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v Variant
		if err := rows.Scan(&v.Width, &v.Height, &v.StorageKey); err != nil {
			return Asset{}, fmt.Errorf("scan variant: %w", err)
		}
		asset.Variants = append(asset.Variants, v)
	}
	if err := rows.Err(); err != nil {
		return Asset{}, fmt.Errorf("iterate variants: %w", err)
	}
	return asset, nil
}

func scanAsset(row pgx.Row) (Asset, error) {
	var a Asset
	err := row.Scan(&a.ID, &a.OwnerID, &a.ContentHash, &a.Mime, &a.SizeBytes, &a.StorageKey, &a.OriginalName, &a.Width, &a.Height, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Asset{}, ErrAssetNotFound
		}
		return Asset{}, fmt.Errorf("get asset: %w", err)
	}
	return a, nil
}
