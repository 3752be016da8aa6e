package domain

import "context"

// AssetRepository is the abstraction for any kind of database intended to
// persist the registered assets.
type AssetRepository interface {
	// AddAsset registers a new asset. It fails if one with the same erc20
	// already exists.
	AddAsset(ctx context.Context, asset *Asset) error
	// GetAsset returns the asset with the given erc20.
	GetAsset(ctx context.Context, erc20 string) (*Asset, error)
	// GetAllAssets returns the registered assets sorted by registration order.
	GetAllAssets(ctx context.Context) ([]*Asset, error)
	// UpdateAsset allows to commit multiple changes to the same asset in a
	// transactional way.
	UpdateAsset(
		ctx context.Context,
		erc20 string,
		updateFn func(a *Asset) (*Asset, error),
	) error
	// DeleteAsset unregisters the asset.
	DeleteAsset(ctx context.Context, erc20 string) error
}
