package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/tdex-network/basketd/internal/core/domain"
)

type assetRepositoryImpl struct {
	assets map[string]*domain.Asset
	locker *sync.RWMutex
}

// NewAssetRepositoryImpl returns a new empty inmemory AssetRepository.
func NewAssetRepositoryImpl() domain.AssetRepository {
	return &assetRepositoryImpl{
		assets: make(map[string]*domain.Asset),
		locker: &sync.RWMutex{},
	}
}

func (r *assetRepositoryImpl) AddAsset(_ context.Context, asset *domain.Asset) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.assets[asset.ERC20]; ok {
		return domain.ErrAssetAlreadyRegistered
	}
	r.assets[asset.ERC20] = copyAsset(asset)
	return nil
}

func (r *assetRepositoryImpl) GetAsset(_ context.Context, erc20 string) (*domain.Asset, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	a, ok := r.assets[erc20]
	if !ok {
		return nil, domain.ErrAssetNotFound
	}
	return copyAsset(a), nil
}

func (r *assetRepositoryImpl) GetAllAssets(_ context.Context) ([]*domain.Asset, error) {
	r.locker.RLock()
	defer r.locker.RUnlock()

	assets := make([]*domain.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		assets = append(assets, copyAsset(a))
	}
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Index < assets[j].Index
	})
	return assets, nil
}

func (r *assetRepositoryImpl) UpdateAsset(
	_ context.Context,
	erc20 string,
	updateFn func(a *domain.Asset) (*domain.Asset, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	a, ok := r.assets[erc20]
	if !ok {
		return domain.ErrAssetNotFound
	}
	updated, err := updateFn(copyAsset(a))
	if err != nil {
		return err
	}
	r.assets[erc20] = copyAsset(updated)
	return nil
}

func (r *assetRepositoryImpl) DeleteAsset(_ context.Context, erc20 string) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if _, ok := r.assets[erc20]; !ok {
		return domain.ErrAssetNotFound
	}
	delete(r.assets, erc20)
	return nil
}
