package dbbadger

import (
	"context"
	"sort"

	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type assetRepositoryImpl struct {
	store *badgerhold.Store
}

// NewAssetRepositoryImpl returns a badger implementation of
// domain.AssetRepository.
func NewAssetRepositoryImpl(store *badgerhold.Store) domain.AssetRepository {
	return &assetRepositoryImpl{store}
}

func (r *assetRepositoryImpl) AddAsset(_ context.Context, asset *domain.Asset) error {
	if err := r.store.Insert(asset.ERC20, *asset); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrAssetAlreadyRegistered
		}
		return err
	}
	return nil
}

func (r *assetRepositoryImpl) GetAsset(_ context.Context, erc20 string) (*domain.Asset, error) {
	var asset domain.Asset
	if err := r.store.Get(erc20, &asset); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepositoryImpl) GetAllAssets(_ context.Context) ([]*domain.Asset, error) {
	var list []domain.Asset
	if err := r.store.Find(&list, nil); err != nil {
		return nil, err
	}

	assets := make([]*domain.Asset, 0, len(list))
	for i := range list {
		assets = append(assets, &list[i])
	}
	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].Index < assets[j].Index
	})
	return assets, nil
}

func (r *assetRepositoryImpl) UpdateAsset(
	ctx context.Context,
	erc20 string,
	updateFn func(a *domain.Asset) (*domain.Asset, error),
) error {
	asset, err := r.GetAsset(ctx, erc20)
	if err != nil {
		return err
	}
	updated, err := updateFn(asset)
	if err != nil {
		return err
	}
	return r.store.Update(erc20, *updated)
}

func (r *assetRepositoryImpl) DeleteAsset(_ context.Context, erc20 string) error {
	if err := r.store.Delete(erc20, domain.Asset{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrAssetNotFound
		}
		return err
	}
	return nil
}
