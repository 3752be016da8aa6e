package domain

import "sort"

// AssetSet is a snapshot of the registry, sorted by registration order.
type AssetSet struct {
	list  []*Asset
	index map[string]*Asset
}

// NewAssetSet sorts the given assets by registration order.
func NewAssetSet(assets []*Asset) AssetSet {
	list := make([]*Asset, len(assets))
	copy(list, assets)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Index < list[j].Index
	})

	index := make(map[string]*Asset, len(list))
	for _, a := range list {
		index[a.ERC20] = a
	}
	return AssetSet{list, index}
}

// Get returns the asset for the given erc20, or nil.
func (s AssetSet) Get(erc20 string) *Asset {
	return s.index[erc20]
}

// Collateral returns the asset only if it is a collateral.
func (s AssetSet) Collateral(erc20 string) (*Asset, bool) {
	a := s.index[erc20]
	if a == nil || !a.IsCollateral() {
		return nil, false
	}
	return a, true
}

// List returns the assets in registration order.
func (s AssetSet) List() []*Asset {
	return s.list
}

// ERC20s returns the registered erc20s in registration order.
func (s AssetSet) ERC20s() []string {
	erc20s := make([]string, 0, len(s.list))
	for _, a := range s.list {
		erc20s = append(erc20s, a.ERC20)
	}
	return erc20s
}
