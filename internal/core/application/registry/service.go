package registry

import (
	"context"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application/caller"
	"github.com/tdex-network/basketd/internal/core/application/protocol"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
	"golang.org/x/sync/errgroup"
)

// BasketHandler is notified of any registry change that may affect the
// status of the current basket.
type BasketHandler interface {
	TrackStatus(ctx context.Context) error
	DisableBasket(ctx context.Context) error
	RefreshBasket(ctx context.Context) (*domain.Basket, error)
	Current(ctx context.Context) (*domain.Basket, *domain.BasketState, error)
}

// Service is the asset registry. It maps every token to its descriptor and
// keeps saved prices and collateral statuses up to date.
type Service struct {
	repoManager ports.RepoManager
	oracle      ports.Oracle
	protocol    *protocol.Service
	basket      BasketHandler
	clock       ports.Clock

	running atomic.Bool
}

func NewService(
	repoManager ports.RepoManager,
	oracle ports.Oracle,
	protocolSvc *protocol.Service,
	basketHandler BasketHandler,
	clock ports.Clock,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if oracle == nil {
		return nil, fmt.Errorf("missing oracle")
	}
	if protocolSvc == nil {
		return nil, fmt.Errorf("missing protocol service")
	}
	if basketHandler == nil {
		return nil, fmt.Errorf("missing basket handler")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &Service{
		repoManager: repoManager,
		oracle:      oracle,
		protocol:    protocolSvc,
		basket:      basketHandler,
		clock:       clock,
	}, nil
}

// Register adds a new asset at the end of the registration order and
// refreshes it right away.
func (s *Service) Register(ctx context.Context, asset domain.Asset) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	if err := asset.Validate(); err != nil {
		return err
	}

	all, err := s.repo().GetAllAssets(ctx)
	if err != nil {
		return err
	}
	asset.Index = 0
	for _, a := range all {
		if a.ERC20 == asset.ERC20 {
			return domain.ErrAssetAlreadyRegistered
		}
		if a.Index >= asset.Index {
			asset.Index = a.Index + 1
		}
	}
	resetRuntimeFields(&asset)

	s.refreshAsset(ctx, &asset)
	if err := s.repo().AddAsset(ctx, &asset); err != nil {
		return err
	}

	log.Infof("registered asset %s (%s)", asset.Symbol, asset.ERC20)
	return s.basket.TrackStatus(ctx)
}

// SwapRegistered replaces the descriptor of an already registered asset
// preserving its registration order. A constituent of the current basket
// must keep its target unit.
func (s *Service) SwapRegistered(ctx context.Context, asset domain.Asset) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	if err := asset.Validate(); err != nil {
		return err
	}

	prev, err := s.repo().GetAsset(ctx, asset.ERC20)
	if err != nil {
		return err
	}
	b, _, err := s.basket.Current(ctx)
	if err != nil {
		return err
	}
	if b != nil && b.Contains(asset.ERC20) && prev.IsCollateral() {
		if !asset.IsCollateral() ||
			asset.Collateral.TargetName != prev.Collateral.TargetName {
			return fmt.Errorf(
				"%w: target unit of basket constituent can't change",
				domain.ErrInvalidAsset,
			)
		}
	}

	asset.Index = prev.Index
	resetRuntimeFields(&asset)
	s.refreshAsset(ctx, &asset)

	if err := s.repo().UpdateAsset(
		ctx, asset.ERC20, func(_ *domain.Asset) (*domain.Asset, error) {
			return &asset, nil
		},
	); err != nil {
		return err
	}

	log.Infof("swapped asset %s (%s)", asset.Symbol, asset.ERC20)
	return s.basket.TrackStatus(ctx)
}

// Unregister removes the asset. If it was part of the current basket, the
// basket gets disabled and immediately refreshed.
func (s *Service) Unregister(ctx context.Context, erc20 string) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	if _, err := s.repo().GetAsset(ctx, erc20); err != nil {
		return err
	}
	if err := s.repo().DeleteAsset(ctx, erc20); err != nil {
		return err
	}
	log.Infof("unregistered asset %s", erc20)

	b, _, err := s.basket.Current(ctx)
	if err != nil {
		return err
	}
	if b == nil || !b.Contains(erc20) {
		return s.basket.TrackStatus(ctx)
	}

	if err := s.basket.DisableBasket(ctx); err != nil {
		return err
	}
	if _, err := s.basket.RefreshBasket(ctx); err != nil {
		log.WithError(err).Warn("failed to refresh basket after unregistering constituent")
	}
	return nil
}

// Refresh reads the oracle for every registered asset and updates saved
// prices and collateral statuses. Feeds are read concurrently, results are
// applied in registration order.
func (s *Service) Refresh(ctx context.Context) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	all, err := s.repo().GetAllAssets(ctx)
	if err != nil {
		return err
	}
	assets := domain.NewAssetSet(all).List()

	observations := make([]*domain.Observation, len(assets))
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range assets {
		i := i
		eg.Go(func() error {
			observations[i] = s.observe(egCtx, assets[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	now := s.clock.Now()
	for i, a := range assets {
		obs := observations[i]
		if err := s.repo().UpdateAsset(
			ctx, a.ERC20, func(a *domain.Asset) (*domain.Asset, error) {
				a.Refresh(now, obs)
				return a, nil
			},
		); err != nil {
			return err
		}
	}

	return s.basket.TrackStatus(ctx)
}

func (s *Service) ERC20s(ctx context.Context) ([]string, error) {
	set, err := s.Assets(ctx)
	if err != nil {
		return nil, err
	}
	return set.ERC20s(), nil
}

// Assets returns a snapshot of the registry.
func (s *Service) Assets(ctx context.Context) (domain.AssetSet, error) {
	all, err := s.repo().GetAllAssets(ctx)
	if err != nil {
		return domain.AssetSet{}, err
	}
	return domain.NewAssetSet(all), nil
}

func (s *Service) ToAsset(ctx context.Context, erc20 string) (*domain.Asset, error) {
	return s.repo().GetAsset(ctx, erc20)
}

func (s *Service) ToColl(ctx context.Context, erc20 string) (*domain.Asset, error) {
	a, err := s.repo().GetAsset(ctx, erc20)
	if err != nil {
		return nil, err
	}
	if !a.IsCollateral() {
		return nil, domain.ErrNotCollateral
	}
	return a, nil
}

func (s *Service) Price(ctx context.Context, erc20 string) (domain.Price, error) {
	a, err := s.repo().GetAsset(ctx, erc20)
	if err != nil {
		return domain.Price{}, err
	}
	return a.Price(s.clock.Now()), nil
}

func (s *Service) Status(
	ctx context.Context, erc20 string,
) (domain.CollateralStatus, error) {
	a, err := s.repo().GetAsset(ctx, erc20)
	if err != nil {
		return domain.CollateralStatusDisabled, err
	}
	return a.Status(s.clock.Now()), nil
}

// refreshAsset refreshes a descriptor that is about to be stored, seeding
// its exchange rate with the first reading.
func (s *Service) refreshAsset(ctx context.Context, a *domain.Asset) {
	obs := s.observe(ctx, a)
	if obs != nil && a.Collateral != nil && !obs.RefPerTok.IsZero() {
		a.Collateral.RefPerTok = obs.RefPerTok
	}
	a.Refresh(s.clock.Now(), obs)
}

// observe returns nil if any of the feeds of the asset can't be read.
func (s *Service) observe(ctx context.Context, a *domain.Asset) *domain.Observation {
	logger := log.WithField("erc20", a.ERC20).WithField("caller", caller.FromContext(ctx))

	ref, err := s.oracle.Price(ctx, a.Feed)
	if err != nil {
		logger.WithError(err).Debug("failed to read price feed")
		return nil
	}
	obs := &domain.Observation{RefPrice: ref.Price, Timestamp: ref.Timestamp}

	c := a.Collateral
	if c == nil {
		return obs
	}
	if c.TargetFeed != "" {
		target, err := s.oracle.Price(ctx, c.TargetFeed)
		if err != nil {
			logger.WithError(err).Debug("failed to read target feed")
			return nil
		}
		obs.TargetPrice = target.Price
		if target.Timestamp < obs.Timestamp {
			obs.Timestamp = target.Timestamp
		}
	}
	if c.RateFeed != "" {
		rate, err := s.oracle.Price(ctx, c.RateFeed)
		if err != nil {
			logger.WithError(err).Debug("failed to read rate feed")
			return nil
		}
		obs.RefPerTok = rate.Price
	}
	return obs
}

func (s *Service) repo() domain.AssetRepository {
	return s.repoManager.AssetRepository()
}

func (s *Service) enter() error {
	if !s.running.CompareAndSwap(false, true) {
		return domain.ErrReentrant
	}
	return nil
}

func (s *Service) exit() {
	s.running.Store(false)
}

func resetRuntimeFields(a *domain.Asset) {
	a.SavedLow, a.SavedHigh, a.LastSave = fixed.Zero, fixed.Zero, 0
	if a.Collateral != nil {
		c := *a.Collateral
		a.Collateral = &c
		c.WhenDefault = domain.NeverDefault
		if c.RefPerTok.IsZero() {
			c.RefPerTok = fixed.One
		}
		c.PegPrice = fixed.Zero
	}
}
