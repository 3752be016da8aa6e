package basket

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/basketd/internal/core/application/protocol"
	"github.com/tdex-network/basketd/internal/core/application/pubsub"
	"github.com/tdex-network/basketd/internal/core/domain"
	"github.com/tdex-network/basketd/internal/core/ports"
	"github.com/tdex-network/basketd/pkg/fixed"
)

// Service is the basket handler: it owns the prime basket, the backup
// configs and the nonce-versioned history of concrete baskets.
type Service struct {
	repoManager ports.RepoManager
	ledger      ports.TokenLedger
	protocol    *protocol.Service
	pubsub      *pubsub.Service
	clock       ports.Clock

	running atomic.Bool
}

func NewService(
	repoManager ports.RepoManager,
	ledger ports.TokenLedger,
	protocolSvc *protocol.Service,
	pubsubSvc *pubsub.Service,
	clock ports.Clock,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing token ledger")
	}
	if protocolSvc == nil {
		return nil, fmt.Errorf("missing protocol service")
	}
	if pubsubSvc == nil {
		return nil, fmt.Errorf("missing pubsub service")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &Service{
		repoManager: repoManager,
		ledger:      ledger,
		protocol:    protocolSvc,
		pubsub:      pubsubSvc,
		clock:       clock,
	}, nil
}

// Init stores the initial basket state unless one exists already.
func (s *Service) Init(
	ctx context.Context, warmupPeriod int64, reweightable bool,
) error {
	if _, err := s.repo().GetBasketState(ctx); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrStateNotFound) {
		return err
	}
	if err := validateWarmupPeriod(warmupPeriod); err != nil {
		return err
	}

	return s.repo().UpdateBasketState(
		ctx, func(_ *domain.BasketState) (*domain.BasketState, error) {
			return &domain.BasketState{
				Disabled:     true,
				LastStatus:   domain.CollateralStatusDisabled,
				WarmupPeriod: warmupPeriod,
				Reweightable: reweightable,
			}, nil
		},
	)
}

func (s *Service) SetPrimeBasket(
	ctx context.Context, erc20s []string, targetAmts []fixed.Fix,
) error {
	return s.setPrimeBasket(ctx, erc20s, targetAmts, false)
}

// ForceSetPrimeBasket skips the check on the total weights of the target
// units.
func (s *Service) ForceSetPrimeBasket(
	ctx context.Context, erc20s []string, targetAmts []fixed.Fix,
) error {
	return s.setPrimeBasket(ctx, erc20s, targetAmts, true)
}

func (s *Service) SetBackupConfig(
	ctx context.Context, targetName string, max int, erc20s []string,
) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return err
	}
	state, err := s.protocol.GetState(ctx)
	if err != nil {
		return err
	}

	cfg, err := domain.NewBackupConfig(
		targetName, max, erc20s, assets, state.DisallowedCollateral()...,
	)
	if err != nil {
		return err
	}
	if err := s.repo().SetBackupConfig(ctx, cfg); err != nil {
		return err
	}

	log.Infof("backup config set for target %s", targetName)
	s.pubsub.PublishBackupConfigSetEvent(*cfg)
	return nil
}

// RefreshBasket switches to the next concrete basket. Governance can always
// do it, anyone else only when the current basket is DISABLED and issuance
// is neither paused nor frozen.
func (s *Service) RefreshBasket(ctx context.Context) (*domain.Basket, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.exit()

	isGovernance, err := s.protocol.IsGovernance(ctx)
	if err != nil {
		return nil, err
	}
	if !isGovernance {
		paused, err := s.protocol.IsIssuancePausedOrFrozen(ctx)
		if err != nil {
			return nil, err
		}
		if paused {
			return nil, domain.ErrPausedOrFrozen
		}
		status, err := s.status(ctx)
		if err != nil {
			return nil, err
		}
		if status != domain.CollateralStatusDisabled {
			return nil, domain.ErrBasketNotDisabled
		}
	}

	return s.switchBasket(ctx)
}

// DisableBasket marks the current basket as DISABLED. It's invoked when one
// of its constituents gets unregistered.
func (s *Service) DisableBasket(ctx context.Context) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if err := s.repo().UpdateBasketState(
		ctx, func(st *domain.BasketState) (*domain.BasketState, error) {
			st.Disabled = true
			return st, nil
		},
	); err != nil {
		return err
	}

	log.Info("basket disabled")
	return s.trackStatus(ctx)
}

// TrackStatus records the time of the last status change of the basket.
func (s *Service) TrackStatus(ctx context.Context) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	return s.trackStatus(ctx)
}

func (s *Service) SetWarmupPeriod(ctx context.Context, period int64) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	if err := validateWarmupPeriod(period); err != nil {
		return err
	}
	return s.repo().UpdateBasketState(
		ctx, func(st *domain.BasketState) (*domain.BasketState, error) {
			st.WarmupPeriod = period
			return st, nil
		},
	)
}

// Status returns the status of the current basket. It never fails because
// of a defaulted collateral.
func (s *Service) Status(ctx context.Context) (domain.CollateralStatus, error) {
	return s.status(ctx)
}

// IsReady tells whether the basket is SOUND and has been so for at least
// the warmup period.
func (s *Service) IsReady(ctx context.Context) (bool, error) {
	state, err := s.repo().GetBasketState(ctx)
	if err != nil {
		return false, err
	}
	status, err := s.status(ctx)
	if err != nil {
		return false, err
	}
	return status == domain.CollateralStatusSound &&
		state.LastStatus == domain.CollateralStatusSound &&
		s.clock.Now() >= state.LastStatusTimestamp+state.WarmupPeriod, nil
}

// Current returns the current basket along with its state. The basket is
// nil if none was ever switched to.
func (s *Service) Current(
	ctx context.Context,
) (*domain.Basket, *domain.BasketState, error) {
	state, err := s.repo().GetBasketState(ctx)
	if err != nil {
		return nil, nil, err
	}
	if state.Nonce == 0 {
		return nil, state, nil
	}
	b, err := s.repo().GetBasket(ctx, state.Nonce)
	if err != nil {
		return nil, nil, err
	}
	b.Disabled = b.Disabled || state.Disabled
	return b, state, nil
}

func (s *Service) Nonce(ctx context.Context) (uint64, error) {
	state, err := s.repo().GetBasketState(ctx)
	if err != nil {
		return 0, err
	}
	return state.Nonce, nil
}

func (s *Service) Timestamp(ctx context.Context) (int64, error) {
	state, err := s.repo().GetBasketState(ctx)
	if err != nil {
		return 0, err
	}
	return state.Timestamp, nil
}

func (s *Service) GetPrimeBasket(ctx context.Context) (*domain.PrimeBasket, error) {
	return s.repo().GetPrimeBasket(ctx)
}

func (s *Service) GetBackupConfigs(
	ctx context.Context,
) (map[string]*domain.BackupConfig, error) {
	return s.repo().GetBackupConfigs(ctx)
}

func (s *Service) GetHistoricalBasket(
	ctx context.Context, nonce uint64,
) (*domain.Basket, error) {
	b, err := s.repo().GetBasket(ctx, nonce)
	if err != nil {
		if errors.Is(err, domain.ErrBasketNotFound) {
			return nil, domain.ErrInvalidNonce
		}
		return nil, err
	}
	return b, nil
}

// Quantity returns the amount of erc20 needed per basket unit.
func (s *Service) Quantity(ctx context.Context, erc20 string) (fixed.Fix, error) {
	b, _, err := s.Current(ctx)
	if err != nil || b == nil {
		return fixed.Zero, err
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return fixed.Zero, err
	}
	return b.Quantity(erc20, assets, fixed.Ceil), nil
}

func (s *Service) Quote(
	ctx context.Context, amount fixed.Fix, rnd fixed.RoundingMode,
	useIssuancePremium bool,
) ([]string, []fixed.Fix, error) {
	b, _, err := s.Current(ctx)
	if err != nil {
		return nil, nil, err
	}
	if b == nil {
		return []string{}, []fixed.Fix{}, nil
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return nil, nil, err
	}
	erc20s, quantities := b.Quote(amount, rnd, useIssuancePremium, assets)
	return erc20s, quantities, nil
}

// Price returns the low and high value of one basket unit. With
// useHighEstimate quantities include the issuance premium.
func (s *Service) Price(
	ctx context.Context, useHighEstimate bool,
) (domain.Price, error) {
	b, _, err := s.Current(ctx)
	if err != nil {
		return domain.Price{}, err
	}
	if b == nil {
		return domain.Unpriced(), nil
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return domain.Price{}, err
	}
	return b.Price(assets, s.clock.Now(), useHighEstimate), nil
}

func (s *Service) BasketsHeldBy(
	ctx context.Context, account string,
) (domain.BasketRange, error) {
	zero := domain.BasketRange{Bottom: fixed.Zero, Top: fixed.Zero}
	b, _, err := s.Current(ctx)
	if err != nil {
		return zero, err
	}
	if b == nil {
		return zero, nil
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return zero, err
	}

	balances, err := s.balancesOf(ctx, account)
	if err != nil {
		return zero, err
	}
	return b.BasketsHeldBy(balances, assets), nil
}

// FullyCollateralized tells whether the backing manager holds at least the
// baskets needed by the issued token.
func (s *Service) FullyCollateralized(ctx context.Context) (bool, error) {
	held, err := s.BasketsHeldBy(ctx, domain.BackingManagerAccount)
	if err != nil {
		return false, err
	}
	needed, err := s.protocol.BasketsNeeded(ctx)
	if err != nil {
		return false, err
	}
	return held.Bottom.Gte(needed), nil
}

func (s *Service) QuoteCustomRedemption(
	ctx context.Context, nonces []uint64, portions []fixed.Fix, amount fixed.Fix,
) ([]string, []fixed.Fix, error) {
	baskets := make([]*domain.Basket, 0, len(nonces))
	for _, nonce := range nonces {
		b, err := s.GetHistoricalBasket(ctx, nonce)
		if err != nil {
			return nil, nil, err
		}
		baskets = append(baskets, b)
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return nil, nil, err
	}
	return domain.QuoteCustomRedemption(baskets, portions, amount, assets)
}

func (s *Service) setPrimeBasket(
	ctx context.Context, erc20s []string, targetAmts []fixed.Fix, force bool,
) error {
	if err := s.enter(); err != nil {
		return err
	}
	defer s.exit()

	if err := s.protocol.RequireGovernance(ctx); err != nil {
		return err
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return err
	}
	protocolState, err := s.protocol.GetState(ctx)
	if err != nil {
		return err
	}
	basketState, err := s.repo().GetBasketState(ctx)
	if err != nil {
		return err
	}

	next, err := domain.NewPrimeBasket(
		erc20s, targetAmts, assets, protocolState.DisallowedCollateral()...,
	)
	if err != nil {
		return err
	}
	prev, err := s.repo().GetPrimeBasket(ctx)
	if err != nil {
		return err
	}
	if !prev.IsEmpty() {
		if err := prev.ValidateSuccessor(
			next, basketState.Reweightable, force,
		); err != nil {
			return err
		}
	}

	if err := s.repo().SetPrimeBasket(ctx, next); err != nil {
		return err
	}

	log.Infof("prime basket set with %d entries", len(next.Entries))
	s.pubsub.PublishPrimeBasketSetEvent(*next)
	return nil
}

func (s *Service) switchBasket(ctx context.Context) (*domain.Basket, error) {
	prime, err := s.repo().GetPrimeBasket(ctx)
	if err != nil {
		return nil, err
	}
	if prime.IsEmpty() {
		return nil, domain.ErrNoPrimeBasket
	}
	backups, err := s.repo().GetBackupConfigs(ctx)
	if err != nil {
		return nil, err
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	erc20s, refAmts, ok := domain.NextBasket(prime, backups, assets, now)
	b := &domain.Basket{
		ERC20s:    erc20s,
		RefAmts:   refAmts,
		Disabled:  !ok,
		Timestamp: now,
	}

	nonce, err := s.repo().AddBasket(ctx, b)
	if err != nil {
		return nil, err
	}
	b.Nonce = nonce

	if err := s.repo().UpdateBasketState(
		ctx, func(st *domain.BasketState) (*domain.BasketState, error) {
			st.Nonce = nonce
			st.Disabled = b.Disabled
			st.Timestamp = now
			return st, nil
		},
	); err != nil {
		return nil, err
	}

	if b.Disabled {
		log.Warnf("switched to basket %d, which is disabled", nonce)
	} else {
		log.Infof("switched to basket %d", nonce)
	}
	s.pubsub.PublishBasketSetEvent(*b)

	if err := s.trackStatus(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) trackStatus(ctx context.Context) error {
	status, err := s.status(ctx)
	if err != nil {
		return err
	}

	var prev domain.CollateralStatus
	changed := false
	now := s.clock.Now()
	if err := s.repo().UpdateBasketState(
		ctx, func(st *domain.BasketState) (*domain.BasketState, error) {
			if st.LastStatus == status && st.LastStatusTimestamp > 0 {
				return st, nil
			}
			prev = st.LastStatus
			changed = st.LastStatus != status
			st.LastStatus = status
			st.LastStatusTimestamp = now
			return st, nil
		},
	); err != nil {
		return err
	}

	if changed {
		log.Infof("basket status changed from %s to %s", prev, status)
		s.pubsub.PublishBasketStatusChangedEvent(prev, status)
	}
	return nil
}

func (s *Service) status(ctx context.Context) (domain.CollateralStatus, error) {
	b, _, err := s.Current(ctx)
	if err != nil {
		return domain.CollateralStatusDisabled, err
	}
	if b == nil {
		return domain.CollateralStatusDisabled, nil
	}
	assets, err := s.assets(ctx)
	if err != nil {
		return domain.CollateralStatusDisabled, err
	}
	return b.Status(assets, s.clock.Now()), nil
}

func (s *Service) assets(ctx context.Context) (domain.AssetSet, error) {
	list, err := s.repoManager.AssetRepository().GetAllAssets(ctx)
	if err != nil {
		return domain.AssetSet{}, err
	}
	return domain.NewAssetSet(list), nil
}

func (s *Service) balancesOf(
	ctx context.Context, account string,
) (domain.BalanceFunc, error) {
	balances, err := s.ledger.Balances(ctx, account)
	if err != nil {
		return nil, err
	}
	byToken := make(map[string]fixed.Fix, len(balances))
	for _, b := range balances {
		byToken[b.Token] = b.Amount
	}
	return func(erc20 string) fixed.Fix {
		return byToken[erc20]
	}, nil
}

func (s *Service) repo() domain.BasketRepository {
	return s.repoManager.BasketRepository()
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

func validateWarmupPeriod(period int64) error {
	if period < domain.MinWarmupPeriod || period > domain.MaxWarmupPeriod {
		return fmt.Errorf("%w: invalid warmupPeriod", domain.ErrOutOfRange)
	}
	return nil
}
