// ==============================================================================
// WALLET SERVICE - internal/wallet/service.go
// ==============================================================================
// Package wallet ties the privacy components together behind one facade:
// shielded operations gated by compliance limits, swap execution with
// nullifier bookkeeping and the persisted wallet record.
package wallet

import (
	"context"
	stderrors "errors"
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"umbra/internal/commitment"
	"umbra/internal/compliance"
	"umbra/internal/network"
	"umbra/internal/prover"
	"umbra/internal/shielded"
	"umbra/internal/storage"
	"umbra/internal/swap"
	"umbra/internal/travelrule"
	"umbra/pkg/config"
	"umbra/pkg/domain"
	"umbra/pkg/errors"
	"umbra/pkg/logger"
	"umbra/pkg/validator"
)

const (
	keyWalletData    = "wallet_data"
	keySettings      = "settings"
	keyEncryptedSeed = "encrypted_seed"
)

// Deps are the collaborators of a Service. Store, Builder and Compliance are
// required; the rest may be nil when the caller does not use them.
type Deps struct {
	Store      storage.Store
	Builder    *shielded.Builder
	Fees       *shielded.FeeEstimator
	Swaps      *swap.Engine
	Compliance *compliance.Manager
	TravelRule *travelrule.Manager
}

type Service struct {
	store      storage.Store
	builder    *shielded.Builder
	fees       *shielded.FeeEstimator
	nullifiers *shielded.NullifierRegistry
	swaps      *swap.Engine
	compliance *compliance.Manager
	travelRule *travelrule.Manager
	validate   *validator.Validator
	logger     logger.Logger
}

func NewService(d Deps, log logger.Logger) *Service {
	return &Service{
		store:      d.Store,
		builder:    d.Builder,
		fees:       d.Fees,
		nullifiers: shielded.NewNullifierRegistry(d.Store),
		swaps:      d.Swaps,
		compliance: d.Compliance,
		travelRule: d.TravelRule,
		validate:   validator.New(),
		logger:     log,
	}
}

// Open builds every component from cfg. When reg is non-nil the prover is
// instrumented with metrics registered on it.
func Open(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, log logger.Logger) (*Service, error) {
	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	gateway, err := prover.New(cfg.Prover, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if reg != nil {
		gateway = prover.Instrument(gateway, prover.NewMetrics(reg))
	}

	cm, err := compliance.NewManager(compliance.ConfigFrom(cfg), log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	node := network.NewRPCNode(cfg.Network, log)
	engine := commitment.NewEngine()
	quotes := swap.NewJupiterClient(cfg.Swap.QuoteURL, &http.Client{Timeout: cfg.Swap.Timeout}, log)

	return NewService(Deps{
		Store:      store,
		Builder:    shielded.NewBuilder(node, gateway, engine, log),
		Fees:       shielded.NewFeeEstimator(node),
		Swaps:      swap.NewEngine(quotes, gateway, engine, cfg.Swap, log),
		Compliance: cm,
		TravelRule: travelrule.NewManager(cfg.TravelRule, log),
	}, log), nil
}

func (s *Service) Compliance() *compliance.Manager { return s.compliance }
func (s *Service) TravelRule() *travelrule.Manager { return s.travelRule }
func (s *Service) Swaps() *swap.Engine             { return s.swaps }
func (s *Service) Builder() *shielded.Builder      { return s.builder }

func (s *Service) Close() error {
	return s.store.Close()
}

// ShieldedTransfer checks the daily limit of kyc, builds the transaction and
// records the nullifier of the input note.
func (s *Service) ShieldedTransfer(ctx context.Context, params domain.TransferParams, kyc domain.KYCLevel) (*shielded.Built, error) {
	if err := s.checkLimit(params.Amount, kyc); err != nil {
		return nil, err
	}
	nullifier, err := s.unspentNullifier(ctx, params.InputCommitment)
	if err != nil {
		return nil, err
	}
	built, err := s.builder.BuildTransfer(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.nullifiers.MarkSpent(ctx, nullifier); err != nil {
		return nil, err
	}

	s.logger.Info("Shielded transfer built", map[string]interface{}{
		"commitment": built.Commitment,
		"spent":      nullifier,
		"fee_level":  string(params.FeeLevel.OrDefault()),
	})
	return built, nil
}

// ShieldedDeposit moves public funds into the pool. Deposits are not
// limit-checked.
func (s *Service) ShieldedDeposit(ctx context.Context, params domain.DepositParams) (*shielded.Built, error) {
	built, err := s.builder.BuildDeposit(ctx, params)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Shielded deposit built", map[string]interface{}{
		"commitment": built.Commitment,
	})
	return built, nil
}

func (s *Service) ShieldedWithdrawal(ctx context.Context, params domain.WithdrawalParams, kyc domain.KYCLevel) (*shielded.Built, error) {
	if err := s.checkLimit(params.Amount, kyc); err != nil {
		return nil, err
	}
	nullifier, err := s.unspentNullifier(ctx, params.InputCommitment)
	if err != nil {
		return nil, err
	}
	built, err := s.builder.BuildWithdrawal(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.nullifiers.MarkSpent(ctx, nullifier); err != nil {
		return nil, err
	}

	s.logger.Info("Shielded withdrawal built", map[string]interface{}{
		"commitment": built.Commitment,
		"spent":      nullifier,
	})
	return built, nil
}

// ShieldedSwap executes the swap and records the nullifier of the note
// funding it.
func (s *Service) ShieldedSwap(ctx context.Context, params domain.ShieldedSwapParams) (*domain.ShieldedSwapResult, error) {
	if s.swaps == nil {
		return nil, errors.New(errors.CodeInvalidSwap, "shielded swaps are not configured")
	}
	nullifier, err := s.unspentNullifier(ctx, params.InputCommitment)
	if err != nil {
		return nil, err
	}
	result, err := s.swaps.ExecuteShieldedSwap(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.nullifiers.MarkSpent(ctx, nullifier); err != nil {
		return nil, err
	}
	return result, nil
}

// EstimateFee prices a built transaction at level.
func (s *Service) EstimateFee(ctx context.Context, built *shielded.Built, level domain.FeeLevel) (shielded.FeeEstimate, error) {
	fees := s.fees
	if fees == nil {
		fees = shielded.NewFeeEstimator(nil)
	}
	return fees.EstimateFee(ctx, built.Transaction, level)
}

func (s *Service) IsNullifierSpent(ctx context.Context, nullifier string) (bool, error) {
	return s.nullifiers.IsSpent(ctx, nullifier)
}

// unspentNullifier derives the nullifier of the input note and fails with
// DOUBLE_SPEND when it is already recorded. Recording happens after a
// successful build, so a failed build leaves the note spendable.
func (s *Service) unspentNullifier(ctx context.Context, inputCommitment string) (string, error) {
	if !commitment.Valid(inputCommitment) {
		return "", errors.New(errors.CodeInvalidCommitment, "input note commitment is required")
	}
	nullifier := commitment.NullifierOf(inputCommitment)
	spent, err := s.nullifiers.IsSpent(ctx, nullifier)
	if err != nil {
		return "", err
	}
	if spent {
		return "", errors.Newf(errors.CodeDoubleSpend, "input note %s already spent", inputCommitment)
	}
	return nullifier, nil
}

// checkLimit rejects amounts above the daily limit of kyc. Malformed
// amounts are left to the builder so the caller sees INVALID_AMOUNT.
func (s *Service) checkLimit(amount *big.Int, kyc domain.KYCLevel) error {
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	check := s.compliance.CheckThreshold(amount, kyc, domain.PeriodDaily)
	if check.Allowed {
		return nil
	}
	s.logger.Warn("Shielded operation over compliance limit", map[string]interface{}{
		"amount_usd":   s.compliance.ToUSD(amount).String(),
		"threshold":    check.Threshold.String(),
		"requires_kyc": check.RequiresKYC,
	})
	if !kyc.Verified {
		return errors.New(errors.CodeThresholdExceeded, "verified KYC required for this amount")
	}
	return errors.Newf(errors.CodeThresholdExceeded, "amount exceeds daily limit of %s USD", check.Threshold.String())
}

// SaveWalletData validates and persists the wallet record.
func (s *Service) SaveWalletData(ctx context.Context, data domain.WalletData) error {
	if err := s.validate.Validate(data); err != nil {
		return errors.WithCause(errors.CodeStorageError, "invalid wallet data", err)
	}
	return storage.SetJSON(ctx, s.store, keyWalletData, data)
}

// LoadWalletData returns nil without error when no wallet was saved.
func (s *Service) LoadWalletData(ctx context.Context) (*domain.WalletData, error) {
	var data domain.WalletData
	if err := storage.GetJSON(ctx, s.store, keyWalletData, &data); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &data, nil
}

func (s *Service) SaveSettings(ctx context.Context, settings domain.WalletSettings) error {
	if err := s.validate.Validate(settings); err != nil {
		return errors.WithCause(errors.CodeStorageError, "invalid settings", err)
	}
	return storage.SetJSON(ctx, s.store, keySettings, settings)
}

// LoadSettings falls back to the defaults when nothing was saved.
func (s *Service) LoadSettings(ctx context.Context) (domain.WalletSettings, error) {
	var settings domain.WalletSettings
	if err := storage.GetJSON(ctx, s.store, keySettings, &settings); err != nil {
		if stderrors.Is(err, storage.ErrNotFound) {
			return domain.DefaultWalletSettings(), nil
		}
		return domain.WalletSettings{}, err
	}
	return settings, nil
}

// SaveEncryptedSeed stores a seed the caller has already sealed.
func (s *Service) SaveEncryptedSeed(ctx context.Context, sealed []byte) error {
	return s.store.Set(ctx, keyEncryptedSeed, sealed)
}

func (s *Service) LoadEncryptedSeed(ctx context.Context) ([]byte, error) {
	return s.store.Get(ctx, keyEncryptedSeed)
}

func (s *Service) HasWallet(ctx context.Context) (bool, error) {
	return s.store.HasKey(ctx, keyWalletData)
}

// DeleteWallet removes the wallet record, the sealed seed and the settings.
// Spent nullifiers are kept.
func (s *Service) DeleteWallet(ctx context.Context) error {
	for _, key := range []string{keyWalletData, keyEncryptedSeed, keySettings} {
		if err := s.store.Remove(ctx, key); err != nil {
			return err
		}
	}
	s.logger.Info("Wallet deleted", nil)
	return nil
}
