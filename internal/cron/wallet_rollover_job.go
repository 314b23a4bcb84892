package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

type walletRolloverRepo interface {
	RecomputeSellerMonthlyEarnings(ctx context.Context, since time.Time) (int64, error)
	RecomputeAdminMonthlyEarnings(ctx context.Context, since time.Time) error
}

// WalletRolloverJobParams configure the monthly earnings rollover job.
type WalletRolloverJobParams struct {
	Logger     *logger.Logger
	Repository walletRolloverRepo
}

// NewWalletRolloverJob builds the job that keeps this-month earnings
// counters aligned with the current calendar month.
func NewWalletRolloverJob(params WalletRolloverJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &walletRolloverJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type walletRolloverJob struct {
	logg *logger.Logger
	repo walletRolloverRepo
	now  func() time.Time
}

func (j *walletRolloverJob) Name() string { return "wallet-monthly-rollover" }

// Run recomputes every wallet's this-month counter from the ledger rows
// created since the start of the current calendar month. Settlement bumps
// the counter incrementally; this job handles the month boundary and heals
// any drift.
func (j *walletRolloverJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	updated, err := j.repo.RecomputeSellerMonthlyEarnings(ctx, monthStart)
	if err != nil {
		return fmt.Errorf("seller wallet rollover: %w", err)
	}
	if err := j.repo.RecomputeAdminMonthlyEarnings(ctx, monthStart); err != nil {
		return fmt.Errorf("admin wallet rollover: %w", err)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"month_start":     monthStart,
		"wallets_updated": updated,
	})
	j.logg.Info(logCtx, "wallet monthly rollover complete")
	return nil
}
