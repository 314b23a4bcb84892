package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

type stubRolloverRepo struct {
	sellerSince time.Time
	adminSince  time.Time
	sellerErr   error
	adminErr    error
}

func (s *stubRolloverRepo) RecomputeSellerMonthlyEarnings(ctx context.Context, since time.Time) (int64, error) {
	s.sellerSince = since
	return 3, s.sellerErr
}

func (s *stubRolloverRepo) RecomputeAdminMonthlyEarnings(ctx context.Context, since time.Time) error {
	s.adminSince = since
	return s.adminErr
}

func TestWalletRolloverRecomputesFromMonthStart(t *testing.T) {
	repo := &stubRolloverRepo{}
	job, err := NewWalletRolloverJob(WalletRolloverJobParams{Logger: testLogger(), Repository: repo})
	require.NoError(t, err)

	fixed := time.Date(2026, time.March, 17, 9, 30, 0, 0, time.UTC)
	job.(*walletRolloverJob).now = func() time.Time { return fixed }

	require.NoError(t, job.Run(context.Background()))

	monthStart := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monthStart, repo.sellerSince)
	assert.Equal(t, monthStart, repo.adminSince)
}

func TestWalletRolloverPropagatesErrors(t *testing.T) {
	repo := &stubRolloverRepo{sellerErr: errors.New("db down")}
	job, err := NewWalletRolloverJob(WalletRolloverJobParams{Logger: testLogger(), Repository: repo})
	require.NoError(t, err)

	err = job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seller wallet rollover")
	assert.True(t, repo.adminSince.IsZero(), "admin recompute must not run after a seller failure")
}

type stubRetentionRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (s *stubRetentionRepo) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func TestOutboxRetentionUsesConfiguredWindow(t *testing.T) {
	repo := &stubRetentionRepo{deleted: 12}
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		Repository: repo,
		Retention:  48 * time.Hour,
	})
	require.NoError(t, err)

	fixed := time.Date(2026, time.March, 17, 12, 0, 0, 0, time.UTC)
	job.(*outboxRetentionJob).now = func() time.Time { return fixed }

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, fixed.Add(-48*time.Hour), repo.cutoff)
}

func TestOutboxRetentionDefaultsWindow(t *testing.T) {
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		Repository: &stubRetentionRepo{},
	})
	require.NoError(t, err)
	assert.Equal(t, defaultOutboxRetention, job.(*outboxRetentionJob).retention)
}

func TestRegistrySkipsNilJobs(t *testing.T) {
	job, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     testLogger(),
		Repository: &stubRetentionRepo{},
	})
	require.NoError(t, err)

	registry := NewRegistry(nil, job, nil)
	require.Len(t, registry.Jobs(), 1)
	assert.Equal(t, "outbox-retention", registry.Jobs()[0].Name())

	registry.Register(nil)
	registry.Register(job)
	assert.Len(t, registry.Jobs(), 2)
}

type countingJob struct {
	name string
	runs int
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

type stubLock struct {
	acquired bool
	acquires int
	releases int
}

func (l *stubLock) Acquire(ctx context.Context) (bool, error) {
	l.acquires++
	return l.acquired, nil
}

func (l *stubLock) Release(ctx context.Context) error {
	l.releases++
	return nil
}

func TestRunCycleRunsAllJobsWhenLockHeld(t *testing.T) {
	first := &countingJob{name: "first"}
	second := &countingJob{name: "second", err: errors.New("boom")}
	third := &countingJob{name: "third"}
	lock := &stubLock{acquired: true}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(first, second, third),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))

	assert.Equal(t, 1, first.runs)
	assert.Equal(t, 1, second.runs)
	assert.Equal(t, 1, third.runs, "a failing job must not stop the rest of the cycle")
	assert.Equal(t, 1, lock.acquires)
	assert.Equal(t, 1, lock.releases)
}

func TestRunCycleSkipsWhenLockBusy(t *testing.T) {
	job := &countingJob{name: "only"}
	lock := &stubLock{acquired: false}

	svc, err := NewService(ServiceParams{
		Logger:   testLogger(),
		Registry: NewRegistry(job),
		Lock:     lock,
	})
	require.NoError(t, err)

	require.NoError(t, svc.runCycle(context.Background()))
	assert.Zero(t, job.runs)
	assert.Zero(t, lock.releases, "an unheld lock must not be released")
}
