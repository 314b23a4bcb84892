package main

import (
	"context"
	"errors"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/hngo-dev/meshmart-backend/pkg/config"
	"github.com/hngo-dev/meshmart-backend/pkg/db/models"
	"github.com/hngo-dev/meshmart-backend/pkg/logger"
)

const (
	defaultBatchSize      = 100
	defaultPollInterval   = 5 * time.Second
	defaultPublishTimeout = 15 * time.Second
)

type outboxRepository interface {
	FetchUnpublished(limit int) ([]models.OutboxEvent, error)
	MarkPublished(id uuid.UUID) error
	MarkFailed(id uuid.UUID, cause error) error
}

type publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type gcpPublisher struct {
	inner *gcppubsub.Publisher
}

func (p gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return p.inner.Publish(ctx, msg)
}

// ServiceParams configure the relay that drains the outbox into Pub/Sub.
type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Repository outboxRepository
	Publisher  publisher
}

// Service polls the outbox table and publishes pending rows, marking each
// published or failed. Rows that fail stay pending and are retried on the
// next poll with their attempt counter bumped.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	repo         outboxRepository
	pub          publisher
	batchSize    int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Publisher == nil {
		return nil, errors.New("publisher is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	poll := params.Config.Outbox.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		repo:         params.Repository,
		pub:          params.Publisher,
		batchSize:    batch,
		pollInterval: poll,
	}, nil
}

// Run drains the outbox until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if err := s.drainOnce(ctx); err != nil {
			s.logg.Error(ctx, "outbox drain cycle failed", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Service) drainOnce(ctx context.Context) error {
	events, err := s.repo.FetchUnpublished(s.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := 0
	for _, event := range events {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.publishOne(ctx, event); err != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"outbox_id":  event.ID.String(),
				"event_type": event.EventType,
				"attempts":   event.Attempts + 1,
			})
			s.logg.Error(logCtx, "failed to publish outbox event", err)
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				s.logg.Error(logCtx, "failed to record publish failure", markErr)
			}
			continue
		}
		if err := s.repo.MarkPublished(event.ID); err != nil {
			// The event went out but the row stayed pending, so the next
			// cycle will publish a duplicate. Consumers must be idempotent.
			s.logg.Error(ctx, "failed to mark outbox event published", err)
			continue
		}
		published++
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"fetched":   len(events),
		"published": published,
	})
	s.logg.Info(logCtx, "outbox drain cycle complete")
	return nil
}

func (s *Service) publishOne(ctx context.Context, event models.OutboxEvent) error {
	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()

	result := s.pub.Publish(publishCtx, &gcppubsub.Message{
		Data: event.Payload,
		Attributes: map[string]string{
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   event.AggregateID.String(),
		},
	})
	_, err := result.Get(publishCtx)
	return err
}
