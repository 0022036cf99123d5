package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/angelmondragon/recruitdesk-backend/pkg/config"
	"github.com/angelmondragon/recruitdesk-backend/pkg/db/models"
	"github.com/angelmondragon/recruitdesk-backend/pkg/logger"
	"github.com/angelmondragon/recruitdesk-backend/pkg/metrics"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox"
	"github.com/angelmondragon/recruitdesk-backend/pkg/outbox/registry"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultPublishTimeout = 15 * time.Second
	defaultMaxAttempts    = 10
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

// verdict is what happened to one outbox row after a publish attempt.
type verdict int

const (
	verdictPublished verdict = iota
	verdictRetry
	verdictUnroutable
	verdictExhausted
)

func (v verdict) String() string {
	switch v {
	case verdictPublished:
		return "published"
	case verdictRetry:
		return "retry"
	case verdictUnroutable:
		return "non_retryable"
	case verdictExhausted:
		return "max_attempts"
	}
	return "unknown"
}

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type pubSubClient interface {
	Ping(context.Context) error
	Publisher(name string) *gcppubsub.Publisher
}

type outboxRepository interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type registryResolver interface {
	Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error)
}

type publishMetrics interface {
	IncPublished()
	IncFailed(eventType string)
}

type publisherFactory func(topic string) publisher

type publisher interface {
	Publish(context.Context, *gcppubsub.Message) publishResult
}

type publishResult interface {
	Get(context.Context) (string, error)
}

type ServiceParams struct {
	Config           *config.Config
	Logger           *logger.Logger
	DB               dbClient
	PubSub           pubSubClient
	Repository       outboxRepository
	Registry         registryResolver
	Metrics          publishMetrics
	PublisherFactory publisherFactory
}

// Service moves recruitment events from the outbox table onto Pub/Sub. A row
// that can never be delivered has its attempt count pushed to the ceiling so
// the fetch query skips it; it stays in the table for inspection.
type Service struct {
	cfg              *config.Config
	logg             *logger.Logger
	db               dbClient
	repo             outboxRepository
	pubsub           pubSubClient
	registry         registryResolver
	metrics          publishMetrics
	publisherFactory publisherFactory
	batchSize        int
	maxAttempts      int
	pollInterval     time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	var missing error
	for _, dep := range []struct {
		name   string
		absent bool
	}{
		{"config", params.Config == nil},
		{"logger", params.Logger == nil},
		{"database client", params.DB == nil},
		{"pubsub client", params.PubSub == nil},
		{"outbox repository", params.Repository == nil},
		{"event registry", params.Registry == nil},
	} {
		if dep.absent {
			missing = multierr.Append(missing, fmt.Errorf("%s is required", dep.name))
		}
	}
	if missing != nil {
		return nil, missing
	}

	counters := params.Metrics
	if counters == nil {
		counters = metrics.NewOutboxMetrics(nil)
	}
	factory := params.PublisherFactory
	if factory == nil {
		factory = cachedPublishers(params.PubSub)
	}

	outboxCfg := params.Config.Outbox
	return &Service{
		cfg:              params.Config,
		logg:             params.Logger,
		db:               params.DB,
		repo:             params.Repository,
		pubsub:           params.PubSub,
		registry:         params.Registry,
		metrics:          counters,
		publisherFactory: factory,
		batchSize:        positiveOr(outboxCfg.BatchSize, defaultBatchSize),
		maxAttempts:      positiveOr(outboxCfg.MaxAttempts, defaultMaxAttempts),
		pollInterval:     time.Duration(positiveOr(outboxCfg.PollIntervalMS, defaultPollMs)) * time.Millisecond,
	}, nil
}

// cachedPublishers opens one ordered publisher per topic on first use.
func cachedPublishers(client pubSubClient) publisherFactory {
	byTopic := map[string]publisher{}
	return func(topic string) publisher {
		if pub, ok := byTopic[topic]; ok {
			return pub
		}
		pub := newGCPPublisher(client.Publisher(topic))
		if pub != nil {
			byTopic[topic] = pub
		}
		return pub
	}
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	checks := []struct {
		name string
		ping func(context.Context) error
	}{
		{"database", s.db.Ping},
		{"pubsub", s.pubsub.Ping},
	}
	for _, check := range checks {
		if err := check.ping(ctx); err != nil {
			s.logg.Error(ctx, check.name+" not reachable", err)
			return fmt.Errorf("%s ping failed: %w", check.name, err)
		}
	}
	return nil
}

// Run polls until ctx is cancelled. After a batch that found rows it polls
// again at once. A failing batch backs off exponentially up to maxBackoff.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	interval := s.pollInterval
	if interval <= 0 {
		interval = time.Duration(defaultPollMs) * time.Millisecond
	}
	backoff := interval

	for ctx.Err() == nil {
		processed, err := s.processBatch(ctx)
		var wait time.Duration
		switch {
		case err != nil:
			s.logg.Error(ctx, "outbox batch failed", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			wait = withJitter(backoff)
		case processed:
			backoff = interval
			continue
		default:
			backoff = interval
			wait = withJitter(interval)
		}
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
	}
	s.logg.Info(ctx, "outbox publisher context canceled")
	return ctx.Err()
}

// Drain publishes batches until the outbox is empty or maxBatches have run.
// A failed delivery stays in the outbox for the next poll, so a drain over a
// broken topic stops at maxBatches rather than spinning.
func (s *Service) Drain(ctx context.Context, maxBatches int) (int, error) {
	if err := s.ensureReadiness(ctx); err != nil {
		return 0, err
	}
	if maxBatches <= 0 {
		maxBatches = 1
	}
	batches := 0
	for batches < maxBatches {
		if err := ctx.Err(); err != nil {
			return batches, err
		}
		processed, err := s.processBatch(ctx)
		if err != nil {
			return batches, err
		}
		if !processed {
			break
		}
		batches++
	}
	return batches, nil
}

// processBatch publishes one batch inside a transaction. Rows are fetched in
// creation order, so events for one assignment leave in the order they were
// recorded. Any bookkeeping failure rolls the whole batch back.
func (s *Service) processBatch(ctx context.Context) (bool, error) {
	var fetched int
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := s.repo.FetchUnpublishedForPublish(tx, s.batchSize, s.maxAttempts)
		if err != nil {
			return err
		}
		fetched = len(events)
		for _, event := range events {
			if err := s.settle(ctx, tx, event, s.attempt(ctx, event)); err != nil {
				return err
			}
		}
		return nil
	})
	return fetched > 0, err
}

type attemptResult struct {
	verdict verdict
	cause   error
	fields  map[string]any
}

// attempt resolves and publishes one row and classifies the result. It never
// touches the database.
func (s *Service) attempt(ctx context.Context, event models.OutboxEvent) attemptResult {
	resolved, err := s.registry.Resolve(event)
	if err != nil {
		return attemptResult{verdictUnroutable, err, s.eventFields(event, nil)}
	}
	fields := s.eventFields(event, resolved)

	pubErr := s.publish(ctx, event, resolved)
	if pubErr == nil {
		return attemptResult{verdictPublished, nil, fields}
	}
	s.metrics.IncFailed(string(event.EventType))

	var nonRetry registry.NonRetryableError
	if errors.As(pubErr, &nonRetry) {
		return attemptResult{verdictUnroutable, pubErr, fields}
	}
	next := event.AttemptCount + 1
	fields["attempt_count"] = next
	if next >= s.maxAttempts {
		return attemptResult{verdictExhausted, fmt.Errorf("max publish attempts reached: %w", pubErr), fields}
	}
	return attemptResult{verdictRetry, pubErr, fields}
}

// settle records an attempt against the outbox row inside tx.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, event models.OutboxEvent, res attemptResult) error {
	logCtx := s.logg.WithFields(ctx, res.fields)
	cause := res.cause
	switch res.verdict {
	case verdictPublished:
		if err := s.repo.MarkPublishedTx(tx, event.ID); err != nil {
			return fmt.Errorf("mark published %s: %w", event.ID, err)
		}
		s.metrics.IncPublished()
		s.logg.Info(logCtx, "outbox event published")
	case verdictRetry:
		s.logg.Warn(s.logg.WithField(logCtx, "error", cause.Error()), "outbox publish failed")
		if err := s.repo.MarkFailedTx(tx, event.ID, cause); err != nil {
			return fmt.Errorf("mark failure %s: %w", event.ID, err)
		}
	default:
		logCtx = s.logg.WithFields(logCtx, map[string]any{"terminal_reason": res.verdict.String(), "error": cause.Error()})
		s.logg.Warn(logCtx, "outbox event will not be retried")
		if err := s.repo.MarkTerminalTx(tx, event.ID, cause, s.maxAttempts); err != nil {
			return fmt.Errorf("mark terminal %s: %w", event.ID, err)
		}
	}
	return nil
}

// assignmentMessage keys ordering on the aggregate id so every event for one
// assignment is delivered in the order it was written.
func assignmentMessage(event models.OutboxEvent, eventID string) *gcppubsub.Message {
	aggregateID := event.AggregateID.String()
	return &gcppubsub.Message{
		Data:        []byte(event.Payload),
		OrderingKey: aggregateID,
		Attributes: map[string]string{
			"event_id":       eventID,
			"event_type":     string(event.EventType),
			"aggregate_type": string(event.AggregateType),
			"aggregate_id":   aggregateID,
			"created_at":     event.CreatedAt.Format(time.RFC3339Nano),
		},
	}
}

func (s *Service) publish(ctx context.Context, event models.OutboxEvent, resolved *registry.ResolvedEvent) error {
	topic := resolved.Descriptor.Topic
	pub := s.publisherFactory(topic)
	if pub == nil {
		return registry.NewNonRetryableError(fmt.Errorf("no publisher for topic %s", topic))
	}

	publishCtx, cancel := context.WithTimeout(ctx, defaultPublishTimeout)
	defer cancel()
	result := pub.Publish(publishCtx, assignmentMessage(event, resolved.Envelope.EventID))
	if result == nil {
		return registry.NewNonRetryableError(fmt.Errorf("publisher returned nil for topic %s", topic))
	}
	_, err := result.Get(publishCtx)
	return err
}

// eventFields describes a row for the log; resolved may be nil when the
// registry refused it.
func (s *Service) eventFields(event models.OutboxEvent, resolved *registry.ResolvedEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"batch_size":     s.batchSize,
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	if resolved == nil {
		return fields
	}
	fields["topic"] = resolved.Descriptor.Topic
	describeEnvelope(fields, resolved.Envelope)
	return fields
}

func describeEnvelope(fields map[string]any, envelope outbox.PayloadEnvelope) {
	if envelope.EventID != "" {
		fields["event_id"] = envelope.EventID
		fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	}
	if envelope.Actor != nil {
		fields["actor"] = envelope.Actor.Code
	}
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}

// newGCPPublisher enables ordering so events sharing an aggregate id are
// delivered in publish order. A failed publish pauses its key, so the wrapper
// resumes it to let the next attempt through.
func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	p.EnableMessageOrdering = true
	return &gcpPublisher{Publisher: p}
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return &gcpPublishResult{
		PublishResult: p.Publisher.Publish(ctx, msg),
		resume:        func() { p.Publisher.ResumePublish(msg.OrderingKey) },
	}
}

type gcpPublishResult struct {
	*gcppubsub.PublishResult
	resume func()
}

func (r *gcpPublishResult) Get(ctx context.Context) (string, error) {
	if r == nil || r.PublishResult == nil {
		return "", errors.New("publish result is nil")
	}
	id, err := r.PublishResult.Get(ctx)
	if err != nil && r.resume != nil {
		r.resume()
	}
	return id, err
}
