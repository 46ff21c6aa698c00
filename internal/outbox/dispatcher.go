package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/devzoku/devzoku-api/internal/metrics"
	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/queue"
	"github.com/devzoku/devzoku-api/internal/realtime"
	"github.com/devzoku/devzoku-api/internal/repository"
	"github.com/devzoku/devzoku-api/internal/search"
	"go.uber.org/zap"
)

// Dispatcher executes intents after the producing transaction has committed.
// Failures are logged and counted, never returned to the request.
type Dispatcher struct {
	store     *repository.Store
	publisher realtime.Publisher
	producer  queue.Producer
	indexer   search.InteractionIndexer
	log       *zap.Logger

	keys *keyLock
	sem  chan struct{}
	wg   sync.WaitGroup
}

// DispatcherConfig wires the dispatcher's collaborators. Indexer may be nil.
type DispatcherConfig struct {
	Store       *repository.Store
	Publisher   realtime.Publisher
	Producer    queue.Producer
	Indexer     search.InteractionIndexer
	Concurrency int
	Logger      *zap.Logger
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = realtime.NopPublisher{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Dispatcher{
		store:     cfg.Store,
		publisher: publisher,
		producer:  cfg.Producer,
		indexer:   cfg.Indexer,
		log:       log.Named("outbox"),
		keys:      newKeyLock(),
		sem:       make(chan struct{}, concurrency),
	}
}

// Go dispatches intents in the background, detached from the request's
// cancellation. At most Concurrency batches run at once.
func (d *Dispatcher) Go(ctx context.Context, intents Intents) {
	if len(intents) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()

		_ = d.Dispatch(ctx, intents)
	}()
}

// Wait blocks until every batch started with Go has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Dispatch executes intents in order. Every intent is attempted; the joined
// error is returned for callers that want it.
func (d *Dispatcher) Dispatch(ctx context.Context, intents Intents) error {
	var errs []error
	for _, intent := range intents {
		var err error
		switch in := intent.(type) {
		case Notify:
			err = d.notify(ctx, in)
		case EnqueueEmail:
			err = d.enqueue(ctx, in)
		case RecordInteraction:
			err = d.recordInteraction(ctx, in)
		default:
			err = fmt.Errorf("unknown intent %T", intent)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) notify(ctx context.Context, in Notify) error {
	var errs []error
	for _, recipient := range in.Recipients {
		if err := d.persistNotification(ctx, recipient, in.Notification); err != nil {
			metrics.SideEffects.WithLabelValues(string(KindNotify), metrics.ResultFailed).Inc()
			d.log.Error("Failed to persist notification",
				zap.Uint64("recipient", recipient),
				zap.String("event", in.Event),
				zap.Error(err),
			)
			errs = append(errs, err)
		} else {
			metrics.SideEffects.WithLabelValues(string(KindNotify), metrics.ResultOK).Inc()
		}

		// The push goes out even when persistence failed.
		d.publisher.Publish(recipient, in.Event, in.Notification)
	}
	return errors.Join(errs...)
}

func (d *Dispatcher) persistNotification(ctx context.Context, userID uint64, n models.Notification) error {
	return d.store.Transaction(ctx, func(tx *repository.Store) error {
		profile, err := tx.Profiles.FindOrCreateDeveloperForUpdate(ctx, userID)
		if err != nil {
			return fmt.Errorf("load profile of user %d: %w", userID, err)
		}
		profile.Notifications = append(profile.Notifications, n)
		return tx.Profiles.SaveDeveloper(ctx, profile)
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, in EnqueueEmail) error {
	if d.producer == nil {
		metrics.SideEffects.WithLabelValues(string(KindEmail), metrics.ResultSkipped).Inc()
		d.log.Warn("Email queue not configured, dropping job", zap.String("job", string(in.Job.Name)), zap.String("job_id", in.Job.ID))
		return nil
	}

	if err := d.producer.Enqueue(ctx, in.Job); err != nil {
		metrics.SideEffects.WithLabelValues(string(KindEmail), metrics.ResultFailed).Inc()
		d.log.Error("Failed to enqueue email job",
			zap.String("job", string(in.Job.Name)),
			zap.String("job_id", in.Job.ID),
			zap.Error(err),
		)
		return err
	}
	metrics.SideEffects.WithLabelValues(string(KindEmail), metrics.ResultOK).Inc()
	return nil
}

func (d *Dispatcher) recordInteraction(ctx context.Context, in RecordInteraction) error {
	interaction := in.Interaction
	if interaction.CreatedAt.IsZero() {
		interaction.CreatedAt = time.Now().UTC()
	}

	var (
		skipped bool
		err     error
	)
	if deduplicated(in) {
		skipped, err = d.recordUnlessRecentView(ctx, &interaction, in.DedupWindow)
	} else {
		err = d.store.Interactions.Create(ctx, &interaction)
	}
	if err != nil {
		metrics.SideEffects.WithLabelValues(string(KindInteraction), metrics.ResultFailed).Inc()
		d.log.Error("Failed to record interaction",
			zap.Uint64("user_id", interaction.UserID),
			zap.String("type", string(interaction.Type)),
			zap.Error(err),
		)
		return err
	}
	if skipped {
		metrics.SideEffects.WithLabelValues(string(KindInteraction), metrics.ResultSkipped).Inc()
		return nil
	}
	metrics.SideEffects.WithLabelValues(string(KindInteraction), metrics.ResultOK).Inc()

	if d.indexer != nil {
		if err := d.indexer.Index(ctx, interaction); err != nil {
			d.log.Warn("Failed to mirror interaction", zap.Uint64("interaction_id", interaction.ID), zap.Error(err))
		}
	}
	return nil
}

// deduplicated reports whether in is subject to the recent-view rule.
func deduplicated(in RecordInteraction) bool {
	i := in.Interaction
	if in.DedupWindow <= 0 || i.HackathonID == nil {
		return false
	}
	return i.Type == models.InteractionView || i.Type == models.InteractionRegister
}

// recordUnlessRecentView checks for a recent view and inserts in one step.
// Batches in this process are serialized per (user, hackathon); other
// processes are held off by the lock on the user's row.
func (d *Dispatcher) recordUnlessRecentView(ctx context.Context, interaction *models.UserInteraction, window time.Duration) (bool, error) {
	unlock := d.keys.Lock(fmt.Sprintf("%d:%d", interaction.UserID, *interaction.HackathonID))
	defer unlock()

	skipped := false
	err := d.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Users.LockByID(ctx, interaction.UserID); err != nil {
			return fmt.Errorf("lock user %d: %w", interaction.UserID, err)
		}
		seen, err := tx.Interactions.HasViewSince(ctx, interaction.UserID, *interaction.HackathonID, interaction.CreatedAt.Add(-window))
		if err != nil {
			return fmt.Errorf("check recent view: %w", err)
		}
		if seen {
			skipped = true
			return nil
		}
		return tx.Interactions.Create(ctx, interaction)
	})
	return skipped, err
}
