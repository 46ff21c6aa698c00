package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/devzoku/devzoku-api/internal/config"
	"github.com/devzoku/devzoku-api/internal/constants"
	"github.com/devzoku/devzoku-api/internal/database"
	"github.com/devzoku/devzoku-api/internal/email"
	"github.com/devzoku/devzoku-api/internal/handlers"
	"github.com/devzoku/devzoku-api/internal/metrics"
	"github.com/devzoku/devzoku-api/internal/middleware"
	"github.com/devzoku/devzoku-api/internal/outbox"
	"github.com/devzoku/devzoku-api/internal/queue"
	"github.com/devzoku/devzoku-api/internal/realtime"
	"github.com/devzoku/devzoku-api/internal/repository"
	"github.com/devzoku/devzoku-api/internal/search"
	"github.com/devzoku/devzoku-api/internal/services"
	"github.com/devzoku/devzoku-api/internal/storage"
	"github.com/devzoku/devzoku-api/internal/validation"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func utcNow() time.Time { return time.Now().UTC() }

func openQueue(cfg *config.Config) (queue.Queue, error) {
	switch cfg.QueueDriver {
	case "memory":
		return queue.NewMemoryQueue(1024), nil
	case "redis", "":
		client, err := queue.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return queue.NewRedisQueue(client, cfg.EmailQueueKey), nil
	default:
		return nil, fmt.Errorf("unsupported queue driver: %s", cfg.QueueDriver)
	}
}

func newWorker(cfg *config.Config, q queue.Queue, store *repository.Store, log *zap.Logger) (*email.Worker, error) {
	renderer, err := email.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	sender, err := email.NewSender(email.Provider(cfg.EmailProvider), email.SenderConfig{
		From:           cfg.EmailFrom,
		FromName:       cfg.EmailFromName,
		SendgridAPIKey: cfg.SendgridAPIKey,
		SMTPHost:       cfg.SMTPHost,
		SMTPPort:       cfg.SMTPPort,
		SMTPUsername:   cfg.SMTPUsername,
		SMTPPassword:   cfg.SMTPPassword,
	})
	if err != nil {
		return nil, err
	}
	return email.NewWorker(email.WorkerConfig{
		Queue:       q,
		Renderer:    renderer,
		Sender:      sender,
		DeadLetters: store.FailedEmails,
		Concurrency: cfg.EmailWorkerConcurrency,
		MaxAttempts: cfg.EmailMaxAttempts,
		Now:         utcNow,
		Logger:      log,
	}), nil
}

// runWorker runs the consumer and the dead-letter retry loop until ctx ends
func runWorker(ctx context.Context, w *email.Worker, retryInterval time.Duration) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		w.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		w.RetryDLQ(ctx, retryInterval)
	}()
	return &wg
}

func openIndexer(ctx context.Context, cfg *config.Config, log *zap.Logger) search.InteractionIndexer {
	if cfg.ElasticURL == "" {
		return nil
	}
	client, err := search.Connect(cfg.ElasticURL)
	if err != nil {
		log.Warn("Interaction indexing disabled", zap.Error(err))
		return nil
	}
	if err := search.EnsureIndex(ctx, client, cfg.ElasticIndex); err != nil {
		log.Warn("Interaction indexing disabled", zap.Error(err))
		return nil
	}
	indexer, err := search.NewElasticIndexer(client, cfg.ElasticIndex, log)
	if err != nil {
		log.Warn("Interaction indexing disabled", zap.Error(err))
		return nil
	}
	return indexer
}

func openPosterStore(ctx context.Context, cfg *config.Config, log *zap.Logger) storage.PosterStore {
	if cfg.S3PosterBucket == "" {
		log.Warn("S3_POSTER_BUCKET not set, hackathon creation is unavailable")
		return nil
	}
	client, err := storage.NewS3Client(ctx, cfg.AWSRegion)
	if err != nil {
		log.Warn("Poster uploads disabled", zap.Error(err))
		return nil
	}
	return storage.NewS3PosterStore(client, cfg.S3PosterBucket, cfg.AWSRegion, cfg.S3PublicBaseURL)
}

func sessionMiddleware(cfg *config.Config) (gin.HandlerFunc, error) {
	store, err := redisStore.NewStore(
		10,
		"tcp",
		cfg.RedisAddr(),
		"",
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis session store: %w", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   constants.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return sessions.Sessions(constants.SessionName, store), nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, withWorker bool) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)
	if err := validation.Register(); err != nil {
		return err
	}
	metrics.Register()

	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	if err := database.MigrateDatabase(db, log); err != nil {
		return err
	}
	store := repository.NewStore(db)

	q, err := openQueue(cfg)
	if err != nil {
		return err
	}
	defer q.Close()
	if cfg.QueueDriver == "memory" && !withWorker {
		log.Warn("In-memory queue has no external consumer, running the email worker in process")
		withWorker = true
	}

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.AccessTokenCookie)
	hub := realtime.NewHub(auth.ResolveUser, log)
	go func() {
		if err := hub.Serve(); err != nil {
			log.Error("Realtime hub stopped", zap.Error(err))
		}
	}()
	defer hub.Close()

	indexer := openIndexer(ctx, cfg, log)
	dispatcher := outbox.NewDispatcher(outbox.DispatcherConfig{
		Store:       store,
		Publisher:   hub,
		Producer:    q,
		Indexer:     indexer,
		Concurrency: cfg.DispatchWorkers,
		Logger:      log,
	})

	sessionsMW, err := sessionMiddleware(cfg)
	if err != nil {
		return err
	}

	hackathons := services.NewHackathonService(services.HackathonServiceConfig{
		Store:       store,
		Posters:     openPosterStore(ctx, cfg, log),
		DedupWindow: cfg.InteractionDedup,
		Now:         utcNow,
		Logger:      log,
	})
	router := handlers.NewRouter(handlers.RouterConfig{
		Teams: handlers.NewTeamHandler(
			services.NewTeamService(store, utcNow),
			services.NewInvitationService(store, utcNow),
			dispatcher,
		),
		Hackathons: handlers.NewHackathonHandler(
			hackathons,
			services.NewApplicationService(store, cfg.InteractionDedup, utcNow, log),
			services.NewAdjudicationService(store, utcNow, log),
			dispatcher,
		),
		Notifications: handlers.NewNotificationHandler(services.NewNotificationService(store)),
		Auth:          auth,
		Sessions:      sessionsMW,
		Database:      store,
		Realtime:      hub.Handler(),
		Logger:        log,
	})

	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	var workers *sync.WaitGroup
	if withWorker {
		w, err := newWorker(cfg, q, store, log)
		if err != nil {
			return err
		}
		workers = runWorker(workerCtx, w, cfg.EmailDLQRetryInterval)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handlers.WithCORS(router, cfg.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", cfg.HTTPAddr), zap.Bool("embedded_worker", withWorker))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		srv.Close()
		log.Warn("Could not stop server gracefully", zap.Error(err))
	}

	// Queued side effects must be enqueued before the worker stops
	dispatcher.Wait()
	stopWorker()
	if workers != nil {
		workers.Wait()
	}
	if indexer != nil {
		if err := indexer.Close(shutdownCtx); err != nil {
			log.Warn("Failed to flush interaction index", zap.Error(err))
		}
	}
	log.Info("Server stopped")
	return nil
}

func work(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.QueueDriver == "memory" {
		return errors.New("the worker command needs a shared queue, set QUEUE_DRIVER=redis")
	}
	metrics.Register()

	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	store := repository.NewStore(db)

	q, err := openQueue(cfg)
	if err != nil {
		return err
	}
	defer q.Close()

	w, err := newWorker(cfg, q, store, log)
	if err != nil {
		return err
	}
	runWorker(ctx, w, cfg.EmailDLQRetryInterval).Wait()
	log.Info("Worker stopped")
	return nil
}
