package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/devlink/backend/internal/config"
	"github.com/devlink/backend/internal/handlers"
	"github.com/devlink/backend/internal/logger"
	"github.com/devlink/backend/internal/metrics"
	appMiddleware "github.com/devlink/backend/internal/middleware"
	"github.com/devlink/backend/internal/services"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", err)
		os.Exit(1)
	}
}

// closer runs on shutdown in reverse order of registration.
type closer func(context.Context) error

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](shutdownCtx); err != nil {
				log.Warn("shutdown step failed", zap.Error(err))
			}
		}
	}()

	m := metrics.New()

	repo, users, closeStore, err := newStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	locker, closeLocker, err := newLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	closers = append(closers, closeLocker)

	opts := []services.ProfileServiceOption{
		services.WithLocker(locker),
		services.WithMetrics(m),
		services.WithLogger(log.With(zap.String("component", "profiles"))),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub := services.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		closers = append(closers, func(context.Context) error { return pub.Close() })
		opts = append(opts, services.WithEventPublisher(pub))
		log.Info("publishing profile events", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}
	profileService := services.NewProfileService(repo, users, opts...)

	auth, err := newAuth(ctx, cfg)
	if err != nil {
		return err
	}

	profileHandler := handlers.NewProfileHandler(profileService, log, cfg.Server.RequestTimeout)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(appMiddleware.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", appMiddleware.LegacyTokenHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		profileHandler.Routes(r, auth)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("devlink API server starting",
			zap.String("address", cfg.Server.Address),
			zap.String("store", cfg.Store.Driver),
			zap.String("auth", cfg.Auth.Provider),
			zap.String("lock", cfg.Lock.Driver),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStore(ctx context.Context, cfg *config.Config, log logger.Logger) (services.ProfileRepository, services.UserRepository, closer, error) {
	switch cfg.Store.Driver {
	case "memory":
		if cfg.Store.DataDir == "" {
			repo := services.NewMemoryProfileRepository()
			return repo, repo, func(context.Context) error { return nil }, nil
		}
		repo, err := services.NewPersistentMemoryProfileRepository(cfg.Store.DataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("memory store: %w", err)
		}
		log.Info("using file-backed memory store", zap.String("data_dir", cfg.Store.DataDir))
		return repo, repo, func(context.Context) error { return nil }, nil

	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		client, err := services.NewMongoClient(connectCtx, cfg.Mongo.URI, cfg.Mongo.ForceTLS12)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		repo, err := services.NewMongoProfileRepository(connectCtx, client, cfg.Mongo.Database)
		if err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, nil, fmt.Errorf("mongo profiles: %w", err)
		}
		log.Info("connected to mongo", zap.String("database", cfg.Mongo.Database))
		return repo, repo, repo.Close, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newLocker(ctx context.Context, cfg *config.Config, log logger.Logger) (services.Locker, closer, error) {
	noop := func(context.Context) error { return nil }
	switch cfg.Lock.Driver {
	case "none":
		log.Warn("profile locking disabled; concurrent updates of one profile may be lost")
		return services.NoopLocker{}, noop, nil
	case "memory":
		return services.NewKeyedMutex(), noop, nil
	case "redis":
		client, err := services.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis: %w", err)
		}
		return services.NewRedisLocker(client, cfg.Lock.TTL), func(context.Context) error { return client.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock driver %q", cfg.Lock.Driver)
	}
}

func newAuth(ctx context.Context, cfg *config.Config) (func(http.Handler) http.Handler, error) {
	switch cfg.Auth.Provider {
	case "jwt":
		if cfg.Auth.JWTSecret == "" {
			return nil, errors.New("auth.jwt_secret is required for the jwt provider")
		}
		return appMiddleware.JWTAuth(cfg.Auth.JWTSecret), nil
	case "firebase":
		client, err := appMiddleware.NewFirebaseAuthClient(ctx, appMiddleware.FirebaseAuthConfig{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsJSON: cfg.Firebase.CredentialsJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("firebase auth: %w", err)
		}
		return appMiddleware.FirebaseAuth(client), nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}
