package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"quiz-room-service/internal/app"
	"quiz-room-service/internal/auth"
	"quiz-room-service/internal/config"
	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/infra/memory"
	pgstore "quiz-room-service/internal/infra/postgres"
	redisstore "quiz-room-service/internal/infra/redis"
	"quiz-room-service/internal/logging"
	"quiz-room-service/internal/metrics"
	transport "quiz-room-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz room server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Pretty)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(catalog(cfg))
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = redisstore.NewQuizRepository(redisClient, loader, quizTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, quizTTL)
	}

	var history app.HistoryRepository = memory.NewHistoryRepository()
	if cfg.Postgres.URL != "" {
		db := pgstore.OpenBun(cfg.Postgres.URL)
		defer db.Close()
		history = pgstore.NewHistoryRepository(db)
	}

	var store app.RoomStore
	if redisClient != nil {
		redisRooms := redisstore.NewRoomStore(redisClient, redisTTL)
		go keepRoomsAlive(ctx, redisRooms, redisTTL/2)
		store = redisRooms
	} else {
		store = memory.NewRoomStore()
	}

	m := metrics.NewMetrics()
	rooms := app.NewRoomManager(store, quizRepo, history, app.WithMetrics(m))

	validator, err := transport.NewValidator()
	if err != nil {
		return err
	}
	hub := transport.NewHub(m)
	wsHandler := transport.NewWSHandler(rooms, hub, validator, m, transport.TimerSettings{
		TickRate:      config.TTLDuration(cfg.Timer.TickRate, time.Second),
		PanicTickRate: config.TTLDuration(cfg.Timer.PanicTickRate, 250*time.Millisecond),
	}, cfg.Server.SendQueue)

	if cfg.Admin.Password == "" {
		log.Warn().Msg("admin password not configured, admin login disabled")
	}
	secret := cfg.Admin.JWTSecret
	if secret == "" {
		secret = cfg.Admin.Password
	}
	authMgr := auth.NewManager(cfg.Admin.Password, secret, config.TTLDuration(cfg.Admin.TokenTTL, 12*time.Hour))
	rest := transport.NewRESTHandler(rooms, authMgr)

	router := transport.NewRouter(transport.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
	}, rest, wsHandler, m)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Msgf("starting quiz room service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info().Msg("shutting down server...")
	case <-ctx.Done():
		log.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// keepRoomsAlive refreshes the Redis liveness markers of local rooms.
func keepRoomsAlive(ctx context.Context, store *redisstore.RoomStore, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Touch(ctx); err != nil {
				log.Warn().Err(err).Msg("refresh room markers")
			}
		}
	}
}

// catalog returns the YAML quizzes, or a one-question demo quiz when none are configured.
func catalog(cfg config.Config) []domain.Quiz {
	if len(cfg.Quiz.Catalog) > 0 {
		return cfg.Quiz.Catalog
	}
	return []domain.Quiz{
		{
			ID:       "quiz-1",
			Title:    "Warm-up",
			Duration: 20,
			Questions: []domain.Question{
				{
					Type:   domain.QuestionQCM,
					Text:   "What is 2 + 2?",
					Points: 10,
					Choices: []domain.Choice{
						{Text: "3"},
						{Text: "4", IsCorrect: true},
						{Text: "5"},
					},
				},
				{
					Type:   domain.QuestionQRL,
					Text:   "Explain why the sky is blue.",
					Points: 40,
				},
			},
		},
	}
}
