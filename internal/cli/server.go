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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quiz-room-service/internal/app"
	"quiz-room-service/internal/config"
	"quiz-room-service/internal/domain"
	"quiz-room-service/internal/infra/memory"
	pgstore "quiz-room-service/internal/infra/postgres"
	redisstore "quiz-room-service/internal/infra/redis"
	"quiz-room-service/internal/logger"
	transport "quiz-room-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the room play server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	defer log.Sync()

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
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	roomTTL := config.TTLDuration(cfg.Room.TTL, 10*time.Minute)
	var sets app.QuestionSetProvider
	switch {
	case pool != nil && redisClient != nil:
		sets = redisstore.NewCachedProvider(redisClient, pgstore.NewQuestionSetLoader(pool), roomTTL)
	case pool != nil:
		sets = memory.NewCachedProvider(pgstore.NewQuestionSetLoader(pool), roomTTL)
	default:
		sets = memory.NewStaticProvider(sampleRooms())
	}

	attemptTTL := config.TTLDuration(cfg.Redis.TTL, 0)
	var store app.ResultStore
	switch {
	case pool != nil:
		store = pgstore.NewResultStore(pool)
	case redisClient != nil:
		store = redisstore.NewResultStore(redisClient, attemptTTL)
	default:
		store = memory.NewResultStore()
	}

	budget := config.TTLDuration(cfg.Play.QuestionBudget, app.DefaultQuestionBudget)
	service := app.NewPlayService(store, sets, budget, cfg.Play.LeaderboardLimit)
	playHandler := transport.NewPlayHandler(service, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/play", playHandler.ServePlay)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz room service", zap.String("port", finalPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleRooms seeds a demo room when neither Postgres nor Redis is
// configured; swap in the document-store loader for production.
func sampleRooms() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		"demo": {
			ID:        "demo",
			Title:     "Demo room",
			OwnerName: "Teacher",
			Questions: []domain.Question{
				{
					ID:           "q1",
					Prompt:       "What is 2 + 2?",
					Options:      [4]string{"3", "4", "5", "6"},
					CorrectIndex: 1,
				},
				{
					ID:           "q2",
					Prompt:       "How many legs does a spider have?",
					Options:      [4]string{"6", "8", "10", "12"},
					CorrectIndex: 1,
				},
				{
					ID:           "q3",
					Prompt:       "Which planet is closest to the sun?",
					Options:      [4]string{"Venus", "Earth", "Mercury", "Mars"},
					CorrectIndex: 2,
				},
			},
		},
	}
}
