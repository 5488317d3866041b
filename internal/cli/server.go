package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PippinJewel/quiz-platform/internal/app"
	"github.com/PippinJewel/quiz-platform/internal/config"
	"github.com/PippinJewel/quiz-platform/internal/domain"
	"github.com/PippinJewel/quiz-platform/internal/infra/memory"
	pgloader "github.com/PippinJewel/quiz-platform/internal/infra/postgres"
	redisinfra "github.com/PippinJewel/quiz-platform/internal/infra/redis"
	transport "github.com/PippinJewel/quiz-platform/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// DefaultSetID is the question set served when the host does not name one.
const DefaultSetID = "general-knowledge"

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 2*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(builtinSets())
	if pool != nil {
		loader = pgloader.NewQuestionLoader(pool)
	}

	setTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var sets app.QuestionRepository
	if redisClient != nil {
		sets = redisinfra.NewQuestionRepository(redisClient, loader, setTTL)
	} else {
		sets = memory.NewQuestionRepository(loader, setTTL)
	}

	var registry app.SessionRegistry
	if redisClient != nil {
		registry = redisinfra.NewSessionRegistry(redisClient, sessionTTL)
	} else {
		registry = memory.NewSessionRegistry()
	}

	defaultSet := cfg.Questions.DefaultSet
	if defaultSet == "" {
		defaultSet = DefaultSetID
	}

	service := app.NewGameService(registry, sets)
	wsHandler := transport.NewWSHandler(service, defaultSet)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz platform on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// builtinSets ships a demo question set so the server works without
// Postgres; production deployments load sets from the database instead.
func builtinSets() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		DefaultSetID: {
			ID: DefaultSetID,
			Questions: []domain.Question{
				{
					Prompt:           "What is the capital of France?",
					Answers:          []string{"London", "Berlin", "Paris", "Madrid"},
					CorrectIndex:     2,
					TimeLimitSeconds: 20,
				},
				{
					Prompt:           "Which planet is known as the Red Planet?",
					Answers:          []string{"Venus", "Mars", "Jupiter", "Saturn"},
					CorrectIndex:     1,
					TimeLimitSeconds: 20,
				},
				{
					Prompt:           "What is the largest ocean on Earth?",
					Answers:          []string{"Atlantic", "Indian", "Arctic", "Pacific"},
					CorrectIndex:     3,
					TimeLimitSeconds: 20,
				},
				{
					Prompt:           "Who painted the Mona Lisa?",
					Answers:          []string{"Van Gogh", "Da Vinci", "Picasso", "Michelangelo"},
					CorrectIndex:     1,
					TimeLimitSeconds: 20,
				},
				{
					Prompt:           "What is the smallest prime number?",
					Answers:          []string{"0", "1", "2", "3"},
					CorrectIndex:     2,
					TimeLimitSeconds: 20,
				},
			},
		},
	}
}
