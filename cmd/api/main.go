package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/sportmeet/internal/api"
	"example.com/sportmeet/internal/auth"
	"example.com/sportmeet/internal/config"
	"example.com/sportmeet/internal/consumer"
	"example.com/sportmeet/internal/domain"
	"example.com/sportmeet/internal/feed"
	"example.com/sportmeet/internal/outbox"
	persistence "example.com/sportmeet/internal/persistence/postgres"
	"example.com/sportmeet/internal/roster"
	httptransport "example.com/sportmeet/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	go dispatcher.Start(ctx)

	service := domain.NewService(repo, repo, repo)

	// The roster is seeded from the database and kept fresh by the
	// user_events stream, so feed computations never block on a query.
	store := roster.NewStore()
	seedRoster(ctx, repo, store)

	// Every api replica needs the complete user stream, so the roster reader
	// joins a group of its own instead of splitting partitions with peers.
	rosterReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID + "-roster-" + uuid.NewString(),
		Topic:           "user_events",
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		ReadLagInterval: -1,
	})
	rosterProc := consumer.NewProcessor(rosterReader, consumer.NewRosterHandler(store))

	go func() {
		defer rosterReader.Close()
		if err := rosterProc.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("roster consumer stopped with error: %v", err)
		}
	}()

	feeds := feed.NewService(repo, store, service)

	handler := api.NewHandler(service, feeds)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	// Simple CORS middleware for local dev
	cors := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Basic request logger
	logger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log.Printf("%s %s", r.Method, r.URL.Path)
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address: cfg.HTTPAddress,
	}, authMiddleware.Wrap(logger(cors(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("sportmeet api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	dispatcher.Wait()
}

func seedRoster(ctx context.Context, repo *persistence.Repository, store *roster.Store) {
	seedCtx, seedCancel := context.WithTimeout(ctx, 10*time.Second)
	defer seedCancel()

	users, err := repo.ListAllUsers(seedCtx)
	if err != nil {
		log.Printf("roster seed failed, starting empty: %v", err)
		return
	}
	store.Seed(users)
	log.Printf("roster seeded with %d users", len(users))
}
