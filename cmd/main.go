/**
 * @description
 * This is the main entry point for the funding-ledger service. It is
 * responsible for initializing all components of the service, including
 * configuration, database connection, the payment gateway client, the message
 * broker, repositories, the core application service, the reconciliation
 * scheduler and the HTTP server. It wires everything together and starts the
 * service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/redis/go-redis/v9: Redis client for rate limiting.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/paymentgateway: Client for the hosted payment provider.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Bi11y4real/Startup-connect/internal/api"
	"github.com/Bi11y4real/Startup-connect/internal/app"
	"github.com/Bi11y4real/Startup-connect/internal/config"
	"github.com/Bi11y4real/Startup-connect/internal/store"
	"github.com/Bi11y4real/Startup-connect/pkg/paymentgateway"
	"github.com/Bi11y4real/Startup-connect/pkg/rabbitmq"
)

func main() {
	// Load a local .env when present; real deployments use the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.GatewayWebhookSecret) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"webhook secret must be configured\" env=GATEWAY_WEBHOOK_SECRET")
	}

	log.Printf("level=info component=bootstrap msg=\"starting funding-ledger service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 10
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute

	// Disable prepared statement caching to prevent conflicts behind poolers.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Initialize the RabbitMQ producer. Funding events are advisory, so a
	// broker outage at startup degrades to a logging fallback instead of
	// blocking boot.
	var producer rabbitmq.Publisher
	if eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL); err != nil {
		log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
		producer = &rabbitmq.EventProducerFallback{}
	} else {
		producer = eventProducer
		log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
	}
	defer producer.Close()

	// Initialize the payment provider client.
	gatewayClient := paymentgateway.NewClient(cfg.GatewayAPIBaseURL, cfg.GatewayAPIKey)

	// Redis backs the per-investor checkout rate limit. Missing or unreachable
	// Redis disables limiting rather than blocking boot.
	var redisClient *redis.Client
	if cfg.InvestRateLimitPerMinute > 0 {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; invest rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; invest rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient = redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelPing()
				if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; invest rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
					redisClient = nil
				} else {
					defer redisClient.Close()
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Initialize the data access layer (repository).
	repository := store.NewPostgresRepository(dbpool)

	// Initialize the core application service with its dependencies.
	fundingService := app.NewService(repository, gatewayClient, producer, app.Options{
		Currency:                 cfg.Currency,
		CheckoutSuccessURL:       cfg.CheckoutSuccessURL,
		CheckoutCancelURL:        cfg.CheckoutCancelURL,
		EventExchange:            cfg.FundingEventExchange,
		AllowOverfunding:         cfg.AllowOverfunding,
		InvestRateLimitPerMinute: cfg.InvestRateLimitPerMinute,
	})
	if redisClient != nil {
		fundingService.SetRateLimiter(app.NewRedisInvestRateLimiter(redisClient, cfg.RedisRateLimitPrefix))
	}

	// Start the reconciliation scheduler.
	scheduler := app.NewScheduler(fundingService, cfg.ReconcileSchedule, time.Duration(cfg.ReconcileLookbackHours)*time.Hour)
	scheduler.Start()

	// Initialize the API handlers and router.
	fundingHandlers := api.NewFundingHandlers(fundingService, cfg.GatewayWebhookSecret)
	router := api.FundingRoutes(fundingHandlers, api.RouterOptions{
		Auth: api.AuthOptions{
			JWKSURL:  cfg.IdentityJWKSURL,
			Issuer:   cfg.IdentityIssuer,
			Audience: cfg.IdentityAudience,
		},
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)

	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	// Let in-flight reconciliation runs finish before exiting.
	<-scheduler.Stop().Done()

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
