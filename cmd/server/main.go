package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/partner-console/internal/api"
	"github.com/ignite/partner-console/internal/config"
	"github.com/ignite/partner-console/internal/delivery"
	"github.com/ignite/partner-console/internal/pkg/logger"
	"github.com/ignite/partner-console/internal/repository/fixture"
	"github.com/ignite/partner-console/internal/repository/postgres"
	"github.com/ignite/partner-console/internal/service/adoption"
	"github.com/ignite/partner-console/internal/session"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	ln.Close()
	return nil
}

// extractHost returns the host part of a connection URL for logging without
// credentials.
func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(!cfg.Logging.DisableRedaction)

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var db *sql.DB
	if cfg.Database.URL != "" {
		db, err = openDatabase(ctx, cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Printf("Database connected: %s", extractHost(cfg.Database.URL))
	}

	src, err := rosterSource(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize roster source: %v", err)
	}

	redisClient := connectRedis(ctx, cfg.Redis.URL)
	if redisClient != nil {
		defer redisClient.Close()
	}
	sessions, err := sessionStore(ctx, cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	dispatcher, err := newDispatcher(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize delivery: %v", err)
	}

	normalizer := adoption.NewNormalizer(
		adoption.NewReachPolicy(cfg.Roster.BaseReach, cfg.Roster.PerActionReach),
		logger.Default(),
	)
	handlers := api.NewHandlers(
		adoption.NewService(src, normalizer),
		sessions,
		dispatcher,
		api.Settings{
			DefaultBrand:   cfg.Brand.Name,
			PageSize:       cfg.Roster.PageSize,
			MaxPageSize:    cfg.Roster.MaxPageSize,
			BroadThreshold: cfg.Roster.BroadThreshold,
		},
		logger.Default(),
	)
	server := api.NewServer(cfg.Server, handlers, api.NewHealthChecker(db, redisClient).WithSessions(sessions))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s (roster source: %s, delivery: %s)", addr, cfg.Roster.Source, cfg.Delivery.Channel)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return db, nil
}

func rosterSource(ctx context.Context, cfg *config.Config, db *sql.DB) (adoption.Source, error) {
	switch cfg.Roster.Source {
	case config.SourcePostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres roster source needs database.url")
		}
		return postgres.NewRosterRepo(db), nil
	default:
		var getter fixture.ObjectGetter
		if strings.HasPrefix(cfg.Roster.FixturePath, "s3://") {
			client, err := fixture.NewS3Client(ctx, cfg.Storage.AWSRegion, cfg.Storage.GetAWSProfile())
			if err != nil {
				return nil, err
			}
			getter = client
		}
		src, err := fixture.Load(ctx, cfg.Roster.FixturePath, getter)
		if err != nil {
			return nil, err
		}
		log.Printf("Fixture loaded from %s: %d campaigns", cfg.Roster.FixturePath, len(src.CampaignIDs()))
		return src, nil
	}
}

// connectRedis returns nil when no URL is configured or the server does not
// answer, so session storage falls back to DynamoDB or memory.
func connectRedis(ctx context.Context, redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}
	var client *redis.Client
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed (%s): %v; continuing without Redis", extractHost(redisURL), err)
		client.Close()
		return nil
	}
	return client
}

// sessionStore prefers Redis, then a DynamoDB table, then process memory.
func sessionStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (session.Store, error) {
	switch {
	case redisClient != nil:
		log.Printf("Sessions stored in Redis (ttl %s)", cfg.Redis.SessionTTL())
		return session.NewRedisStore(redisClient, cfg.Redis.KeyPrefix, cfg.Redis.SessionTTL()), nil
	case cfg.Storage.SessionTable != "":
		client, err := session.NewDynamoClient(ctx, cfg.Storage.AWSRegion, cfg.Storage.GetAWSProfile())
		if err != nil {
			return nil, err
		}
		log.Printf("Sessions stored in DynamoDB table %s", cfg.Storage.SessionTable)
		return session.NewDynamoStore(client, cfg.Storage.SessionTable, cfg.Redis.SessionTTL()), nil
	default:
		log.Println("Redis and DynamoDB not configured, sessions kept in process memory")
		return session.NewMemoryStore(), nil
	}
}

func newDispatcher(ctx context.Context, cfg *config.Config) (delivery.Dispatcher, error) {
	if cfg.Delivery.Channel != config.DeliverySES {
		return delivery.NewLogDispatcher(logger.Default()), nil
	}
	client, err := delivery.NewSESClient(ctx, cfg.SES.Region, cfg.SES.AccessKey, cfg.SES.SecretKey)
	if err != nil {
		return nil, err
	}
	d := delivery.NewSESDispatcher(client, cfg.SES.FromEmail, cfg.SES.FromName)
	d.SetTimeout(cfg.SES.Timeout())
	log.Printf("SES delivery enabled (region %s, from %s)", cfg.SES.Region, logger.RedactEmail(cfg.SES.FromEmail))
	return d, nil
}
