// Package main runs the insights MCP server over stdio for one user (local assistant use).
// The same tools are mounted on the main backend at /mcp over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/2beens/zenith/internal/config"
	"github.com/2beens/zenith/internal/db"
	"github.com/2beens/zenith/internal/docstore"
	"github.com/2beens/zenith/internal/insights"
	insightsmcp "github.com/2beens/zenith/internal/insights/mcp"
	"github.com/2beens/zenith/internal/nutrition"
	"github.com/2beens/zenith/internal/persist"
	"github.com/2beens/zenith/internal/profile"
	"github.com/2beens/zenith/internal/telemetry/metrics"
	"github.com/2beens/zenith/internal/training"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path to TOML config file")
	identity := flag.String("identity", "", "email of the user whose data the tools read")
	flag.Parse()

	if *identity == "" {
		log.Fatal("identity not set, use -identity")
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	secrets := config.SecretsFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDB,
		DBUser:         cfg.PostgresUser,
		DBPassword:     secrets.DBPassword,
		TracingEnabled: false,
	})
	if err != nil {
		log.Fatalf("db pool: %v", err)
	}
	defer dbPool.Close()

	// the tools only read, the queue is there to satisfy the services
	queue := persist.NewQueue(persist.QueueParams{Workers: 1, JobTimeout: cfg.PersistJobTimeout})
	defer queue.Close()

	store := docstore.NewPostgresStore(dbPool)
	metricsManager, _ := newMetricsManager()
	images, err := nutrition.NewImageStore(cfg.MealImagesPath)
	if err != nil {
		log.Fatalf("meal image store: %v", err)
	}

	service := insights.NewService(
		training.NewService(training.NewRepo(store), queue, metricsManager),
		profile.NewService(profile.NewRepo(store), queue),
		nutrition.NewService(nutrition.NewRepo(store), queue, images, nil, metricsManager),
	)

	server := insightsmcp.NewServer(service, *identity)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

// newMetricsManager builds the metrics of this binary. Nothing scrapes them, the
// registry is kept separate from the backend's.
func newMetricsManager() (*metrics.Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return metrics.NewManager("zenith", "coach_mcp", reg), reg
}
