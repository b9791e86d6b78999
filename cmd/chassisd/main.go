// chassisd is an HTTP gateway for IPMI chassis power control.
//
// It authorizes requests against a static group topology using bearer
// tokens and drives managed machines' BMCs through the external ipmitool
// binary. An optional SQLite audit trail records every power action, and
// an optional MQTT publisher announces power events to subscribers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/chassisd/internal/api"
	"github.com/nerrad567/chassisd/internal/audit"
	"github.com/nerrad567/chassisd/internal/auth"
	"github.com/nerrad567/chassisd/internal/infrastructure/config"
	"github.com/nerrad567/chassisd/internal/infrastructure/database"
	"github.com/nerrad567/chassisd/internal/infrastructure/logging"
	"github.com/nerrad567/chassisd/internal/infrastructure/mqtt"
	"github.com/nerrad567/chassisd/internal/ipmi"
	"github.com/nerrad567/chassisd/internal/topology"

	_ "github.com/nerrad567/chassisd/migrations"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "chassisd: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("CHASSISD_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Logging, version)
	logger.Info("starting chassisd",
		"version", version,
		"config", configPath,
	)

	// Access-control topology is built once; config changes need a restart.
	topo, err := topology.New(cfg.Groups)
	if err != nil {
		return fmt.Errorf("building topology: %w", err)
	}
	logger.Info("topology loaded",
		"groups", topo.GroupCount(),
		"endpoints", topo.EndpointCount(),
	)

	resolver := auth.NewResolver(topo)

	executor := ipmi.NewTool(cfg.IPMI.Binary, cfg.IPMI.Interface, cfg.IPMITimeout())
	executor.SetLogger(logger.With("component", "ipmi"))

	// Audit trail is optional: an empty database path disables it.
	var auditRepo audit.Repository
	if cfg.Database.Path != "" {
		db, err := database.Open(ctx, database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}

		auditRepo = audit.NewSQLiteRepository(db.DB)
		logger.Info("audit trail enabled", "path", db.Path())
	} else {
		logger.Info("audit trail disabled")
	}

	// MQTT power events are optional too. A broker outage at startup is
	// fatal only when MQTT is explicitly enabled.
	var events api.EventPublisher
	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT broker: %w", err)
		}
		defer client.Close()

		client.SetOnConnect(func() {
			logger.Info("MQTT connected")
		})
		client.SetOnDisconnect(func(err error) {
			logger.Warn("MQTT disconnected", "error", err)
		})

		events = client
		logger.Info("power events enabled",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		)
	}

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		Logger:   logger.With("component", "api"),
		Resolver: resolver,
		Executor: executor,
		Audit:    auditRepo,
		Events:   events,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer server.Close() //nolint:errcheck // Shutdown errors are logged by the server

	logger.Info("chassisd ready",
		"addr", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
	)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	return nil
}
