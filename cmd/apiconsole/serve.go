package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/apiconsole/internal/api"
	"github.com/nerrad567/apiconsole/internal/dth22"
	"github.com/nerrad567/apiconsole/internal/infrastructure/config"
	"github.com/nerrad567/apiconsole/internal/infrastructure/influxdb"
	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
	"github.com/nerrad567/apiconsole/internal/infrastructure/mqtt"
	"github.com/nerrad567/apiconsole/internal/metrics"
	"github.com/nerrad567/apiconsole/migrations"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the DTH22 readings API",
		Long: `Serve /api/dth22 backed by SQLite, with a WebSocket event stream, health and
Prometheus metrics. MQTT ingest and InfluxDB mirroring start when enabled in
the config; if either cannot connect the server runs without it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

// serve runs the server until ctx is cancelled.
//
// Startup order: logger, database and migrations, readings service, then the
// optional MQTT and InfluxDB integrations, then the HTTP server. Deferred
// closes run in reverse.
func serve(ctx context.Context, cfg *config.Config) error {
	log := logging.New(cfg.Logging, version)
	log.Info("starting apiconsole server",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Open database
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")
	metrics.SetDependency("database", true)

	readings := dth22.NewService(dth22.NewSQLiteRepository(db.DB), log)
	readings.OnEvent(func(_ context.Context, ev dth22.Event) {
		metrics.ReadingEventsTotal.WithLabelValues(ev.Action(), ev.Source).Inc()
	})

	deps := api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Readings: readings,
		DB:       db,
		Version:  version,
	}

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := startMQTT(cfg.MQTT, readings, log)
		if mqttErr != nil {
			log.Warn("MQTT unavailable, continuing without sensor ingest", "error", mqttErr)
			metrics.SetDependency("mqtt", false)
		} else {
			defer func() {
				log.Info("disconnecting from MQTT")
				if closeErr := mqttClient.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			}()
			deps.MQTT = mqttClient
		}
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(ctx, cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		log.Warn("InfluxDB unavailable, continuing without time-series mirroring", "error", err)
		metrics.SetDependency("influxdb", false)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		readings.OnEvent(dth22.RecordPoints(influxClient))
		metrics.SetDependency("influxdb", true)
		deps.InfluxDB = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	srv, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Info("apiconsole server stopped")
	return nil
}

// startMQTT connects, announces reading events and subscribes the ingestor.
func startMQTT(cfg config.MQTTConfig, readings *dth22.Service, log *logging.Logger) (*mqtt.Client, error) {
	client, err := mqtt.Connect(cfg)
	if err != nil {
		return nil, err
	}
	client.SetLogger(log)
	client.SetOnConnect(func() {
		log.Info("MQTT reconnected")
		metrics.SetDependency("mqtt", true)
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
		metrics.SetDependency("mqtt", false)
	})

	// #nosec G115 -- QoS validated to 0..2 by config.Validate
	if err := dth22.NewIngestor(readings, log).Start(client, byte(cfg.QoS)); err != nil {
		client.Close() //nolint:errcheck // already failing
		return nil, err
	}
	readings.OnEvent(dth22.PublishEvents(client, log))

	metrics.SetDependency("mqtt", true)
	log.Info("MQTT connected", "broker", fmt.Sprintf("%s:%d", cfg.Broker.Host, cfg.Broker.Port))
	return client, nil
}
