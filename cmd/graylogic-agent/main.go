// Gray Logic Agent - Embedded Device Companion
//
// This is the main entry point for the Gray Logic field-device agent. The
// agent maintains one persistent MQTT session with the site broker,
// publishes periodic telemetry and health reports, and routes inbound
// command messages to device actions. It is designed to run unattended on
// small always-on hosts and to survive broker outages without losing
// telemetry.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nerrad567/gray-logic-agent/internal/api"
	"github.com/nerrad567/gray-logic-agent/internal/command"
	"github.com/nerrad567/gray-logic-agent/internal/health"
	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-agent/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-agent/internal/mqtt"
	"github.com/nerrad567/gray-logic-agent/internal/producer"
	"github.com/nerrad567/gray-logic-agent/internal/router"
	"github.com/nerrad567/gray-logic-agent/internal/spool"
	"github.com/nerrad567/gray-logic-agent/internal/stats"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic Agent", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised", "level", cfg.Logging.Level, "format", cfg.Logging.Format)

	// Routing table and statistics shared by the session and everything else
	routes := router.NewTable(0)
	routes.SetLogger(log)
	tracker := stats.NewTracker()
	topics := mqtt.NewTopics(cfg.Agent.BaseTopic, cfg.CommandTopic())
	qos := byte(cfg.MQTT.QoS)

	// Telemetry spool (optional): records produced during outages survive on disk
	var store *spool.Store
	if cfg.Spool.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.Spool.Path,
			WALMode:     cfg.Spool.WALMode,
			BusyTimeout: cfg.Spool.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening spool database: %w", dbErr)
		}
		defer func() {
			log.Info("closing spool database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing spool database", "error", closeErr)
			}
		}()

		store, err = spool.NewStore(db, cfg.Spool.MaxMessages)
		if err != nil {
			return fmt.Errorf("opening telemetry spool: %w", err)
		}
		log.Info("telemetry spool ready", "path", cfg.Spool.Path, "max_messages", cfg.Spool.MaxMessages)
	}

	// Broker session
	session, err := mqtt.NewSession(mqtt.Deps{
		MQTT:    cfg.MQTT,
		Topics:  topics,
		Routes:  routes,
		Tracker: tracker,
		Logger:  log,
	}, func(events mqtt.Events) (mqtt.Transport, error) {
		will := mqtt.Will{
			Topic:    topics.Status(),
			Payload:  mqtt.StatusOffline,
			QoS:      1,
			Retained: true,
		}
		return mqtt.NewPahoTransport(cfg.MQTT, cfg.ClientID(), will, events), nil
	})
	if err != nil {
		return fmt.Errorf("creating mqtt session: %w", err)
	}
	defer func() {
		log.Info("closing mqtt session")
		if closeErr := session.Close(); closeErr != nil {
			log.Error("error closing mqtt session", "error", closeErr)
		}
	}()

	// On every (re)connect: announce the boot once, then flush the spool
	boot := mqtt.NewBootInfo(cfg.Agent.DeviceID, version)
	var bootOnce sync.Once
	session.SetOnConnect(func() {
		bootOnce.Do(func() {
			if _, pubErr := session.PublishBoot(boot); pubErr != nil {
				log.Warn("boot announcement failed", "error", pubErr)
			}
		})

		if store == nil {
			return
		}
		delivered, drainErr := store.Drain(ctx, func(msg spool.Message) error {
			_, pubErr := session.Publish(msg.Topic, msg.Payload, msg.QoS, false)
			return pubErr
		})
		if drainErr != nil {
			log.Error("spool drain failed", "delivered", delivered, "error", drainErr)
			return
		}
		if delivered > 0 {
			log.Info("spool drained", "delivered", delivered)
		}
	})

	// Inbound command subscriptions
	handlers := command.NewHandlers(command.LogActuator{Logger: log}, log)
	if _, subErr := session.Subscribe(topics.Command(command.PumpDevice), qos, handlers.Pump); subErr != nil {
		return fmt.Errorf("registering pump handler: %w", subErr)
	}
	if _, subErr := session.Subscribe(topics.Command(command.ValveDevice)+"/+", qos, handlers.Valve); subErr != nil {
		return fmt.Errorf("registering valve handler: %w", subErr)
	}
	// Monitoring readings are non-critical, so QoS 0 is enough
	if _, subErr := session.Subscribe(mqtt.TopicPatternGardenTemperature, 0, handlers.Temperature); subErr != nil {
		return fmt.Errorf("registering temperature monitor: %w", subErr)
	}

	if startErr := session.Start(); startErr != nil {
		return fmt.Errorf("starting mqtt session: %w", startErr)
	}

	// Periodic producers
	prober := health.NewProber(nil)

	telemetryProducer := producer.NewTelemetry(producer.TelemetryConfig{
		Interval:   cfg.GetTelemetryInterval(),
		Publisher:  session,
		Spool:      spoolOrNil(store),
		SpoolTopic: topics.Telemetry(),
		Logger:     log,
	})
	telemetryProducer.Start(ctx)
	defer telemetryProducer.Stop()

	sensorSim := producer.NewSensorSim(producer.SensorSimConfig{
		Interval:  cfg.GetSensorInterval(),
		Publisher: session,
		Logger:    log,
	})
	sensorSim.Start(ctx)
	defer sensorSim.Stop()

	healthReporter := producer.NewHealthReporter(producer.HealthReporterConfig{
		Interval:  cfg.GetHealthInterval(),
		Publisher: session,
		Prober:    prober,
		Logger:    log,
	})
	healthReporter.Start(ctx)
	defer healthReporter.Stop()

	// Optional ops API
	if cfg.API.Enabled {
		opsAPI, apiErr := api.New(api.Deps{
			Config:  cfg.API,
			Logger:  log,
			Tracker: tracker,
			Prober:  prober,
			Session: session,
			Version: version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating ops API: %w", apiErr)
		}
		if startErr := opsAPI.Start(); startErr != nil {
			return fmt.Errorf("starting ops API: %w", startErr)
		}
		defer func() {
			if closeErr := opsAPI.Close(); closeErr != nil {
				log.Error("error closing ops API", "error", closeErr)
			}
		}()
	}

	log.Info("agent running",
		"device_id", cfg.Agent.DeviceID,
		"base_topic", cfg.Agent.BaseTopic,
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
	)

	<-ctx.Done()
	log.Info("shutdown signal received")
	return nil
}

// spoolOrNil converts a possibly-nil *spool.Store into the producer's
// Spooler interface without smuggling a typed nil through.
func spoolOrNil(store *spool.Store) producer.Spooler {
	if store == nil {
		return nil
	}
	return store
}

// getConfigPath returns the config file path from args or the default.
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return defaultConfigPath
}
