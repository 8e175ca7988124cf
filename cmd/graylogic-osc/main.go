// Gray Logic OSC - control surface gateway for broadcast video switchers.
//
// This is the main entry point for the graylogic-osc service. It receives
// OSC messages from control surfaces (TouchOSC, Stream Deck, lighting desks)
// over UDP, validates them against the switcher's live topology, and turns
// accepted messages into switcher commands published over MQTT to the ATEM
// bridge. Rejected input is recorded to SQLite, InfluxDB, MQTT and the live
// WebSocket stream so operators can see why a button did nothing.
//
// Usage:
//
//	graylogic-osc                 run the service
//	graylogic-osc token [flags]   mint an API token
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/api"
	"github.com/nerrad567/gray-logic-osc/internal/audit"
	"github.com/nerrad567/gray-logic-osc/internal/diagnostics"
	"github.com/nerrad567/gray-logic-osc/internal/endpoints"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-osc/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-osc/internal/osc"
	"github.com/nerrad567/gray-logic-osc/internal/switcher"
	"github.com/nerrad567/gray-logic-osc/internal/transport"
	"github.com/nerrad567/gray-logic-osc/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// receiverStopTimeout bounds the wait for the UDP receiver after shutdown
// is signalled. One read timeout is normally enough.
const receiverStopTimeout = 5 * time.Second

func main() {
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		return
	}

	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Components are started in dependency order and stopped in reverse by the
// deferred calls: the UDP receiver stops first so no new commands arrive,
// then the API, the diagnostics recorder (which drains into still-open
// sinks), the switcher bridge (which publishes queued commands), and
// finally InfluxDB, MQTT and the database.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Logic OSC",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	applied, err := db.Migrate(ctx, migrations.FS)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete", "applied", applied)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Switcher bridge
	state := switcher.NewState(topology(cfg.Switcher.Capacity))
	bridge, err := switcher.NewBridge(switcher.BridgeOptions{
		SwitcherID: cfg.Switcher.ID,
		QueueSize:  cfg.Switcher.QueueSize,
		QoS:        byte(cfg.MQTT.QoS), //nolint:gosec // validated to 0-2
		MQTTClient: mqttClient,
		State:      state,
		Logger:     log.Component("switcher"),
	})
	if err != nil {
		return fmt.Errorf("creating switcher bridge: %w", err)
	}
	if err := bridge.Start(ctx); err != nil {
		return fmt.Errorf("starting switcher bridge: %w", err)
	}
	defer func() {
		log.Info("stopping switcher bridge")
		bridge.Stop()
	}()
	log.Info("switcher bridge started", "switcher_id", cfg.Switcher.ID)

	// Diagnostics: every drop goes to SQLite, MQTT and the live stream, plus
	// InfluxDB when enabled. The hub exists before the API server because
	// the recorder must be handed to the router at construction.
	hub := api.NewHub(cfg.WebSocket, log.Component("websocket"))
	go hub.Run(ctx)

	dropRepo := diagnostics.NewSQLiteRepository(db.DB)
	sinks := []diagnostics.Sink{
		dropRepo,
		diagnostics.NewMQTTSink(mqttClient),
		diagnostics.NewBroadcastSink(hub),
	}
	if influxClient != nil {
		sinks = append(sinks, diagnostics.NewInfluxSink(influxClient))
	}
	recorder := diagnostics.NewRecorder(diagnostics.Options{
		SwitcherID: cfg.Switcher.ID,
		Sinks:      sinks,
		Logger:     log.Component("diagnostics"),
	})
	recorder.Start(ctx)
	defer func() {
		log.Info("stopping diagnostics recorder")
		recorder.Stop()
	}()

	// Router and address catalogue
	policy, err := osc.ParsePolicy(cfg.OSC.UnvalidatedPolicy)
	if err != nil {
		return fmt.Errorf("configuring router: %w", err)
	}
	router := osc.NewRouter(osc.Options{
		Policy:         policy,
		SkipValidation: cfg.OSC.SkipValidation,
		Reporter:       recorder,
		Logger:         log.Component("osc"),
	})
	routes, err := endpoints.Register(router, endpoints.Options{
		Prefix:     cfg.OSC.AddressPrefix,
		Controller: bridge,
		State:      state,
	})
	if err != nil {
		return fmt.Errorf("registering OSC endpoints: %w", err)
	}
	log.Info("OSC endpoints registered",
		"routes", routes,
		"prefix", cfg.OSC.AddressPrefix,
		"policy", string(policy),
	)
	if policy == osc.PolicyForward {
		log.Warn("router forwards unvalidated messages; unknown addresses reach their endpoint unchecked")
	}

	receiver, err := transport.NewReceiver(transport.ReceiverOptions{
		Addr:        cfg.ListenAddr(),
		ReadTimeout: cfg.GetOSCReadTimeout(),
		Dispatcher:  router,
		Logger:      log.Component("transport"),
	})
	if err != nil {
		return fmt.Errorf("creating OSC receiver: %w", err)
	}

	auditRepo := audit.NewSQLiteRepository(db.DB)

	// HTTP API (optional)
	if cfg.API.Enabled {
		checks := map[string]api.HealthChecker{
			"database": db,
			"mqtt":     mqttClient,
		}
		if influxClient != nil {
			checks["influxdb"] = influxClient
		}
		server, apiErr := api.New(api.Deps{
			Config:      cfg.API,
			WS:          cfg.WebSocket,
			Security:    cfg.Security,
			Logger:      log.Component("api"),
			Router:      router,
			Switcher:    bridge,
			Receiver:    receiver,
			Recorder:    recorder,
			Drops:       dropRepo,
			Audit:       auditRepo,
			Checks:      checks,
			ExternalHub: hub,
			Version:     version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	} else {
		log.Info("API disabled")
	}

	stores := []retained{
		{name: "drop_events", store: dropRepo},
		{name: "audit_log", store: auditRepo},
	}
	keeper := &housekeeper{
		switcherID: cfg.Switcher.ID,
		retention:  cfg.GetRetention(),
		stores:     stores,
		router:     router,
		receiver:   receiver,
		bridge:     bridge,
		logger:     log.Component("housekeeping"),
	}
	if influxClient != nil {
		keeper.metrics = influxClient
	}
	go keeper.run(ctx, purgeInterval, countersInterval)

	// The receiver runs until ctx is cancelled.
	rxErr := make(chan error, 1)
	go func() { rxErr <- receiver.ListenAndServe(ctx) }()
	log.Info("initialisation complete, listening for OSC", "addr", cfg.ListenAddr())

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
		select {
		case err := <-rxErr:
			if err != nil {
				log.Error("OSC receiver stopped with error", "error", err)
			}
		case <-time.After(receiverStopTimeout):
			log.Warn("OSC receiver did not stop in time")
		}
	case err := <-rxErr:
		if err != nil {
			return fmt.Errorf("OSC receiver: %w", err)
		}
		if ctx.Err() == nil {
			return errors.New("OSC receiver stopped unexpectedly")
		}
	}

	log.Info("Gray Logic OSC stopped", "osc_packets", receiver.Stats().Packets)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYLOGIC_OSC_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYLOGIC_OSC_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// topology converts the configured capacity into the switcher's initial
// topology. Live state messages refine it once the bridge reports in.
func topology(c config.CapacityConfig) switcher.Topology {
	return switcher.Topology{
		MixEffects:       c.MixEffects,
		Inputs:           c.Inputs,
		Aux:              c.Aux,
		UpstreamKeyers:   c.UpstreamKeyers,
		DownstreamKeyers: c.DownstreamKeyers,
		MediaPlayers:     c.MediaPlayers,
		MediaClips:       c.MediaClips,
		MediaStills:      c.MediaStills,
		Macros:           c.Macros,
		SuperSourceBoxes: c.SuperSourceBoxes,
		AudioInputs:      c.AudioInputs,
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db api.HealthChecker, mqttClient api.HealthChecker, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}
	return nil
}
