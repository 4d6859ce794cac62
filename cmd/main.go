package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"openhab_updater/internal/connection"
	"openhab_updater/internal/handlers"
	"openhab_updater/internal/logger"
	"openhab_updater/internal/notify"
	"openhab_updater/internal/openhab"
	"openhab_updater/internal/repository"
	"openhab_updater/internal/server"
	"openhab_updater/internal/service"

	"github.com/spf13/viper"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// connection to the openHAB server, initialized asynchronously
	conn := openhab.NewConnection(
		viper.GetString("openhab.url"),
		viper.GetString("openhab.username"),
		viper.GetString("openhab.password"),
		viper.GetDuration("openhab.timeout"),
	)
	provider := connection.NewProvider(conn, log)
	if d := viper.GetDuration("openhab.probe_interval"); d > 0 {
		provider.SetProbeInterval(d)
	}
	go provider.Start(ctx)

	// wire dependencies
	repos := repository.NewRepository(db)
	notifier := buildNotifier(log)
	services := service.NewService(repos, provider, notifier, dispatchConfig(), viper.GetString("auth.signing_key"), log)
	apiHandler := handlers.NewHandler(services, log)

	// push terminal outcomes to WebSocket clients
	if d, ok := services.Dispatcher.(*service.DispatcherService); ok {
		d.AddObserver(apiHandler.BroadcastOutcome)
	}

	// start dispatcher worker pool
	go services.Dispatcher.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return repository.InitDB(dbPath)
}

// dispatchConfig reads worker-pool and backoff tuning from configuration;
// zero values fall back to the service defaults.
func dispatchConfig() service.DispatchConfig {
	return service.DispatchConfig{
		Workers:     viper.GetInt("dispatch.workers"),
		BackoffBase: viper.GetDuration("dispatch.backoff_base"),
		BackoffMax:  viper.GetDuration("dispatch.backoff_max"),
	}
}

// buildNotifier assembles the notification sinks: structured log always, MQTT
// when configured.
func buildNotifier(log *logger.Logger) notify.Notifier {
	sinks := notify.Multi{notify.NewLogNotifier(log)}
	if viper.GetBool("mqtt.enabled") {
		m, err := notify.NewMQTTNotifier(
			viper.GetString("mqtt.broker"),
			viper.GetString("mqtt.client_id"),
			viper.GetString("mqtt.topic_prefix"),
			log,
		)
		if err != nil {
			log.Warnw("mqtt notifier disabled", "err", err)
		} else {
			sinks = append(sinks, m)
		}
	}
	return sinks
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines; queued updates are recovered on restart
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
