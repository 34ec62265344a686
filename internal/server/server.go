// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrosense/plothub/api"
	"github.com/agrosense/plothub/internal/cache"
	"github.com/agrosense/plothub/internal/config"
	"github.com/agrosense/plothub/internal/database"
	"github.com/agrosense/plothub/internal/hubservice"
	"github.com/agrosense/plothub/internal/messaging"
	"github.com/agrosense/plothub/internal/repository/postgres"
	"github.com/agrosense/plothub/internal/repository/timescale"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	appDB      database.DB
	tsdb       database.DB
	sensors    cache.Sensors
	publisher  messaging.Publisher
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start wires dependencies and begins listening for requests
func (s *Server) Start() error {
	s.hubservice = s.initializeHubService()
	if err := s.hubservice.Validate(); err != nil {
		return err
	}

	s.srv.Handler = api.NewRouter(s.hubservice)

	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	s.publisher.Close()
	if err := s.sensors.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing sensor cache: %v", err)
	}
	if err := s.tsdb.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing TimescaleDB: %v", err)
	}
	if err := s.appDB.Close(); err != nil {
		nuts.L.Warnf("[Server] Error closing AppDB: %v", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// initializeHubService creates and configures the hub service
func (s *Server) initializeHubService() *hubservice.HubService {
	s.tsdb = initTimescaleDB(s.config.Database.TimescaleDB)
	s.appDB = initAppDB(s.config.Database.AppDB)

	sensors, err := postgres.NewSensorRepository(s.appDB)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize sensor repository: %v", err)
	}
	readings, err := timescale.NewReadingRepository(s.tsdb)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize reading repository: %v", err)
	}

	s.sensors = initSensorCache(s.config.Redis)
	s.publisher = initPublisher(s.config.Broker)

	return hubservice.New(sensors, readings, s.sensors, s.publisher)
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	db, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return db
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping AppDB: %v", err)
	}
	return db
}

// initSensorCache connects to redis, or degrades to a no-op cache when
// redis is not configured.
func initSensorCache(cfg config.RedisConfig) cache.Sensors {
	if cfg.Host == "" {
		nuts.L.Infof("[Server] Redis not configured, sensor cache disabled")
		return cache.NewNoopSensors()
	}

	sensors, err := cache.NewRedisSensors(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to redis: %v", err)
	}
	return sensors
}

// initPublisher connects to the broker, or degrades to a no-op publisher
// when no broker is configured.
func initPublisher(cfg config.BrokerConfig) messaging.Publisher {
	if cfg.Host == "" {
		nuts.L.Infof("[Server] Broker not configured, event publishing disabled")
		return messaging.NewNoopPublisher()
	}

	publisher, err := messaging.NewMQTTPublisher(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to broker: %v", err)
	}
	return publisher
}
