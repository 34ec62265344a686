// FilePath: internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrosense/plothub/internal/config"
	"github.com/agrosense/plothub/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Sensors caches sensor lookups by code on the ingest path. A cache failure
// is never an error; it degrades to a store lookup.
type Sensors interface {
	GetByCode(ctx context.Context, code string) (*models.Sensor, bool)
	SetByCode(ctx context.Context, sensor *models.Sensor)
	Invalidate(ctx context.Context, code string)
	Close() error
}

type RedisSensors struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSensors connects to redis and verifies the connection.
func NewRedisSensors(cfg config.RedisConfig) (*RedisSensors, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	nuts.L.Infof("[RedisSensors] Connected to %s:%d", cfg.Host, cfg.Port)
	return &RedisSensors{client: client, ttl: cfg.TTL}, nil
}

func sensorCodeKey(code string) string {
	return "plothub:sensor:code:" + code
}

func (c *RedisSensors) GetByCode(ctx context.Context, code string) (*models.Sensor, bool) {
	data, err := c.client.Get(ctx, sensorCodeKey(code)).Bytes()
	if err != nil {
		if err != redis.Nil {
			nuts.L.Warnf("[RedisSensors] Get %s failed: %v", code, err)
		}
		return nil, false
	}

	sensor := &models.Sensor{}
	if err := json.Unmarshal(data, sensor); err != nil {
		nuts.L.Warnf("[RedisSensors] Corrupt cache entry for %s: %v", code, err)
		return nil, false
	}
	return sensor, true
}

func (c *RedisSensors) SetByCode(ctx context.Context, sensor *models.Sensor) {
	data, err := json.Marshal(sensor)
	if err != nil {
		nuts.L.Warnf("[RedisSensors] Marshal sensor %s failed: %v", sensor.ID, err)
		return
	}
	if err := c.client.Set(ctx, sensorCodeKey(sensor.Code), data, c.ttl).Err(); err != nil {
		nuts.L.Warnf("[RedisSensors] Set %s failed: %v", sensor.Code, err)
	}
}

func (c *RedisSensors) Invalidate(ctx context.Context, code string) {
	if err := c.client.Del(ctx, sensorCodeKey(code)).Err(); err != nil {
		nuts.L.Warnf("[RedisSensors] Invalidate %s failed: %v", code, err)
	}
}

func (c *RedisSensors) Close() error {
	return c.client.Close()
}

// NoopSensors is used when redis is not configured; every lookup misses.
type NoopSensors struct{}

func NewNoopSensors() *NoopSensors { return &NoopSensors{} }

func (c *NoopSensors) GetByCode(ctx context.Context, code string) (*models.Sensor, bool) {
	return nil, false
}

func (c *NoopSensors) SetByCode(ctx context.Context, sensor *models.Sensor) {}

func (c *NoopSensors) Invalidate(ctx context.Context, code string) {}

func (c *NoopSensors) Close() error { return nil }
