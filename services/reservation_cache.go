package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-reservations/models"
	"github.com/yeremiapane/restaurant-reservations/utils"
)

// ReservationCache holds the per-date dashboard list. Implementations never
// fail a request: errors are logged and treated as a miss.
type ReservationCache interface {
	Get(ctx context.Context, date string) ([]models.Reservation, bool)
	Set(ctx context.Context, date string, reservations []models.Reservation)
	Invalidate(ctx context.Context, dates ...string)
}

type NoopReservationCache struct{}

func (NoopReservationCache) Get(context.Context, string) ([]models.Reservation, bool) {
	return nil, false
}
func (NoopReservationCache) Set(context.Context, string, []models.Reservation) {}
func (NoopReservationCache) Invalidate(context.Context, ...string)             {}

type RedisReservationCache struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

// NewReservationCache returns a Redis-backed cache, or a no-op cache when
// client is nil.
func NewReservationCache(client *redis.Client, ttl time.Duration) ReservationCache {
	if client == nil {
		return NoopReservationCache{}
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisReservationCache{Client: client, TTL: ttl, Prefix: "reservations:date"}
}

func (rc *RedisReservationCache) key(date string) string {
	return rc.Prefix + ":" + date
}

func (rc *RedisReservationCache) Get(ctx context.Context, date string) ([]models.Reservation, bool) {
	raw, err := rc.Client.Get(ctx, rc.key(date)).Bytes()
	if err != nil {
		if err != redis.Nil {
			utils.ErrorLogger.Printf("reservation cache get %s: %v", date, err)
		}
		return nil, false
	}
	var reservations []models.Reservation
	if err := json.Unmarshal(raw, &reservations); err != nil {
		utils.ErrorLogger.Printf("reservation cache decode %s: %v", date, err)
		return nil, false
	}
	return reservations, true
}

func (rc *RedisReservationCache) Set(ctx context.Context, date string, reservations []models.Reservation) {
	raw, err := json.Marshal(reservations)
	if err != nil {
		utils.ErrorLogger.Printf("reservation cache encode %s: %v", date, err)
		return
	}
	if err := rc.Client.Set(ctx, rc.key(date), raw, rc.TTL).Err(); err != nil {
		utils.ErrorLogger.Printf("reservation cache set %s: %v", date, err)
	}
}

func (rc *RedisReservationCache) Invalidate(ctx context.Context, dates ...string) {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		if d != "" {
			keys = append(keys, rc.key(d))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := rc.Client.Del(ctx, keys...).Err(); err != nil {
		utils.ErrorLogger.Printf("reservation cache invalidate %v: %v", dates, err)
	}
}
