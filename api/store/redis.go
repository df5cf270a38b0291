package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"watchdog/api/model"
)

// ErrNotFound means the watchdog's config record is absent: it expired, was
// deleted, or never existed. The API layer maps it to a 404.
var ErrNotFound = errors.New("watchdog not found")

const (
	keyPrefix       = "watchdog:"
	configSuffix    = ":config"
	heartbeatSuffix = ":heartbeat"
)

// Store keeps the two TTL'd records of each watchdog: a config hash whose
// TTL is the watchdog's lifetime, and a heartbeat marker whose TTL is
// the ping window. State is never stored explicitly; it is derived from
// which of the two records still exist.
type Store struct {
	rdb       *redis.Client
	maxExpire int // seconds; cap applied to config TTLs
}

func Connect(redisURL string, maxExpire int) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb, maxExpire: maxExpire}, nil
}

// New wraps an existing client. Tests use this with miniredis.
func New(rdb *redis.Client, maxExpire int) *Store {
	return &Store{rdb: rdb, maxExpire: maxExpire}
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func ConfigKey(wid string) string {
	return keyPrefix + wid + configSuffix
}

func HeartbeatKey(wid string) string {
	return keyPrefix + wid + heartbeatSuffix
}

// WatchdogID extracts the watchdog id from a heartbeat key. It reports false
// for config keys and anything else that shows up on the expiration channel.
func WatchdogID(key string) (string, bool) {
	rest := strings.TrimPrefix(key, keyPrefix)
	if rest == key {
		return "", false
	}
	wid := strings.TrimSuffix(rest, heartbeatSuffix)
	if wid == rest || wid == "" {
		return "", false
	}
	return wid, true
}

// SaveConfig writes all config fields and sets the record's TTL to the
// clamped expire. A repeat call fully overwrites the prior config and resets
// its TTL; there are no merge semantics. An Expire of zero means the cap.
func (s *Store) SaveConfig(ctx context.Context, wid string, cfg *model.WatchdogConfig) error {
	expire := cfg.Expire
	if expire <= 0 || expire > s.maxExpire {
		expire = s.maxExpire
	}

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, ConfigKey(wid), map[string]interface{}{
		"timeout":     strconv.Itoa(cfg.Timeout),
		"expire":      strconv.Itoa(expire),
		"alert_url":   cfg.AlertURL,
		"recover_url": cfg.RecoverURL,
	})
	pipe.Expire(ctx, ConfigKey(wid), time.Duration(expire)*time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save config %s: %w", wid, err)
	}
	return nil
}

func (s *Store) LoadConfig(ctx context.Context, wid string) (*model.WatchdogConfig, error) {
	fields, err := s.rdb.HGetAll(ctx, ConfigKey(wid)).Result()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", wid, err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}

	timeout, err := strconv.Atoi(fields["timeout"])
	if err != nil {
		return nil, fmt.Errorf("load config %s: bad timeout %q", wid, fields["timeout"])
	}
	expire, _ := strconv.Atoi(fields["expire"])

	return &model.WatchdogConfig{
		Timeout:    timeout,
		Expire:     expire,
		AlertURL:   fields["alert_url"],
		RecoverURL: fields["recover_url"],
	}, nil
}

// SetHeartbeat (re)creates the heartbeat marker with TTL = timeout,
// regardless of whether one was present. Every ping lands here.
func (s *Store) SetHeartbeat(ctx context.Context, wid string, timeout int) error {
	err := s.rdb.Set(ctx, HeartbeatKey(wid), "1", time.Duration(timeout)*time.Second).Err()
	if err != nil {
		return fmt.Errorf("set heartbeat %s: %w", wid, err)
	}
	return nil
}

func (s *Store) HeartbeatExists(ctx context.Context, wid string) (bool, error) {
	n, err := s.rdb.Exists(ctx, HeartbeatKey(wid)).Result()
	if err != nil {
		return false, fmt.Errorf("heartbeat exists %s: %w", wid, err)
	}
	return n == 1, nil
}

// Delete removes both records and reports whether anything was there,
// so the API layer can answer 404 on a double delete.
func (s *Store) Delete(ctx context.Context, wid string) (bool, error) {
	n, err := s.rdb.Del(ctx, ConfigKey(wid), HeartbeatKey(wid)).Result()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", wid, err)
	}
	return n > 0, nil
}

// ConfigTTL returns the remaining lifetime of the config record. Missing or
// persistent keys come back negative; callers treat non-positive as expired.
func (s *Store) ConfigTTL(ctx context.Context, wid string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, ConfigKey(wid)).Result()
	if err != nil {
		return 0, fmt.Errorf("config ttl %s: %w", wid, err)
	}
	return d, nil
}

func (s *Store) HeartbeatTTL(ctx context.Context, wid string) (time.Duration, error) {
	d, err := s.rdb.TTL(ctx, HeartbeatKey(wid)).Result()
	if err != nil {
		return 0, fmt.Errorf("heartbeat ttl %s: %w", wid, err)
	}
	return d, nil
}

// EnableExpiryNotifications asks redis to publish key-expiration events.
// Managed deployments often forbid CONFIG; the caller decides whether a
// failure is fatal (the operator may have configured it out of band).
func (s *Store) EnableExpiryNotifications(ctx context.Context) error {
	return s.rdb.ConfigSet(ctx, "notify-keyspace-events", "Ex").Err()
}

// Subscribe opens a pattern subscription on the expiration channel. The
// caller owns the returned handle and must Close it.
func (s *Store) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return s.rdb.PSubscribe(ctx, channel)
}
