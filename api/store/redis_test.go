package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"watchdog/api/model"
)

const testMaxExpire = 30 * 24 * 3600

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return New(rdb, testMaxExpire), mr
}

func testConfig() *model.WatchdogConfig {
	return &model.WatchdogConfig{
		Timeout:    120,
		Expire:     3600,
		AlertURL:   "https://example.com/alert",
		RecoverURL: "https://example.com/recover",
	}
}

func TestKeyHelpers(t *testing.T) {
	if got := ConfigKey("abc123"); got != "watchdog:abc123:config" {
		t.Errorf("ConfigKey = %q", got)
	}
	if got := HeartbeatKey("abc123"); got != "watchdog:abc123:heartbeat" {
		t.Errorf("HeartbeatKey = %q", got)
	}
}

func TestWatchdogID(t *testing.T) {
	cases := []struct {
		key string
		wid string
		ok  bool
	}{
		{"watchdog:abc123:heartbeat", "abc123", true},
		{"watchdog:abc123:config", "", false},
		{"watchdog::heartbeat", "", false},
		{"watchdog:heartbeat", "", false},
		{"session:abc123:heartbeat", "", false},
		{"unrelated", "", false},
	}
	for _, tc := range cases {
		wid, ok := WatchdogID(tc.key)
		if wid != tc.wid || ok != tc.ok {
			t.Errorf("WatchdogID(%q) = %q, %v; want %q, %v", tc.key, wid, ok, tc.wid, tc.ok)
		}
	}
}

func TestSaveLoadConfig(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveConfig(ctx, "abc123", testConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	cfg, err := s.LoadConfig(ctx, "abc123")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Timeout != 120 {
		t.Errorf("Timeout = %d, want 120", cfg.Timeout)
	}
	if cfg.Expire != 3600 {
		t.Errorf("Expire = %d, want 3600", cfg.Expire)
	}
	if cfg.AlertURL != "https://example.com/alert" {
		t.Errorf("AlertURL = %q", cfg.AlertURL)
	}
	if cfg.RecoverURL != "https://example.com/recover" {
		t.Errorf("RecoverURL = %q", cfg.RecoverURL)
	}

	ttl := mr.TTL(ConfigKey("abc123"))
	if ttl != 3600*time.Second {
		t.Errorf("config TTL = %v, want 1h", ttl)
	}
}

func TestLoadConfigNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.LoadConfig(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveConfigClampsExpire(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	cfg := testConfig()
	cfg.Expire = testMaxExpire + 999
	if err := s.SaveConfig(ctx, "w1", cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := s.LoadConfig(ctx, "w1")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Expire != testMaxExpire {
		t.Errorf("Expire = %d, want clamped %d", got.Expire, testMaxExpire)
	}
	if ttl := mr.TTL(ConfigKey("w1")); ttl != time.Duration(testMaxExpire)*time.Second {
		t.Errorf("config TTL = %v, want max", ttl)
	}
}

func TestSaveConfigZeroExpireMeansCap(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	cfg := testConfig()
	cfg.Expire = 0
	if err := s.SaveConfig(ctx, "w1", cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	got, err := s.LoadConfig(ctx, "w1")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Expire != testMaxExpire {
		t.Errorf("Expire = %d, want %d", got.Expire, testMaxExpire)
	}
}

func TestSaveConfigOverwrites(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveConfig(ctx, "w1", testConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	updated := &model.WatchdogConfig{
		Timeout:    30,
		Expire:     600,
		AlertURL:   "https://other.example.com/alert",
		RecoverURL: "https://other.example.com/recover",
	}
	if err := s.SaveConfig(ctx, "w1", updated); err != nil {
		t.Fatalf("SaveConfig update: %v", err)
	}

	got, err := s.LoadConfig(ctx, "w1")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got.Timeout != 30 || got.Expire != 600 {
		t.Errorf("got %+v, want full overwrite", got)
	}
	if got.AlertURL != "https://other.example.com/alert" {
		t.Errorf("AlertURL = %q, want overwritten", got.AlertURL)
	}
}

func TestHeartbeatLifecycle(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	alive, err := s.HeartbeatExists(ctx, "w1")
	if err != nil {
		t.Fatalf("HeartbeatExists: %v", err)
	}
	if alive {
		t.Fatal("heartbeat should not exist yet")
	}

	if err := s.SetHeartbeat(ctx, "w1", 120); err != nil {
		t.Fatalf("SetHeartbeat: %v", err)
	}

	alive, err = s.HeartbeatExists(ctx, "w1")
	if err != nil {
		t.Fatalf("HeartbeatExists: %v", err)
	}
	if !alive {
		t.Fatal("heartbeat should exist")
	}

	ttl, err := s.HeartbeatTTL(ctx, "w1")
	if err != nil {
		t.Fatalf("HeartbeatTTL: %v", err)
	}
	if ttl != 120*time.Second {
		t.Errorf("heartbeat TTL = %v, want 2m", ttl)
	}

	// A second ping resets the window even while alive.
	mr.FastForward(60 * time.Second)
	if err := s.SetHeartbeat(ctx, "w1", 120); err != nil {
		t.Fatalf("SetHeartbeat: %v", err)
	}
	ttl, _ = s.HeartbeatTTL(ctx, "w1")
	if ttl != 120*time.Second {
		t.Errorf("heartbeat TTL after reset = %v, want 2m", ttl)
	}

	// Let it lapse: the store removes the marker on its own.
	mr.FastForward(121 * time.Second)
	alive, err = s.HeartbeatExists(ctx, "w1")
	if err != nil {
		t.Fatalf("HeartbeatExists: %v", err)
	}
	if alive {
		t.Fatal("heartbeat should have expired")
	}
}

func TestTTLOfMissingKeyIsNegative(t *testing.T) {
	s, _ := newTestStore(t)

	ttl, err := s.HeartbeatTTL(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("HeartbeatTTL: %v", err)
	}
	if ttl > 0 {
		t.Errorf("TTL = %v, want non-positive for missing key", ttl)
	}
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveConfig(ctx, "w1", testConfig()); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := s.SetHeartbeat(ctx, "w1", 120); err != nil {
		t.Fatalf("SetHeartbeat: %v", err)
	}

	existed, err := s.Delete(ctx, "w1")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !existed {
		t.Fatal("Delete should report records existed")
	}

	if _, err := s.LoadConfig(ctx, "w1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("config still loadable after delete: %v", err)
	}
	alive, _ := s.HeartbeatExists(ctx, "w1")
	if alive {
		t.Error("heartbeat survived delete")
	}

	existed, err = s.Delete(ctx, "w1")
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if existed {
		t.Error("second delete should report nothing existed")
	}
}

func TestConfigExpiresIndependently(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	cfg := testConfig()
	cfg.Expire = 100
	cfg.Timeout = 300 // heartbeat outlives config on purpose
	if err := s.SaveConfig(ctx, "w1", cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := s.SetHeartbeat(ctx, "w1", cfg.Timeout); err != nil {
		t.Fatalf("SetHeartbeat: %v", err)
	}

	mr.FastForward(101 * time.Second)

	if _, err := s.LoadConfig(ctx, "w1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("config should have expired, got %v", err)
	}
	alive, _ := s.HeartbeatExists(ctx, "w1")
	if !alive {
		t.Error("heartbeat should still be present; its TTL is independent")
	}
}
