package model

import (
	"fmt"
	"net/url"
)

// Status of a watchdog, derived from the presence of its heartbeat marker.
// A watchdog whose config record is gone has no status at all; it is
// reported as not found.
type Status string

const (
	StatusWatching Status = "watching"
	StatusAlert    Status = "alert"
)

// WatchdogConfig is the caller-supplied contract for one watchdog: how often
// a ping must arrive, how long the watchdog itself lives, and which URLs to
// hit on alert and on recovery.
type WatchdogConfig struct {
	Timeout    int    `json:"timeout"`          // seconds between required pings
	Expire     int    `json:"expire,omitempty"` // seconds until the watchdog itself lapses
	AlertURL   string `json:"alert_url"`
	RecoverURL string `json:"recover_url"`
}

// StatusInfo is the read-model returned by GET /watchdog/{wid}.
type StatusInfo struct {
	ID           string `json:"id"`
	Status       Status `json:"status"`
	Timeout      int    `json:"timeout"`
	ExpireIn     int64  `json:"expire_in"`
	HeartbeatTTL int64  `json:"heartbeat_ttl"`
	AlertURL     string `json:"alert_url"`
	RecoverURL   string `json:"recover_url"`
}

// ValidationError reports a rejected field at creation time. It maps to a
// 400 at the API boundary and is never persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a config before it is saved. maxExpire is the system-wide
// cap on watchdog lifetime; an Expire of zero means "use the cap".
func (c *WatchdogConfig) Validate(maxExpire int) error {
	if c.Timeout <= 0 {
		return &ValidationError{Field: "timeout", Message: "must be greater than 0"}
	}
	if c.Expire < 0 {
		return &ValidationError{Field: "expire", Message: "must not be negative"}
	}
	if c.Expire > maxExpire {
		return &ValidationError{
			Field:   "expire",
			Message: fmt.Sprintf("must be <= %ds", maxExpire),
		}
	}
	if err := checkURL("alert_url", c.AlertURL); err != nil {
		return err
	}
	return checkURL("recover_url", c.RecoverURL)
}

func checkURL(field, raw string) error {
	if raw == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return &ValidationError{Field: field, Message: "must be an absolute URL"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: field, Message: "must use http or https"}
	}
	return nil
}
