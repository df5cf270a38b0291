package listener

import (
	"context"
	"errors"
	"fmt"
	"log"

	"watchdog/api/hub"
	"watchdog/api/notify"
	"watchdog/api/store"
)

// Listener consumes the store's key-expiration channel and turns heartbeat
// expirations into alert dispatches. Exactly one Listener runs per store
// endpoint; a second instance would double-fire every alert.
type Listener struct {
	Store      *store.Store
	Dispatcher notify.Invoker
	Hub        *hub.Hub
	Channel    string // e.g. __keyevent@0__:expired
}

// Run subscribes and processes notifications until ctx is cancelled. A
// failure to establish the subscription is returned; the caller treats it as
// fatal, since the service is useless without expiration events. Errors
// while handling an individual notification are logged and isolated.
func (l *Listener) Run(ctx context.Context) error {
	ps := l.Store.Subscribe(ctx, l.Channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return fmt.Errorf("subscribe %s: %w", l.Channel, err)
	}
	defer ps.Close()

	log.Printf("listener: subscribed to %s", l.Channel)

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			l.handleExpiration(ctx, msg.Payload)
		}
	}
}

// handleExpiration processes one expired-key notification. Keys outside the
// heartbeat namespace (config keys included) are not alert triggers. A
// missing config means the watchdog's own lifetime also lapsed, or it was
// deleted, between marker expiry and this notification; that race is normal
// and skipped silently.
func (l *Listener) handleExpiration(ctx context.Context, key string) {
	wid, ok := store.WatchdogID(key)
	if !ok {
		return
	}

	cfg, err := l.Store.LoadConfig(ctx, wid)
	if errors.Is(err, store.ErrNotFound) {
		log.Printf("[%s] heartbeat expired but config gone, watchdog dead", wid)
		return
	}
	if err != nil {
		log.Printf("listener: %v", err)
		return
	}

	log.Printf("[%s] heartbeat expired, calling alert_url", wid)
	l.Dispatcher.Go(cfg.AlertURL, wid+"/alert")
	if l.Hub != nil {
		l.Hub.Broadcast(hub.Event{Type: "watchdog.alert", WatchdogID: wid})
	}
}
