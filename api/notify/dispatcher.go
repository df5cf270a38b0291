package notify

import (
	"context"
	"log"
	"net/http"
	"time"
)

// Invoker is the dispatch surface the handlers and the expiration listener
// depend on. Tests substitute a recording fake; completion is intentionally
// unobservable to callers.
type Invoker interface {
	Go(url, label string)
}

// Dispatcher fires webhook GETs. Delivery is best effort: failures are
// logged with the label for correlation and never returned, so the alerting
// path can't become a source of cascading failure.
type Dispatcher struct {
	Client  *http.Client
	Timeout time.Duration
}

func New(timeout time.Duration) *Dispatcher {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		Client:  &http.Client{Timeout: timeout},
		Timeout: timeout,
	}
}

// Invoke issues one GET to url. Any transport error or response is logged
// and swallowed.
func (d *Dispatcher) Invoke(ctx context.Context, url, label string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("[%s] GET %s failed: %v", label, url, err)
		return
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		log.Printf("[%s] GET %s failed: %v", label, url, err)
		return
	}
	resp.Body.Close()
	log.Printf("[%s] GET %s -> %d", label, url, resp.StatusCode)
}

// Go schedules Invoke on its own goroutine with its own timeout context.
// The caller returns immediately; an in-flight call may be abandoned at
// process shutdown.
func (d *Dispatcher) Go(url, label string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
		defer cancel()
		d.Invoke(ctx, url, label)
	}()
}
