package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type WatchdogSpec struct {
	Timeout    int    `json:"timeout"`
	Expire     int    `json:"expire,omitempty"`
	AlertURL   string `json:"alert_url"`
	RecoverURL string `json:"recover_url"`
}

type Created struct {
	ID      string `json:"id"`
	Timeout int    `json:"timeout"`
	Expire  int    `json:"expire"`
}

type WatchdogStatus struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	Timeout      int    `json:"timeout"`
	ExpireIn     int64  `json:"expire_in"`
	HeartbeatTTL int64  `json:"heartbeat_ttl"`
	AlertURL     string `json:"alert_url"`
	RecoverURL   string `json:"recover_url"`
}

type PingResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *Client) Register(id string, spec WatchdogSpec) (*Created, error) {
	path := "/watchdogs"
	if id != "" {
		path = "/watchdog/" + id
	}
	var created Created
	if err := c.post(path, spec, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) Status(id string) (*WatchdogStatus, error) {
	var ws WatchdogStatus
	if err := c.get("/watchdog/"+id, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (c *Client) Ping(id string) (*PingResult, error) {
	var res PingResult
	if err := c.get("/watchdog/"+id+"/ping", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Remove(id string) error {
	return c.delete("/watchdog/" + id)
}

func (c *Client) get(path string, v any) error {
	resp, err := c.HTTPClient.Get(c.BaseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) post(path string, body, v any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Post(
		c.BaseURL+path,
		"application/json",
		strings.NewReader(string(data)),
	)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if v == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
