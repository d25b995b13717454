// Package client talks to a running wifiinfod over its REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	wifiinfo "github.com/dogeorg/wifiinfo/pkg"
	"github.com/go-resty/resty/v2"
)

type Client struct {
	rc *resty.Client
}

func New(baseURL string) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(5 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{rc: rc}
}

// ObserverStatus mirrors the daemon's /wifi/observer response.
type ObserverStatus struct {
	Active      bool               `json:"active"`
	Subscribers int                `json:"subscribers"`
	Last        *wifiinfo.Snapshot `json:"last"`
}

// GetSnapshot returns nil, nil when the daemon has no permission to read
// the connection.
func (c *Client) GetSnapshot(ctx context.Context) (*wifiinfo.Snapshot, error) {
	resp, err := c.rc.R().SetContext(ctx).Get("/wifi")
	if err != nil {
		return nil, fmt.Errorf("get /wifi: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get /wifi: %s", resp.Status())
	}

	var snap *wifiinfo.Snapshot
	if err := json.Unmarshal(resp.Body(), &snap); err != nil {
		return nil, fmt.Errorf("decode /wifi: %w", err)
	}
	return snap, nil
}

func (c *Client) ObserverStatus(ctx context.Context) (*ObserverStatus, error) {
	return c.observer(ctx, "GET", "/wifi/observer")
}

func (c *Client) StartObserving(ctx context.Context) (*ObserverStatus, error) {
	return c.observer(ctx, "POST", "/wifi/observer/start")
}

func (c *Client) StopObserving(ctx context.Context) (*ObserverStatus, error) {
	return c.observer(ctx, "POST", "/wifi/observer/stop")
}

func (c *Client) observer(ctx context.Context, method, path string) (*ObserverStatus, error) {
	status := &ObserverStatus{}
	resp, err := c.rc.R().SetContext(ctx).SetResult(status).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%s %s: %s", method, path, resp.Status())
	}
	return status, nil
}
