// Package pid registers persistent identifiers with an external handle
// service over HTTP.
package pid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"catalogcore/pkg/domain"
)

// Config holds the handle service connection parameters.
type Config struct {
	Endpoint       string        // handle service base URL
	Prefix         string        // handle prefix assigned to this registry
	User           string        // admin handle user, e.g. 300:prefix/admin
	AuthToken      string        // bearer token
	MarketplaceURL string        // base URL the minted handle resolves to
	Timeout        time.Duration // per-request timeout, default 10s
}

// FromEnv reads the handle service configuration from process environment.
//
//	CATALOGCORE_PID_ENDPOINT=<url> (required)
//	CATALOGCORE_PID_PREFIX=<prefix> (required)
//	CATALOGCORE_PID_USER=<handle user>
//	CATALOGCORE_PID_AUTH_TOKEN=<token>
//	CATALOGCORE_PID_MARKETPLACE_URL=<url>
func FromEnv() (Config, error) {
	cfg := Config{
		Endpoint:       os.Getenv("CATALOGCORE_PID_ENDPOINT"),
		Prefix:         os.Getenv("CATALOGCORE_PID_PREFIX"),
		User:           os.Getenv("CATALOGCORE_PID_USER"),
		AuthToken:      os.Getenv("CATALOGCORE_PID_AUTH_TOKEN"),
		MarketplaceURL: os.Getenv("CATALOGCORE_PID_MARKETPLACE_URL"),
	}
	if cfg.Endpoint == "" {
		return Config{}, fmt.Errorf("CATALOGCORE_PID_ENDPOINT required")
	}
	if cfg.Prefix == "" {
		return Config{}, fmt.Errorf("CATALOGCORE_PID_PREFIX required")
	}
	return cfg, nil
}

// Client talks to the handle service. It satisfies the service's PIDRegistrar
// interface.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewClient returns a handle service client.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: timeout}, log: log}
}

type handleValue struct {
	Index int        `json:"index"`
	Type  string     `json:"type"`
	Data  handleData `json:"data"`
}

type handleData struct {
	Format string `json:"format"`
	Value  any    `json:"value"`
}

type handleAdmin struct {
	Handle string `json:"handle"`
	Index  int    `json:"index"`
	// Admin permissions bitmask in the handle system's string form.
	Permissions string `json:"permissions"`
}

// Register creates or replaces the handle record {prefix}/{pid}. The record
// resolves to the marketplace page of the resource.
func (c *Client) Register(ctx context.Context, pid, resourceTypePath, resourceID string) error {
	adminHandle := c.cfg.Prefix + "/admin"
	adminIndex := 300
	if parts := strings.SplitN(c.cfg.User, ":", 2); len(parts) == 2 {
		if _, err := fmt.Sscanf(parts[0], "%d", &adminIndex); err == nil {
			adminHandle = parts[1]
		}
	}
	values := []handleValue{
		{Index: 1, Type: "id", Data: handleData{Format: "string", Value: resourceID}},
		{Index: 2, Type: "url", Data: handleData{Format: "string", Value: fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.cfg.MarketplaceURL, "/"), resourceTypePath, resourceID)}},
		{Index: 100, Type: "HS_ADMIN", Data: handleData{Format: "admin", Value: handleAdmin{Handle: adminHandle, Index: adminIndex, Permissions: "011111110011"}}},
	}
	body, err := json.Marshal(struct {
		Values []handleValue `json:"values"`
	}{Values: values})
	if err != nil {
		return domain.ExternalServiceError{Op: "encode handle record", Err: err}
	}
	target := fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.cfg.Endpoint, "/"), c.cfg.Prefix, pid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, bytes.NewReader(body))
	if err != nil {
		return domain.ExternalServiceError{Op: "build handle request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.AuthToken)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return domain.ExternalServiceError{Op: "register handle " + c.cfg.Prefix + "/" + pid, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.ExternalServiceError{Op: "register handle " + c.cfg.Prefix + "/" + pid, Err: fmt.Errorf("handle service returned %s", resp.Status)}
	}
	c.log.Debug().Str("handle", c.cfg.Prefix+"/"+pid).Str("resource", resourceID).Msg("registered handle")
	return nil
}
