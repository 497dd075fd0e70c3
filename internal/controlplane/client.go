// Package controlplane talks to the REST service that runs the trading bot on the VPS.
package controlplane

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/planetprotrader/backend/pkg/httputil"
	"github.com/planetprotrader/backend/pkg/logger"
)

var (
	// ErrInvalidURL is returned when the base URL cannot be used
	ErrInvalidURL = errors.New("Invalid URL")
	// ErrNoData is returned for an empty response body
	ErrNoData = errors.New("No data received")
	// ErrInvalidResponse is returned for a body that does not decode
	ErrInvalidResponse = errors.New("Invalid response format")
)

// Endpoints on the control service
const (
	EndpointStatus  = "/status"
	EndpointAccount = "/account"
	EndpointTrades  = "/trades"
	EndpointControl = "/control/"
)

// Actions accepted by POST /control/{action}
const (
	ActionStart = "start"
	ActionStop  = "stop"
)

// StatusError is a non-2xx reply
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.Endpoint, e.StatusCode)
}

// Client calls the control service at a fixed base URL
type Client struct {
	base   string
	http   *httputil.Client
	logger *logger.Logger
}

// NewClient validates baseURL and creates a client
func NewClient(baseURL string, http *httputil.Client, log *logger.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return &Client{
		base:   strings.TrimRight(u.String(), "/"),
		http:   http,
		logger: log.WithComponent("controlplane"),
	}, nil
}

// BaseURL returns the normalised base URL
func (c *Client) BaseURL() string {
	return c.base
}

// Status fetches GET /status
func (c *Client) Status(ctx context.Context) (*BotStatus, error) {
	var out BotStatus
	if err := c.getJSON(ctx, EndpointStatus, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Account fetches GET /account
func (c *Client) Account(ctx context.Context) (*AccountInfo, error) {
	var out AccountInfo
	if err := c.getJSON(ctx, EndpointAccount, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Trades fetches GET /trades
func (c *Client) Trades(ctx context.Context) (*TradeHistory, error) {
	var out TradeHistory
	if err := c.getJSON(ctx, EndpointTrades, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Start posts /control/start and returns the service's message
func (c *Client) Start(ctx context.Context) (string, error) {
	return c.control(ctx, ActionStart)
}

// Stop posts /control/stop and returns the service's message
func (c *Client) Stop(ctx context.Context) (string, error) {
	return c.control(ctx, ActionStop)
}

func (c *Client) control(ctx context.Context, action string) (string, error) {
	endpoint := EndpointControl + action
	resp, err := c.http.PostJSON(ctx, c.base+endpoint, nil)
	if err != nil {
		return "", err
	}

	body, err := readBody(endpoint, resp)
	if err != nil {
		return "", err
	}

	var out controlResponse
	if err := json.Unmarshal(body, &out); err != nil || out.Message == "" {
		return "", ErrInvalidResponse
	}

	c.logger.WithFields(map[string]interface{}{
		"action":  action,
		"message": out.Message,
	}).Info("Control action accepted")
	return out.Message, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	resp, err := c.http.Get(ctx, c.base+endpoint)
	if err != nil {
		return err
	}

	body, err := readBody(endpoint, resp)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		c.logger.WithError(err).WithField("endpoint", endpoint).Debug("Undecodable control response")
		return ErrInvalidResponse
	}
	return nil
}

func readBody(endpoint string, resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	if len(body) == 0 {
		return nil, ErrNoData
	}
	return body, nil
}
