// Package chat implements the client for the community chat gateway.
// The gateway is a small HTTP service in front of the chat platform: the
// bot posts messages through it and long-polls it for member commands and
// voice-channel presence changes.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gongdew-hub/study-community-bot/pkg/circuitbreaker"
	"github.com/gongdew-hub/study-community-bot/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the gateway client.
type ClientConfig struct {
	// Token authenticates the bot against the gateway.
	Token string

	// BaseURL is the gateway base URL.
	BaseURL string

	// ChannelID is the default channel for outbound messages.
	ChannelID string

	// Timeout is the HTTP request timeout.
	// Must exceed the long-poll timeout plus network latency.
	Timeout time.Duration

	// RetryAttempts is the number of retry attempts for failed requests.
	RetryAttempts int

	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration

	// Logger for structured logging.
	Logger *logger.Logger

	// Debug enables per-call debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token, baseURL, channelID string) ClientConfig {
	return ClientConfig{
		Token:         token,
		BaseURL:       baseURL,
		ChannelID:     channelID,
		Timeout:       45 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// GATEWAY TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Event represents a single gateway event.
type Event struct {
	ID       int64     `json:"id"`
	Type     EventType `json:"type"`
	Message  *Message  `json:"message,omitempty"`
	Presence *Presence `json:"presence,omitempty"`
}

// EventType distinguishes gateway event kinds.
type EventType string

const (
	// EventMessage is a text message posted in a channel.
	EventMessage EventType = "message"

	// EventPresenceJoin fires when a member joins a voice channel.
	EventPresenceJoin EventType = "presence_join"

	// EventPresenceLeave fires when a member leaves a voice channel.
	EventPresenceLeave EventType = "presence_leave"
)

// Message represents a chat message.
type Message struct {
	ID        string    `json:"id"`
	ChannelID string    `json:"channel_id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

// Author represents the sender of a message.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// Presence represents a voice-channel presence change.
type Presence struct {
	MemberID  string    `json:"member_id"`
	Username  string    `json:"username"`
	ChannelID string    `json:"channel_id"`
	At        time.Time `json:"at"`
}

// apiResponse is the gateway response envelope.
type apiResponse struct {
	OK        bool            `json:"ok"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorCode int             `json:"error_code,omitempty"`
	// RetryAfter is set on rate-limit responses, in seconds.
	RetryAfter int `json:"retry_after,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the chat gateway client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	log        *logger.Logger
}

// NewClient creates a new gateway client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = logger.Default()
	}
	if config.Timeout == 0 {
		config.Timeout = 45 * time.Second
	}

	log := config.Logger.With(logger.Component("chat"))

	breaker := circuitbreaker.New("chat-gateway",
		circuitbreaker.WithFailureThreshold(5),
		circuitbreaker.WithSuccessThreshold(2),
		circuitbreaker.WithOpenTimeout(15*time.Second),
		circuitbreaker.WithStateChangeHook(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
	)

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		breaker: breaker,
		log:     log,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SENDING MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// SendMessage posts a message to the given channel.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*Message, error) {
	body := map[string]any{
		"channel_id": channelID,
		"content":    content,
	}

	var message Message
	if err := c.callAPI(ctx, "messages.send", body, &message); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}

	return &message, nil
}

// EditMessage replaces the content of an earlier message.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) (*Message, error) {
	body := map[string]any{
		"channel_id": channelID,
		"message_id": messageID,
		"content":    content,
	}

	var message Message
	if err := c.callAPI(ctx, "messages.edit", body, &message); err != nil {
		return nil, fmt.Errorf("edit message: %w", err)
	}

	return &message, nil
}

// SendText posts a message to the default channel.
func (c *Client) SendText(ctx context.Context, content string) (*Message, error) {
	return c.SendMessage(ctx, c.config.ChannelID, content)
}

// Reply posts a message to the channel the original message came from.
func (c *Client) Reply(ctx context.Context, to *Message, content string) (*Message, error) {
	return c.SendMessage(ctx, to.ChannelID, content)
}

// ══════════════════════════════════════════════════════════════════════════════
// RECEIVING EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// GetEvents fetches events using long polling.
// Events with id < offset have already been consumed.
func (c *Client) GetEvents(ctx context.Context, offset int64, limit, timeoutSec int) ([]Event, error) {
	body := map[string]any{
		"timeout": timeoutSec,
	}
	if offset > 0 {
		body["offset"] = offset
	}
	if limit > 0 {
		body["limit"] = limit
	}

	var events []Event
	if err := c.callAPI(ctx, "events.poll", body, &events); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	return events, nil
}

// Ping checks connectivity with the gateway.
func (c *Client) Ping(ctx context.Context) error {
	var ok bool
	if err := c.callAPI(ctx, "ping", nil, &ok); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// EventHandler handles a single gateway event.
type EventHandler func(ctx context.Context, event *Event) error

// StartPolling long-polls the gateway and dispatches events to handler
// until the context is cancelled. Handler errors are logged, not fatal.
func (c *Client) StartPolling(ctx context.Context, handler EventHandler) error {
	c.log.Info("starting gateway long polling")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			c.log.Info("stopping gateway long polling")
			return ctx.Err()
		default:
		}

		events, err := c.GetEvents(ctx, offset, 100, 30)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("failed to get events", logger.Err(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for i := range events {
			event := &events[i]
			if event.ID >= offset {
				offset = event.ID + 1
			}

			if err := handler(ctx, event); err != nil {
				c.log.Error("failed to handle event",
					logger.Int("event_id", int(event.ID)),
					logger.String("event_type", string(event.Type)),
					logger.Err(err),
				)
			}
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// API CALL HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// callAPI makes a gateway call with retries and rate-limit handling.
func (c *Client) callAPI(ctx context.Context, method string, body map[string]any, result any) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.doAPICall(ctx, method, body, result)
		})
		if err == nil {
			return nil
		}

		lastErr = err

		// An open breaker will reject every attempt in this loop too.
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
			return err
		}

		if !isRetryableError(err) {
			return err
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(apiErr.RetryAfter) * time.Second):
			}
		}
	}

	return fmt.Errorf("gateway call failed after %d retries: %w", c.config.RetryAttempts, lastErr)
}

// doAPICall performs a single gateway call.
func (c *Client) doAPICall(ctx context.Context, method string, body map[string]any, result any) error {
	url := fmt.Sprintf("%s/api/%s", strings.TrimRight(c.config.BaseURL, "/"), method)

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+c.config.Token)

	if c.config.Debug {
		c.log.Debug("gateway call", logger.String("method", method))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if !apiResp.OK {
		return &APIError{
			Code:        apiResp.ErrorCode,
			Description: apiResp.Error,
			RetryAfter:  apiResp.RetryAfter,
		}
	}

	if result != nil && len(apiResp.Result) > 0 {
		if err := json.Unmarshal(apiResp.Result, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}

	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// APIError represents a gateway error response.
type APIError struct {
	Code        int
	Description string
	RetryAfter  int
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error %d: %s", e.Code, e.Description)
}

// isRetryableError reports whether the call may succeed on retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return true
		}
		if apiErr.Code >= 500 {
			return true
		}
		return false
	}

	msg := err.Error()
	for _, s := range []string{"timeout", "connection refused", "temporary", "reset"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
