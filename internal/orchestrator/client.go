package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	appconfig "github.com/bcn-art-compass/telegram-bot/internal/config"
	"github.com/bcn-art-compass/telegram-bot/pkg/logger"
	"github.com/bcn-art-compass/telegram-bot/pkg/metrics"
)

// chatPath is appended to the configured base URL for every relay call.
const chatPath = "/chat"

// Observer receives the outcome of each relay call. *metrics.Metrics
// satisfies it; a nil observer disables recording.
type Observer interface {
	ObserveRelay(duration time.Duration, fallbackReason string)
}

// Client relays chat messages to the orchestrator. It holds no per-call
// state; the embedded http.Client is safe for concurrent use and is
// reused across calls.
type Client struct {
	baseURL    string
	replyField string
	fallback   string
	httpClient *http.Client
	observer   Observer
	log        logger.Logger
}

// NewClient creates a relay client from validated orchestrator settings.
func NewClient(cfg appconfig.OrchestratorConfig, log logger.Logger, obs Observer) (*Client, error) {
	baseURL, err := cfg.URL()
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Client{
		baseURL:    baseURL,
		replyField: cfg.ReplyField,
		fallback:   cfg.FallbackMessage,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		observer:   obs,
		log:        log,
	}, nil
}

// Fallback returns the configured fallback message.
func (c *Client) Fallback() string {
	return c.fallback
}

// Relay forwards one user message to the orchestrator and returns the
// reply text. It never returns an error: any failure (network, non-2xx
// status, malformed body, missing reply field) is logged and mapped to
// the fallback message, so one bad call cannot take down the handler.
func (c *Client) Relay(ctx context.Context, userID, message string) string {
	log := logger.GetLoggerFromContext(ctx, c.log)

	start := time.Now()
	resp, err := c.send(ctx, ChatRequest{UserID: userID, Message: message})
	duration := time.Since(start)

	if err != nil {
		reason := classify(err)
		if c.observer != nil {
			c.observer.ObserveRelay(duration, reason)
		}
		log.Error("Orchestrator call failed, using fallback reply",
			logger.UserIDField(userID),
			logger.StringField("reason", reason),
			logger.DurationField("duration", duration),
			logger.ErrorField(err),
		)
		return c.fallback
	}

	if c.observer != nil {
		c.observer.ObserveRelay(duration, "")
	}
	log.Debug("Orchestrator call succeeded",
		logger.UserIDField(userID),
		logger.IntField("reply_len", len(resp.Reply)),
		logger.DurationField("duration", duration),
	)
	return resp.Reply
}

// relayError carries the failure kind for metrics and logging.
type relayError struct {
	reason string
	err    error
}

func (e *relayError) Error() string { return e.err.Error() }
func (e *relayError) Unwrap() error { return e.err }

func classify(err error) string {
	if re, ok := err.(*relayError); ok {
		return re.reason
	}
	return metrics.FallbackReasonTransport
}

func transportErr(err error) error {
	return &relayError{reason: metrics.FallbackReasonTransport, err: err}
}

func statusErr(err error) error {
	return &relayError{reason: metrics.FallbackReasonStatus, err: err}
}

func badBodyErr(err error) error {
	return &relayError{reason: metrics.FallbackReasonBadBody, err: err}
}

func missingReplyErr(err error) error {
	return &relayError{reason: metrics.FallbackReasonMissingReply, err: err}
}

// send performs the POST to <base_url>/chat and extracts the reply text.
// Kept separate from Relay so the typed failure kinds stay testable.
func (c *Client) send(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, badBodyErr(fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(body))
	if err != nil {
		return nil, transportErr(fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportErr(fmt.Errorf("failed to reach orchestrator: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusErr(fmt.Errorf("orchestrator returned status %d: %s", resp.StatusCode, truncateForLog(respBody)))
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, badBodyErr(fmt.Errorf("orchestrator response is not a JSON object: %w", err))
	}

	raw, ok := payload[c.replyField]
	if !ok {
		return nil, missingReplyErr(fmt.Errorf("orchestrator response has no %q field", c.replyField))
	}

	var reply string
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, badBodyErr(fmt.Errorf("orchestrator %q field is not a string: %w", c.replyField, err))
	}
	if reply == "" {
		return nil, missingReplyErr(fmt.Errorf("orchestrator %q field is empty", c.replyField))
	}

	out := &ChatResponse{Reply: reply}
	if raw, ok := payload["correlation_id"]; ok {
		_ = json.Unmarshal(raw, &out.CorrelationID)
	}
	return out, nil
}

// truncateForLog caps error detail from response bodies.
func truncateForLog(body []byte) string {
	const max = 256
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}
