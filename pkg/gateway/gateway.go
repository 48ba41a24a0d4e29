package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// Refunder returns captured money to the buyer through the payment gateway.
type Refunder interface {
	Refund(ctx context.Context, paymentReference string, amount int64) (Confirmation, error)
}

// Confirmation is the gateway's acknowledgement of a refund.
type Confirmation struct {
	RefundID string `json:"refund_id"`
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
}

// ErrNotConfigured is returned when no gateway base URL was configured.
var ErrNotConfigured = errors.New("payment gateway is not configured")

// RejectedError is a definitive refusal by the gateway. It is never retried.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("gateway rejected refund with status %d: %s", e.StatusCode, e.Message)
}

// IsRejected reports whether err is a definitive gateway refusal.
func IsRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected)
}

// RetryPolicy bounds the exponential backoff between attempts.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy is used when the configuration leaves retries unset.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     4,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
	}
}

// Config holds the settings of the HTTP gateway client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retry   RetryPolicy
	// BreakerFailures is the number of consecutive failed calls that opens the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// Budget is the longest a single Refund can take: every attempt running to its
// timeout plus the largest randomized wait between attempts.
func (c Config) Budget() time.Duration {
	retry := c.Retry
	if retry.MaxAttempts <= 0 {
		retry = DefaultRetryPolicy()
	}
	attempts := time.Duration(retry.MaxAttempts)
	return attempts*c.Timeout + (attempts-1)*retry.MaxInterval*3/2
}

// Client is an HTTP Refunder with retries and a circuit breaker.
type Client struct {
	cfg        Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates a new gateway client.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown == 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	c := &Client{cfg: cfg, httpClient: httpClient, logger: logger}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		// A rejection means the gateway is healthy.
		IsSuccessful: func(err error) bool {
			return err == nil || IsRejected(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

var _ Refunder = (*Client)(nil)

type refundRequest struct {
	PaymentReference string `json:"payment_reference"`
	Amount           int64  `json:"amount"`
}

// Refund asks the gateway to refund amount against paymentReference. Network
// errors, 5xx and 429 responses are retried; other 4xx responses are final.
func (c *Client) Refund(ctx context.Context, paymentReference string, amount int64) (Confirmation, error) {
	if c.cfg.BaseURL == "" {
		return Confirmation{}, ErrNotConfigured
	}
	body, err := json.Marshal(refundRequest{PaymentReference: paymentReference, Amount: amount})
	if err != nil {
		return Confirmation{}, fmt.Errorf("failed to marshal refund request: %w", err)
	}

	var conf Confirmation
	attempt := 0
	op := func() error {
		attempt++
		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.send(ctx, paymentReference, body)
		})
		switch {
		case err == nil:
			conf = res.(Confirmation)
			return nil
		case IsRejected(err), errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.WarnContext(ctx, "gateway refund attempt failed, retrying",
			"payment_reference", paymentReference, "attempt", attempt, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(op, c.backOff(ctx), notify); err != nil {
		return Confirmation{}, fmt.Errorf("refund of %s failed after %d attempt(s): %w", paymentReference, attempt, err)
	}
	return conf, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.Retry.InitialInterval
	b.MaxInterval = c.cfg.Retry.MaxInterval
	b.RandomizationFactor = 0.5
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.cfg.Retry.MaxAttempts-1)), ctx)
}

func (c *Client) send(ctx context.Context, paymentReference string, body []byte) (Confirmation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/refunds", bytes.NewReader(body))
	if err != nil {
		return Confirmation{}, fmt.Errorf("failed to build refund request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "refund:"+paymentReference)
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Confirmation{}, fmt.Errorf("failed to call payment gateway: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Confirmation{}, fmt.Errorf("failed to read gateway response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var conf Confirmation
		if err := json.Unmarshal(payload, &conf); err != nil {
			return Confirmation{}, fmt.Errorf("failed to decode gateway response: %w", err)
		}
		return conf, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Confirmation{}, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	default:
		return Confirmation{}, &RejectedError{StatusCode: resp.StatusCode, Message: string(bytes.TrimSpace(payload))}
	}
}
