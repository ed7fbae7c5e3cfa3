// Package genai calls a generative-language endpoint with retries.
//
// This package contains:
//   - Executor: resilient generateContent caller with exponential backoff
//   - ClassifyStatus / ClassifyError: transient vs permanent failures
//   - Monitor: endpoint health tracking
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/vietddude/fridgechef/internal/metrics"
)

// DefaultBaseURL is the public generative-language models endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Config configures an Executor. Nothing is read from the environment.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	Model        string        `yaml:"model"`
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	Timeout      time.Duration `yaml:"timeout"`
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	BaseURL:      DefaultBaseURL,
	Model:        "gemini-2.5-flash",
	MaxRetries:   3,
	InitialDelay: 1 * time.Second,
	Timeout:      90 * time.Second,
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultConfig.BaseURL
	}
	if c.Model == "" {
		c.Model = DefaultConfig.Model
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultConfig.MaxRetries
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultConfig.InitialDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultConfig.Timeout
	}
	return c
}

// Outcome is the result of one executor call.
// Attempts is populated on success and on failure.
type Outcome struct {
	Text     string
	Attempts int
	Err      error
}

// HTTPDoer abstracts the HTTP client used for attempts.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryHook observes each scheduled retry: the attempt that failed, the
// delay before the next one, and the failure.
type RetryHook func(attempt int, delay time.Duration, err error)

// Option customizes an Executor.
type Option func(*Executor)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(e *Executor) { e.client = c }
}

// WithRetryHook registers a hook called before every backoff sleep.
func WithRetryHook(h RetryHook) Option {
	return func(e *Executor) { e.onRetry = h }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// Executor issues generateContent calls and retries transient failures.
// It is safe for concurrent use; retry state is local to each call.
type Executor struct {
	cfg     Config
	client  HTTPDoer
	onRetry RetryHook
	log     *slog.Logger

	Monitor *Monitor
}

// NewExecutor creates an executor from an explicit configuration.
func NewExecutor(cfg Config, opts ...Option) (*Executor, error) {
	cfg = cfg.WithDefaults()
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("genai: api key is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("genai: invalid base url: %w", err)
	}

	e := &Executor{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		log:     slog.Default(),
		Monitor: NewMonitor(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Model returns the default model name.
func (e *Executor) Model() string {
	return e.cfg.Model
}

// Generate calls the configured model.
func (e *Executor) Generate(ctx context.Context, req Request) (Outcome, error) {
	return e.Call(ctx, e.cfg.Model, req)
}

// Call posts payload to the model endpoint and returns the first text part
// of the first candidate. Transient failures (429, 5xx, transport errors,
// malformed success bodies) are retried with delays InitialDelay, 2x, 4x...
// Any other non-2xx status fails immediately.
func (e *Executor) Call(ctx context.Context, model string, payload any) (Outcome, error) {
	var out Outcome

	endpoint, body, err := e.prepare(model, payload)
	if err != nil {
		out.Err = err
		metrics.GenAICallsTotal.WithLabelValues(model, "failed").Inc()
		return out, err
	}

	var (
		lastErr   error
		exhausted bool
	)
	base := retry.WithMaxRetries(uint64(e.cfg.MaxRetries-1), retry.NewExponential(e.cfg.InitialDelay))
	backoff := retry.BackoffFunc(func() (time.Duration, bool) {
		next, stop := base.Next()
		if stop {
			exhausted = true
			return 0, true
		}
		e.retrying(model, out.Attempts, next, lastErr)
		return next, false
	})

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		out.Attempts++
		text, err := e.attempt(ctx, model, endpoint, body)
		if err == nil {
			out.Text = text
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return err
		}
		action := ClassifyError(err)
		metrics.GenAIAttemptsTotal.WithLabelValues(model, action.String()).Inc()
		if action == ActionFatal {
			return err // Stop immediately, do not retry
		}
		return retry.RetryableError(err)
	})

	switch {
	case err == nil:
		metrics.GenAICallsTotal.WithLabelValues(model, "ok").Inc()
		return out, nil
	case ctx.Err() != nil:
		metrics.GenAICallsTotal.WithLabelValues(model, "canceled").Inc()
		err = fmt.Errorf("genai: canceled after %d attempts: %w", out.Attempts, ctx.Err())
	case exhausted:
		metrics.GenAICallsTotal.WithLabelValues(model, "exhausted").Inc()
		err = fmt.Errorf("genai: %w after %d attempts: %w", ErrRetriesExhausted, out.Attempts, err)
	default:
		metrics.GenAICallsTotal.WithLabelValues(model, "failed").Inc()
	}

	e.log.Warn("Generative call failed", "model", model, "attempts", out.Attempts, "error", err)
	out.Err = err
	return out, err
}

func (e *Executor) prepare(model string, payload any) (string, []byte, error) {
	if strings.TrimSpace(model) == "" {
		return "", nil, fmt.Errorf("%w: model is required", ErrRequestBuild)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: marshal payload: %w", ErrRequestBuild, err)
	}

	endpoint, err := url.Parse(fmt.Sprintf("%s/%s:generateContent", strings.TrimRight(e.cfg.BaseURL, "/"), model))
	if err != nil {
		return "", nil, fmt.Errorf("%w: endpoint: %w", ErrRequestBuild, err)
	}
	q := endpoint.Query()
	q.Set("key", e.cfg.APIKey)
	endpoint.RawQuery = q.Encode()

	return endpoint.String(), body, nil
}

// attempt performs one HTTP round trip.
func (e *Executor) attempt(ctx context.Context, model, endpoint string, body []byte) (string, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrRequestBuild, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		e.Monitor.RecordFailure()
		return "", fmt.Errorf("genai: send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	metrics.GenAILatency.WithLabelValues(model).Observe(time.Since(start).Seconds())
	if err != nil {
		e.Monitor.RecordFailure()
		return "", fmt.Errorf("genai: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusTooManyRequests {
			e.Monitor.RecordThrottle(resp.Header.Get("Retry-After"))
		} else {
			e.Monitor.RecordFailure()
		}
		return "", newStatusError(resp.StatusCode, payload)
	}

	var envelope Response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		e.Monitor.RecordFailure()
		return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	text, err := envelope.FirstText()
	if err != nil {
		e.Monitor.RecordFailure()
		return "", err
	}

	e.Monitor.RecordSuccess(time.Since(start))
	metrics.GenAIAttemptsTotal.WithLabelValues(model, "success").Inc()
	return text, nil
}

func (e *Executor) retrying(model string, attempt int, delay time.Duration, err error) {
	metrics.GenAIRetriesTotal.WithLabelValues(model).Inc()
	e.log.Debug("Retrying generative call",
		"model", model,
		"attempt", attempt,
		"delay", delay,
		"error", err,
	)
	if e.onRetry != nil {
		e.onRetry(attempt, delay, err)
	}
}

// newStatusError extracts error.message from the body, falling back to the status text.
func newStatusError(code int, body []byte) *StatusError {
	msg := http.StatusText(code)
	var envelope ErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		msg = envelope.Error.Message
	}
	return &StatusError{Code: code, Message: msg}
}

// IsPermanent reports whether err is a non-retryable executor failure.
func IsPermanent(err error) bool {
	if err == nil || errors.Is(err, ErrRetriesExhausted) {
		return false
	}
	return ClassifyError(err) == ActionFatal
}
