// Package mailer sends transactional email through the Resend HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
)

// Message is one outgoing email
type Message struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	ReplyTo string   `json:"reply_to,omitempty"`
}

// ProviderError is a non-2xx answer from the provider. Body holds the raw
// response so it can be passed back to the caller as details.
type ProviderError struct {
	StatusCode int
	Body       json.RawMessage
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("resend: status %d: %s", e.StatusCode, string(e.Body))
}

// Options configures a ResendClient
type Options struct {
	APIKey     string
	Endpoint   string
	Timeout    time.Duration
	MaxRetries uint64
	RetryBase  time.Duration
}

// ResendClient posts messages to the Resend emails endpoint
type ResendClient struct {
	opts   Options
	client *http.Client
	log    zerolog.Logger
}

// NewResendClient creates a client. A zero timeout means 10s.
func NewResendClient(opts Options, log zerolog.Logger) *ResendClient {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RetryBase <= 0 {
		opts.RetryBase = 200 * time.Millisecond
	}
	return &ResendClient{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    log.With().Str("component", "mailer").Logger(),
	}
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers msg and returns the provider message id. Network failures,
// 429 and 5xx answers are retried with exponential backoff; other errors are
// returned immediately.
func (c *ResendClient) Send(ctx context.Context, msg *Message) (string, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode message: %w", err)
	}

	var id string
	attempt := 0
	backoff := retry.WithMaxRetries(c.opts.MaxRetries, retry.NewExponential(c.opts.RetryBase))

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		var sendErr error
		id, sendErr = c.post(ctx, payload)
		if sendErr == nil {
			return nil
		}

		var perr *ProviderError
		if errors.As(sendErr, &perr) && perr.StatusCode != http.StatusTooManyRequests && perr.StatusCode < 500 {
			return sendErr
		}
		c.log.Warn().Err(sendErr).Int("attempt", attempt).Msg("Email send failed, retrying")
		return retry.RetryableError(sendErr)
	})
	if err != nil {
		return "", err
	}

	c.log.Info().Str("id", id).Int("attempts", attempt).Msg("Email sent")
	return id, nil
}

func (c *ResendClient) post(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if !json.Valid(body) {
			body, _ = json.Marshal(string(body))
		}
		return "", &ProviderError{StatusCode: resp.StatusCode, Body: body}
	}

	var out sendResponse
	if len(body) > 0 {
		if err := json.Unmarshal(body, &out); err != nil {
			return "", fmt.Errorf("decode response: %w", err)
		}
	}
	return out.ID, nil
}
