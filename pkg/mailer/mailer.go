// Package mailer dispatches order emails through a REST mail gateway.
// Dry-run mode (the default) logs the message instead of posting it, which
// matches the behavior of environments without a configured gateway.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	URL     string        `envconfig:"URL" split_words:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	From    string        `envconfig:"FROM" split_words:"true" default:"orders@warehouse.local"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	DryRun  bool          `envconfig:"DRY_RUN" split_words:"true" default:"true"`
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(m *Client) {
		if client != nil {
			m.httpClient = client
		}
	}
}

// Client sends order emails. Safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	from       string
	dryRun     bool
	httpClient *http.Client
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if !cfg.DryRun {
		if baseURL == "" {
			return nil, errors.New("mailer url is required unless dry run is enabled")
		}
		if _, err := url.ParseRequestURI(baseURL); err != nil {
			return nil, fmt.Errorf("invalid mailer url: %w", err)
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	m := &Client{
		baseURL: baseURL,
		token:   strings.TrimSpace(cfg.Token),
		from:    strings.TrimSpace(cfg.From),
		dryRun:  cfg.DryRun,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	m, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// Send dispatches one order email and returns a confirmation string.
func (m *Client) Send(ctx context.Context, recipient, body string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", errors.New("recipient email is required")
	}
	if strings.TrimSpace(body) == "" {
		return "", errors.New("email body is required")
	}

	if m.dryRun {
		log.Info().
			Str("recipient", recipient).
			Int("body_bytes", len(body)).
			Msg("mailer dry run: order email not dispatched")
		return fmt.Sprintf("Success: Email dispatched to %s.", recipient), nil
	}

	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      recipient,
		Subject: "Purchase Order",
		Body:    body,
	})
	if err != nil {
		return "", fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build mail request: %w", err)
	}
	if m.token != "" {
		req.Header.Set("Authorization", "Bearer "+m.token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute mail request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return "", fmt.Errorf("read mail response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("mail gateway status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed sendResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode mail response: %w", err)
	}
	if parsed.Error != "" {
		return "", errors.New(parsed.Error)
	}

	return fmt.Sprintf("Success: Email dispatched to %s.", recipient), nil
}
