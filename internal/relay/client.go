package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fjod/forgeline/pkg/circuitbreaker"
	"github.com/fjod/forgeline/pkg/logger"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

var (
	// ErrRejected means the relay answered but did not accept the message.
	ErrRejected = errors.New("relay rejected message")
	// ErrUnavailable means the relay could not be reached or the breaker is open.
	ErrUnavailable = errors.New("relay unavailable")
)

const (
	DefaultBaseURL = "https://formsubmit.co"
	DefaultTimeout = 10 * time.Second
)

// Message is a plain text mail handed to the relay.
type Message struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// Sender delivers a message and returns once the relay has acknowledged it.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker circuitbreaker.Config
}

// Client posts messages to a FormSubmit-style endpoint:
// POST <base>/ajax/<to> with a urlencoded form, answered by {"success": bool}.
type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
}

type ack struct {
	Success json.RawMessage `json:"success"`
	Message string          `json:"message"`
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "mail-relay"
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[struct{}](cfg.Breaker, log),
	}
}

func (c *Client) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrRejected)
	}

	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.post(ctx, msg)
	})
	if circuitbreaker.IsOpen(err) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		logger.FromContext(ctx).Warn("relay send failed",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, msg Message) error {
	form := url.Values{}
	form.Set("email", msg.To)
	form.Set("_subject", msg.Subject)
	form.Set("message", strings.ReplaceAll(strings.TrimSpace(msg.Body), "\r\n", "\n"))
	form.Set("_captcha", "false")
	if msg.ReplyTo != "" {
		form.Set("_replyto", msg.ReplyTo)
	}

	endpoint := c.baseURL + "/ajax/" + url.PathEscape(msg.To)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}

	var a ack
	if err := json.Unmarshal(body, &a); err != nil {
		return fmt.Errorf("%w: undecodable response: %v", ErrRejected, err)
	}
	if !accepted(a.Success) {
		return fmt.Errorf("%w: %s", ErrRejected, a.Message)
	}
	return nil
}

// accepted reads the success flag, which FormSubmit sends either as a JSON
// boolean or as the string "true".
func accepted(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s == "true"
	}
	return false
}
