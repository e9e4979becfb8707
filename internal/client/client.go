// Package client is a typed HTTP client for the NeuroLens service, shared by
// the dashboard and lensctl.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ashureev/neurolens/internal/api"
	"github.com/ashureev/neurolens/internal/domain"
)

// ErrUnavailable wraps every transport-level failure: the service could not
// be reached or did not answer in time.
var ErrUnavailable = errors.New("neurolens service unavailable")

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("neurolens service returned %d", e.Code)
	}
	return fmt.Sprintf("neurolens service returned %d: %s", e.Code, e.Body)
}

// Timeouts bounds each class of call.
type Timeouts struct {
	State time.Duration
	Chat  time.Duration
	Study time.Duration
}

// DefaultTimeouts are the per-call budgets the dashboard uses.
var DefaultTimeouts = Timeouts{
	State: 5 * time.Second,
	Chat:  15 * time.Second,
	Study: 20 * time.Second,
}

// Client talks to one NeuroLens service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeouts   Timeouts
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeouts overrides the per-call budgets.
func WithTimeouts(t Timeouts) Option {
	return func(c *Client) { c.timeouts = t }
}

// New creates a client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeouts:   DefaultTimeouts,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// State fetches a fresh environment snapshot.
func (c *Client) State(ctx context.Context) (api.StateResponse, error) {
	var out api.StateResponse
	err := c.do(ctx, c.timeouts.State, http.MethodGet, "/state", nil, nil, &out)
	return out, err
}

// Thresholds returns the current brightness and noise thresholds.
func (c *Client) Thresholds(ctx context.Context) (int, int, error) {
	var out map[string]int
	if err := c.do(ctx, c.timeouts.State, http.MethodGet, "/thresholds", nil, nil, &out); err != nil {
		return 0, 0, err
	}
	return out["brightness"], out["noise"], nil
}

// SetThresholds stores caregiver thresholds.
func (c *Client) SetThresholds(ctx context.Context, brightness, noise int) error {
	return c.do(ctx, c.timeouts.State, http.MethodPost, "/set-thresholds", levels(brightness, noise), nil, nil)
}

// SetEnvironment overwrites the current readings.
func (c *Client) SetEnvironment(ctx context.Context, brightness, noise int) error {
	return c.do(ctx, c.timeouts.State, http.MethodPost, "/set-environment", levels(brightness, noise), nil, nil)
}

// SetChildMode switches the comfort mode.
func (c *Client) SetChildMode(ctx context.Context, mode domain.ComfortMode) error {
	q := url.Values{"mode": {string(mode)}}
	return c.do(ctx, c.timeouts.State, http.MethodPost, "/set-child-mode", q, nil, nil)
}

// AutoAdjust asks the service to lower the readings and returns them.
func (c *Client) AutoAdjust(ctx context.Context) (int, int, error) {
	var out struct {
		Brightness int `json:"brightness"`
		Noise      int `json:"noise"`
	}
	if err := c.do(ctx, c.timeouts.State, http.MethodPost, "/auto-adjust", nil, nil, &out); err != nil {
		return 0, 0, err
	}
	return out.Brightness, out.Noise, nil
}

// DetectThresholds asks the service to derive thresholds from its readings.
func (c *Client) DetectThresholds(ctx context.Context) (int, int, error) {
	var out map[string]int
	if err := c.do(ctx, c.timeouts.State, http.MethodPost, "/detect-thresholds", nil, nil, &out); err != nil {
		return 0, 0, err
	}
	return out["brightness"], out["noise"], nil
}

// Chat sends a companion message.
func (c *Client) Chat(ctx context.Context, message string) (api.ReplyResponse, error) {
	var out api.ReplyResponse
	err := c.do(ctx, c.timeouts.Chat, http.MethodPost, "/chat", nil, api.ChatRequest{Message: &message}, &out)
	return out, err
}

// StudyHighlights requests the key points of text.
func (c *Client) StudyHighlights(ctx context.Context, text string) (api.HighlightsResponse, error) {
	var out api.HighlightsResponse
	err := c.do(ctx, c.timeouts.Study, http.MethodPost, "/study/highlights", nil, api.StudyRequest{Text: &text}, &out)
	return out, err
}

// StudyChat asks a question about text.
func (c *Client) StudyChat(ctx context.Context, question, text string) (api.ReplyResponse, error) {
	var out api.ReplyResponse
	body := api.StudyChatRequest{Question: &question, Text: &text}
	err := c.do(ctx, c.timeouts.Study, http.MethodPost, "/study/chat", nil, body, &out)
	return out, err
}

// Health checks service liveness.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, c.timeouts.State, http.MethodGet, "/healthz", nil, nil, nil)
}

func levels(brightness, noise int) url.Values {
	return url.Values{
		"brightness": {strconv.Itoa(brightness)},
		"noise":      {strconv.Itoa(noise)},
	}
}

func (c *Client) do(ctx context.Context, timeout time.Duration, method, path string, query url.Values, in, out interface{}) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrUnavailable, path, err)
	}
	return nil
}
