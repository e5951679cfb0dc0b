// Package api talks to the company's REST backend: the session query,
// destination lookup and booking creation.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tripdesk/models"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxErrorBody = 4 << 10

// Client is an HTTP client for the upstream REST API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type envelope[T any] struct {
	Data    *T     `json:"data"`
	Message string `json:"message,omitempty"`
}

// CurrentUser runs the session query with the visitor's bearer token.
// A missing profile or a 401/403 means the visitor is anonymous and is not an error.
func (c *Client) CurrentUser(ctx context.Context, token string) (*models.Profile, error) {
	if token == "" {
		return nil, nil
	}
	var out envelope[models.Profile]
	status, err := c.do(ctx, http.MethodGet, "/current-user", token, nil, nil, &out)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if out.Data == nil || out.Data.ID == "" {
		return nil, nil
	}
	return out.Data, nil
}

// GetDestination loads the destination a visitor is booking.
func (c *Client) GetDestination(ctx context.Context, id string) (*models.Destination, error) {
	var out envelope[models.Destination]
	if _, err := c.do(ctx, http.MethodGet, "/destinations/"+url.PathEscape(id), "", nil, nil, &out); err != nil {
		return nil, fmt.Errorf("get destination %s: %w", id, err)
	}
	if out.Data == nil {
		return nil, &StatusError{Code: http.StatusNotFound, Message: "destination not found"}
	}
	return out.Data, nil
}

// CreateBooking posts a finalized booking. The idempotency key lets the
// backend drop a duplicate of the same submission.
func (c *Client) CreateBooking(ctx context.Context, payload models.BookingPayload, idempotencyKey string) (*models.BookingResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal booking: %w", err)
	}
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	var out models.BookingResult
	if _, err := c.do(ctx, http.MethodPost, "/booking", "", headers, body, &out); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if !out.OK {
		msg := out.Message
		if msg == "" {
			msg = "booking was not accepted"
		}
		return nil, &StatusError{Code: http.StatusUnprocessableEntity, Message: msg}
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, headers map[string]string, body []byte, out any) (int, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("upstream request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return 0, err
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp.StatusCode, &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
