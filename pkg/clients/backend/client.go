// Package backend is the REST client of the franchise backend that owns
// students, staff, units, classes and the payment endpoints.
package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/franchise/internal/config"
)

// Client is a resty-backed backend client.
type Client struct {
	httpClient *resty.Client
}

// NewClient builds a backend client using the provided configuration values.
func NewClient(cfg config.BackendConfig) *Client {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)
	if cfg.Token != "" {
		restyClient.SetAuthToken(cfg.Token)
	}

	return &Client{httpClient: restyClient}
}

// APIError is a non-2xx answer from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func (b *errorBody) text() string {
	switch {
	case b == nil:
		return ""
	case b.Message != "":
		return b.Message
	case b.Error != "":
		return b.Error
	default:
		return b.Details
	}
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.httpClient.R().SetContext(ctx).SetError(&errorBody{})
}

func (c *Client) execute(req *resty.Request, method, url string) error {
	resp, err := req.Execute(method, url)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.IsError() {
		body, _ := resp.Error().(*errorBody)
		return &APIError{StatusCode: resp.StatusCode(), Message: body.text()}
	}
	return nil
}

func searchParams(q string) map[string]string {
	params := map[string]string{}
	if q = strings.TrimSpace(q); q != "" {
		params["q"] = q
	}
	return params
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
