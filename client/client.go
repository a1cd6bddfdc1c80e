package client

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Daskott/swiftly/shared"
	"github.com/go-resty/resty/v2"
)

const DEFAULT_TIMEOUT = 30 * time.Second

// RequestError is returned when the dispatch service answers with a non 2xx status.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %v", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %v: %v", e.StatusCode, e.Message)
}

type Option func(c *Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.rest.SetTimeout(timeout)
	}
}

// Client talks to the alert dispatch service.
type Client struct {
	rest *resty.Client
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		rest: resty.New().
			SetBaseURL(strings.TrimSuffix(baseURL, "/")).
			SetTimeout(DEFAULT_TIMEOUT).
			SetHeader("Content-Type", "application/json"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SendAlert POSTs req to /sos.
func (c *Client) SendAlert(ctx context.Context, req shared.AlertRequest) (*shared.AlertResponse, error) {
	result := &shared.AlertResponse{}
	errResult := &shared.ErrorResponse{}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		SetError(errResult).
		Post("/sos")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, &RequestError{StatusCode: resp.StatusCode(), Message: errResult.Error}
	}

	return result, nil
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.rest.R().SetContext(ctx).Get("/")
	if err != nil {
		return err
	}

	if resp.IsError() {
		return &RequestError{StatusCode: resp.StatusCode(), Message: strings.TrimSpace(resp.String())}
	}

	return nil
}

// Logs fetches a page of the alert history, newest first.
func (c *Client) Logs(ctx context.Context, page int) (*shared.LogsResponse, error) {
	result := &shared.LogsResponse{}
	errResult := &shared.ErrorResponse{}

	resp, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetResult(result).
		SetError(errResult).
		Get("/logs")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, &RequestError{StatusCode: resp.StatusCode(), Message: errResult.Error}
	}

	return result, nil
}
