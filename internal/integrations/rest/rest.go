package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/virtualcard/internal/apperr"
)

// Client is a thin JSON client over a peer service base URL. Non-2xx
// responses are classified by status code: 404 becomes NotFound, 422
// becomes InvalidInput, anything else is logged with its body at error
// level and propagated unchanged.
type Client struct {
	base   string
	client *http.Client
	log    *logrus.Logger
}

// New initializes a client for the given base URL
func New(base string, log *logrus.Logger) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Get issues a GET and decodes the JSON response into out
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Put issues a PUT with a JSON body, discarding any response body
func (c *Client) Put(ctx context.Context, path string, body any) error {
	return c.do(ctx, http.MethodPut, path, body, nil)
}

// Post issues a POST with a JSON body, decoding the response into out when given
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) classify(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)
	message := strings.TrimSpace(string(raw))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return apperr.NotFoundf("%s", message)
	case http.StatusUnprocessableEntity:
		return apperr.InvalidInputf("%s", message)
	default:
		c.log.Errorf("Got an unexpected HTTP error: %d, will rethrow it", resp.StatusCode)
		c.log.Errorf("Error body: %s", message)
		return apperr.Unexpectedf(resp.StatusCode, "%s", message)
	}
}
