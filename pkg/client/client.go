package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-go-golems/skycast/pkg/security"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"
)

// ErrRemoteUnavailable covers every way the assistant backend can fail to answer:
// transport errors, non-2xx statuses and payloads of the wrong shape.
var ErrRemoteUnavailable = errors.New("remote assistant unavailable")

const ChatPath = "/chat"

const DefaultBaseURL = "http://localhost:8000"

// ChatRequest is the request payload of the /chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the response payload of the /chat endpoint.
type ChatResponse struct {
	Response string `json:"response"`
}

const chatResponseSchema = `{
  "type": "object",
  "required": ["response"],
  "properties": {
    "response": {"type": "string"}
  }
}`

// Client talks to the assistant backend. Each call is independent and anonymous.
type Client struct {
	httpClient *http.Client
	BaseURL    string

	timeout    time.Duration
	hasTimeout bool

	endpoint string
	schema   *gojsonschema.Schema
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each request. Zero, the default, means no timeout. A
// client passed with WithHTTPClient is copied, not modified.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
		c.hasTimeout = true
	}
}

// NewClient validates baseURL and returns a client posting to baseURL + ChatPath.
// Plain HTTP and local addresses are allowed since the backend usually runs on
// localhost.
func NewClient(baseURL string, options ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	endpoint, err := security.ResolveEndpoint(baseURL, ChatPath, security.LocalServiceOptions)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid assistant base URL %q", baseURL)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(chatResponseSchema))
	if err != nil {
		return nil, errors.Wrap(err, "could not compile chat response schema")
	}

	ret := &Client{
		httpClient: &http.Client{},
		BaseURL:    baseURL,
		endpoint:   endpoint,
		schema:     schema,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.httpClient == nil {
		ret.httpClient = &http.Client{}
	}
	if ret.hasTimeout {
		httpClient := *ret.httpClient
		httpClient.Timeout = ret.timeout
		ret.httpClient = &httpClient
	}

	return ret, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Chat posts message and returns the response field verbatim. All failures wrap
// ErrRemoteUnavailable.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(&ChatRequest{Message: message})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("endpoint", c.endpoint).Msg("posting chat request")

	// #nosec G107 -- endpoint is validated in NewClient.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(ErrRemoteUnavailable, "post %s: %v", c.endpoint, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrapf(ErrRemoteUnavailable, "reading response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Wrapf(ErrRemoteUnavailable, "unexpected status %d", resp.StatusCode)
	}

	result, err := c.schema.Validate(gojsonschema.NewBytesLoader(respBody))
	if err != nil {
		return "", errors.Wrapf(ErrRemoteUnavailable, "malformed response: %v", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return "", errors.Wrapf(ErrRemoteUnavailable, "unexpected response shape: %s", strings.Join(msgs, "; "))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", errors.Wrapf(ErrRemoteUnavailable, "malformed response: %v", err)
	}

	return chatResp.Response, nil
}
