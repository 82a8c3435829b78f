// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chain

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

const (
	// DefaultRequestTimeout is the timeout applied to a single request
	// when the config doesn't specify one.
	DefaultRequestTimeout = 30 * time.Second

	// headerAppID carries the application id assigned by the service.
	headerAppID = "X-AppID"

	// headerSign carries the request signature.
	headerSign = "X-Sign"

	// headerTimestamp carries the unix timestamp, in seconds, the
	// signature was computed with.
	headerTimestamp = "X-Ts"

	// contentTypeJSON is sent with every request.
	contentTypeJSON = "application/json;charset=utf-8"

	// maxErrorBodySize caps how much of a non-200 response body is kept as
	// the error message.
	maxErrorBodySize = 4096
)

var (
	// ErrMissingBaseURL is returned when a client is created without a
	// service URL.
	ErrMissingBaseURL = errors.New("missing service base url")

	// ErrEmptyResponse is returned when a successful response carries no
	// data while the caller expects some.
	ErrEmptyResponse = errors.New("empty response data")
)

// RemoteServiceError is returned for every non-success answer of the remote
// indexer or marketplace. The service-provided message is kept verbatim.
type RemoteServiceError struct {
	// Endpoint is the request path without its query string.
	Endpoint string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code is the service status code of a 200 response. It is zero for
	// non-200 responses.
	Code int

	// Message is the message returned by the service.
	Message string
}

// Error returns the service message, falling back to a description of the
// status when the service sent none.
func (e *RemoteServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.StatusCode != http.StatusOK {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint,
			e.StatusCode)
	}

	return fmt.Sprintf("%s: service returned code %d", e.Endpoint, e.Code)
}

// ClientConfig holds the configuration for the remote service client.
type ClientConfig struct {
	// BaseURL is the base URL of the service, e.g. https://api.unisat.io.
	BaseURL string

	// AppID is the application id sent with every request.
	AppID string

	// AppSecret is the shared secret appended to the signed payload.
	AppSecret string

	// UserAgent is sent as the User-Agent header when set.
	UserAgent string

	// RequestTimeout is the timeout for individual HTTP requests.
	RequestTimeout time.Duration

	// HTTPClient overrides the HTTP client used to reach the service.
	HTTPClient *http.Client

	// Clock provides the request timestamps. The wall clock is used when
	// nil.
	Clock clock.Clock

	// Metrics records per-endpoint request outcomes when set.
	Metrics *Metrics
}

// envelope is the response wrapper used by every service endpoint.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// Client talks to the remote indexer and marketplace API. Each request is
// signed and sent exactly once; failures are returned to the caller without
// any retry.
type Client struct {
	cfg *ClientConfig

	httpClient *http.Client
	clock      clock.Clock
}

// NewClient creates a new client with the given config.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}

	_, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.RequestTimeout
		if timeout == 0 {
			timeout = DefaultRequestTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		clock:      clk,
	}, nil
}

// SignRequest returns the hex encoded signature of a request. The signed
// payload is the request URI including its query string, the body and the
// unix timestamp, each separated by a newline, with the shared secret
// appended directly after the timestamp.
func SignRequest(uri string, body []byte, ts int64, secret string) string {
	payload := uri + "\n" + string(body) + "\n" +
		strconv.FormatInt(ts, 10) + secret

	//nolint:gosec
	sum := md5.Sum([]byte(payload))

	return hex.EncodeToString(sum[:])
}

// get performs a signed GET request and decodes the response data into
// result.
func (c *Client) get(ctx context.Context, path string, query url.Values,
	result any) error {

	uri := path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	return c.do(ctx, http.MethodGet, path, uri, nil, result)
}

// post performs a signed POST request with a JSON body and decodes the
// response data into result.
func (c *Client) post(ctx context.Context, path string, reqBody any,
	result any) error {

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("unable to encode request: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, path, body, result)
}

// do sends a single signed request and unwraps the response envelope.
func (c *Client) do(ctx context.Context, method, endpoint, uri string,
	body []byte, result any) error {

	start := c.clock.Now()
	err := c.send(ctx, method, endpoint, uri, body, result)
	c.cfg.Metrics.observe(endpoint, err, c.clock.Now().Sub(start))

	if err != nil {
		log.Debugf("%s %s failed: %v", method, endpoint, err)
		return err
	}

	log.Tracef("%s %s succeeded", method, endpoint)

	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint, uri string,
	body []byte, result any) error {

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	target := strings.TrimSuffix(c.cfg.BaseURL, "/") + uri
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	ts := c.clock.Now().Unix()

	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set(headerAppID, c.cfg.AppID)
	req.Header.Set(headerSign, SignRequest(uri, body, ts, c.cfg.AppSecret))
	req.Header.Set(headerTimestamp, strconv.FormatInt(ts, 10))

	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))

		return &RemoteServiceError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(text)),
		}
	}

	// A success without a body, such as 204, carries no envelope.
	var env envelope
	err = json.NewDecoder(resp.Body).Decode(&env)
	switch {
	case errors.Is(err, io.EOF):
		if result == nil {
			return nil
		}

		return fmt.Errorf("%s: %w", endpoint, ErrEmptyResponse)

	case err != nil:
		return fmt.Errorf("%s: failed to decode response: %w",
			endpoint, err)
	}

	if env.Code != 0 {
		return &RemoteServiceError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Code:       env.Code,
			Message:    env.Msg,
		}
	}

	if result == nil {
		return nil
	}

	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return fmt.Errorf("%s: %w", endpoint, ErrEmptyResponse)
	}

	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("%s: failed to decode data: %w", endpoint,
			err)
	}

	return nil
}
