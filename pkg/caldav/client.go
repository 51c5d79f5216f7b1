// Package caldav is a minimal CalDAV client: enough of RFC 4791 to
// discover calendar collections, pull their objects, and push local
// edits back with etag guards. Responses are parsed with XPath rather
// than a schema, since servers disagree about prefixes and extensions.
package caldav

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "aim/0.1"
)

// Client talks to one CalDAV server with HTTP basic auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authHeader string
	logger     *zap.SugaredLogger
}

func NewClient(baseURL, username, password string) *Client {
	auth := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		authHeader: "Basic " + auth,
		logger:     zap.NewNop().Sugar(),
	}
}

// SetLogger replaces the no-op default.
func (c *Client) SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		c.logger = l
	}
}

// SetHTTPClient replaces the default client, mainly for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

func (c *Client) url(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) prepareRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

// propfind issues a PROPFIND and returns the multistatus body.
func (c *Client) propfind(ctx context.Context, path, depth string, body []byte) ([]byte, error) {
	return c.davRequest(ctx, "PROPFIND", path, depth, body)
}

// report issues a REPORT at depth 1 and returns the multistatus body.
func (c *Client) report(ctx context.Context, path string, body []byte) ([]byte, error) {
	return c.davRequest(ctx, "REPORT", path, "1", body)
}

func (c *Client) davRequest(ctx context.Context, method, path, depth string, body []byte) ([]byte, error) {
	c.logger.Debugf("%s %s (depth %s)", method, path, depth)

	req, err := c.prepareRequest(ctx, method, path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", depth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	return data, nil
}

// PutObject uploads iCalendar data to href. A non-empty etag makes the
// write conditional on the server still holding that version; an empty
// etag demands the resource not exist yet. Returns the new etag when
// the server sends one.
func (c *Client) PutObject(ctx context.Context, href string, ics []byte, etag string) (string, error) {
	req, err := c.prepareRequest(ctx, http.MethodPut, href, bytes.NewReader(ics))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")
	if etag != "" {
		req.Header.Set("If-Match", etag)
	} else {
		req.Header.Set("If-None-Match", "*")
	}

	c.logger.Debugf("PUT %s (etag %q)", href, etag)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("PUT %s: %w", href, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return resp.Header.Get("ETag"), nil
	case http.StatusPreconditionFailed:
		return "", fmt.Errorf("PUT %s: remote changed since last sync", href)
	default:
		return "", fmt.Errorf("PUT %s: unexpected status %d", href, resp.StatusCode)
	}
}

// DeleteObject removes a resource, conditionally when etag is set.
func (c *Client) DeleteObject(ctx context.Context, href, etag string) error {
	req, err := c.prepareRequest(ctx, http.MethodDelete, href, nil)
	if err != nil {
		return err
	}
	if etag != "" {
		req.Header.Set("If-Match", etag)
	}

	c.logger.Debugf("DELETE %s (etag %q)", href, etag)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("DELETE %s: %w", href, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	case http.StatusPreconditionFailed:
		return fmt.Errorf("DELETE %s: remote changed since last sync", href)
	default:
		return fmt.Errorf("DELETE %s: unexpected status %d", href, resp.StatusCode)
	}
}
