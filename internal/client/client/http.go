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
	"time"

	"github.com/dmitrijs2005/mycloud/internal/client/models"
	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/errx"
	"github.com/dmitrijs2005/mycloud/internal/logging"
	"github.com/dmitrijs2005/mycloud/internal/netx"
	"github.com/google/uuid"
)

// HTTPClient implements Client over the server's REST API.
type HTTPClient struct {
	baseURL *url.URL
	origin  string
	jar     *sessionJar
	// http carries the session cookies, anon never does.
	http   *http.Client
	anon   *http.Client
	logger logging.Logger
	// timeout bounds a whole JSON exchange. Binary transfers are bounded by
	// the transport's response header timeout only.
	timeout time.Duration
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient returns a client for the API rooted at baseURL, e.g.
// "http://localhost:8000/api". timeout limits JSON calls end to end and the
// wait for response headers of uploads and downloads; a body that keeps
// streaming is never cut off. A zero timeout means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration, logger logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be an absolute http(s) url", baseURL)
	}

	jar := newSessionJar()
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &HTTPClient{
		baseURL: u,
		origin:  u.Scheme + "://" + u.Host,
		jar:     jar,
		http:    &http.Client{Jar: jar, Transport: transport},
		anon:    &http.Client{Transport: transport},
		logger:  logger.With("component", "http-client"),
		timeout: timeout,
	}, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	accept      string
	// anonymous requests carry no cookies at all.
	anonymous bool
	// cookies, when non-nil, replace the jar for this request.
	cookies Credentials
}

func isUnsafe(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return true
}

// do sends r and returns the response when the status is 2xx. The caller
// owns the response body.
func (c *HTTPClient) do(ctx context.Context, r request) (*http.Response, error) {
	target := netx.JoinURL(c.baseURL, r.path, r.query)
	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, mapError(err)
	}

	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	hc := c.http
	if r.anonymous || r.cookies != nil {
		hc = c.anon
	}
	for name, value := range r.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	if !r.anonymous && isUnsafe(r.method) {
		csrf := r.cookies[common.CSRFCookieName]
		if r.cookies == nil {
			csrf = c.jar.cookie(c.baseURL, common.CSRFCookieName)
		}
		if csrf != "" {
			req.Header.Set(common.CSRFHeaderName, csrf)
			req.Header.Set("Referer", c.origin+"/")
		}
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "request failed",
			"method", r.method, "path", r.path, "request_id", reqID, "error", err)
		return nil, mapError(err)
	}

	c.logger.Debug(ctx, "request",
		"method", r.method, "path", r.path, "status", resp.StatusCode,
		"request_id", reqID, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := netx.ReadLimited(resp.Body)
		_ = resp.Body.Close()
		return nil, errx.FromResponse(resp.StatusCode, body)
	}
	return resp, nil
}

// doJSON sends in (when non-nil) as a JSON body and decodes the answer into
// out (when non-nil).
func (c *HTTPClient) doJSON(ctx context.Context, r request, in, out any) error {
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		r.body = bytes.NewReader(b)
		r.contentType = "application/json"
	}
	r.accept = "application/json"

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *http.Response, out any) error {
	defer netx.DrainAndClose(resp.Body)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isInterrupted(err) {
			return mapError(err)
		}
		return &errx.Error{
			Kind:    errx.KindServer,
			Status:  resp.StatusCode,
			Message: "malformed response",
			Err:     err,
		}
	}
	return nil
}

// isInterrupted reports whether a body read stopped on a deadline or a
// cancellation rather than on bad content.
func isInterrupted(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

// payload wraps a binary response. The body stays open for the caller.
func payload(resp *http.Response) *models.Payload {
	return &models.Payload{
		Name:        netx.FilenameFromDisposition(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
		Body:        resp.Body,
	}
}

func (c *HTTPClient) getPayload(ctx context.Context, path string, anonymous bool) (*models.Payload, error) {
	resp, err := c.do(ctx, request{method: http.MethodGet, path: path, anonymous: anonymous})
	if err != nil {
		return nil, err
	}
	return payload(resp), nil
}

// mapError normalizes a failure that produced no usable response.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := errx.As(err); ok {
		return e
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return &errx.Error{Kind: errx.KindTransport, Message: "request timed out", Err: err}
	}
	return errx.Transport(err)
}

func (c *HTTPClient) Credentials() Credentials {
	cookies := c.jar.Cookies(c.baseURL)
	if len(cookies) == 0 {
		return nil
	}
	creds := make(Credentials, len(cookies))
	for _, ck := range cookies {
		creds[ck.Name] = ck.Value
	}
	return creds
}

func (c *HTTPClient) SetCredentials(creds Credentials) {
	c.jar.reset()
	if len(creds) == 0 {
		return
	}
	cookies := make([]*http.Cookie, 0, len(creds))
	for name, value := range creds {
		cookies = append(cookies, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

func (c *HTTPClient) ClearCredentials() Credentials {
	creds := c.Credentials()
	c.jar.reset()
	return creds
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
