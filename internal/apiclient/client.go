// Package apiclient is the HTTP transport for the content API. It owns
// base-URL resolution, body encoding, credentials, rate limiting, tracing and
// the mapping of failures onto resource.ClientError.
package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"contentadmin/internal/jsonutil"
	"contentadmin/internal/resource"
)

// RequestIDHeader carries a per-request UUID for correlating client and server logs.
const RequestIDHeader = "X-Request-ID"

// TokenSource supplies the bearer token for each request. An empty token
// sends no Authorization header.
type TokenSource func() string

// Client performs requests relative to a base URL.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	tracer  oteltrace.Tracer
	logger  *zap.Logger
	token   TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit throttles requests to rps per second with the given burst.
// rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithTracer(t oteltrace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.token = ts }
}

// WithTransport replaces the underlying RoundTripper (tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.http.Transport = rt }
}

// New returns a client for baseURL. The client keeps a cookie jar so
// credentials set by the server travel with later requests.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.Wrap(err, "cookie jar")
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Jar: jar, Timeout: 15 * time.Second},
		tracer: noop.NewTracerProvider().Tracer("contentadmin/apiclient"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Cookie returns the value of a cookie the server set for the base URL.
func (c *Client) Cookie(name string) string {
	for _, ck := range c.http.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

// ClearCookies drops every stored cookie.
func (c *Client) ClearCookies() {
	jar, err := cookiejar.New(nil)
	if err == nil {
		c.http.Jar = jar
	}
}

// Response is a successful (2xx) response with its body fully read.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v interface{}) error {
	return jsonutil.UnmarshalWithContext(r.Body, v, "decode response")
}

// RequestOption adjusts an outgoing request.
type RequestOption func(*http.Request)

// WithQuery merges q into the request's query string.
func WithQuery(q url.Values) RequestOption {
	return func(r *http.Request) {
		cur := r.URL.Query()
		for k, vs := range q {
			for _, v := range vs {
				cur.Add(k, v)
			}
		}
		r.URL.RawQuery = cur.Encode()
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body Body, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body Body, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do sends one request. Every failure is a *resource.ClientError: an
// unreadable attachment is a ValidationError on its field, other transport
// and encoding failures are NetworkError, non-2xx statuses are mapped by code.
func (c *Client) Do(ctx context.Context, method, path string, body Body, opts ...RequestOption) (*Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, resource.NetworkError(err)
	}

	ctx, span := c.tracer.Start(ctx, method+" "+strings.TrimPrefix(path, "/"),
		oteltrace.WithSpanKind(oteltrace.SpanKindClient),
		oteltrace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", target.String()),
		))
	defer span.End()

	var reader io.Reader
	contentType := ""
	if body != nil {
		reader, contentType, err = body.Encode()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "encode body")
			return nil, encodeError(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, resource.NetworkError(errors.Wrap(err, "build request"))
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != nil {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for _, opt := range opts {
		opt(req)
	}
	span.SetAttributes(attribute.String("http.request_id", requestID))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rate limit wait")
			return nil, resource.NetworkError(errors.Wrap(err, "rate limit wait"))
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("url", req.URL.String()),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, resource.NetworkError(errors.Wrapf(err, "%s %s", method, path))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, resource.NetworkError(errors.Wrap(err, "read response"))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", requestID))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ce := mapStatus(resp.StatusCode, data)
		span.SetStatus(codes.Error, ce.Kind.String())
		return nil, ce
	}
	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	rel, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "parse path %q", path)
	}
	return c.base.ResolveReference(rel), nil
}

// encodeError maps a body that could not be built locally. No request was sent.
func encodeError(err error) error {
	var ae *AttachmentError
	if errors.As(err, &ae) {
		msg := "Could not read file " + filepath.Base(ae.Path)
		if errors.Is(ae.Err, os.ErrNotExist) {
			msg = "File not found: " + filepath.Base(ae.Path)
		}
		return resource.ValidationError(msg, map[string]string{ae.Field: msg})
	}
	return resource.NetworkError(err)
}
