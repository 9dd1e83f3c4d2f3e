// Package fetch performs catalog GET requests, retrying transient failures
// with exponential backoff.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("fetch")

var ErrFetch = errors.New("fetch failed")

// FetchError is a terminal failure, returned once retries are exhausted or
// the failure is not transient.
type FetchError struct {
	URL        string
	Attempts   int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %v: %v (after %d attempts)", e.URL, e.Err, e.Attempts)
	}
	return fmt.Sprintf("fetch %v: status %d (after %d attempts)", e.URL, e.StatusCode, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

type Config struct {
	// retries after the first attempt
	MaxRetries  int
	BackoffBase time.Duration
	MaxBackoff  time.Duration
	Timeout     time.Duration
	// zero disables rate limiting
	RequestsPerSecond float64
	UserAgent         string
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:  3,
		BackoffBase: 100 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
		Timeout:     30 * time.Second,
		UserAgent:   "wcu-course-db",
	}
}

type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
}

func New(cfg Config) *Fetcher {
	client := resty.New()
	client.SetLogger(slogLogger{})
	client.SetRetryCount(max(cfg.MaxRetries, 0))
	client.SetRetryWaitTime(cfg.BackoffBase)
	client.SetRetryMaxWaitTime(cfg.MaxBackoff)
	client.AddRetryCondition(retryable)
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.UserAgent != "" {
		client.SetHeader("user-agent", cfg.UserAgent)
	}

	f := &Fetcher{client: client}
	if cfg.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return f
}

// Fetch returns the body of url.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, span := tracer.Start(ctx, "Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("url", url))

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rate limiter wait failed")
			return "", &FetchError{URL: url, Err: err}
		}
	}

	res, err := f.client.R().
		SetContext(ctx).
		Get(url)

	attempts := 1
	if res != nil && res.Request != nil && res.Request.Attempt > 0 {
		attempts = res.Request.Attempt
	}
	span.SetAttributes(attribute.Int("attempts", attempts))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		slog.ErrorContext(ctx, "fetch failed", "url", url, "attempts", attempts, "err", err)
		return "", &FetchError{URL: url, Attempts: attempts, Err: err}
	}
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
		slog.ErrorContext(ctx, "fetch failed", "url", url, "attempts", attempts, "status", res.StatusCode())
		return "", &FetchError{URL: url, Attempts: attempts, StatusCode: res.StatusCode()}
	}

	slog.DebugContext(ctx, "fetched", "url", url, "attempts", attempts, "bytes", len(res.Body()))
	return res.String(), nil
}

func retryable(res *resty.Response, err error) bool {
	if err != nil {
		return transient(err)
	}
	if res == nil {
		return false
	}
	status := res.StatusCode()
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

func transient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF)
}

type slogLogger struct{}

func (slogLogger) Errorf(format string, v ...any) {
	slog.Error(fmt.Sprintf(format, v...))
}

func (slogLogger) Warnf(format string, v ...any) {
	slog.Warn(fmt.Sprintf(format, v...))
}

func (slogLogger) Debugf(format string, v ...any) {
	slog.Debug(fmt.Sprintf(format, v...))
}
