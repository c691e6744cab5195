package probe

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/qualixa/qualixa/internal/safenet"
)

const defaultMaxBodyRead = 1 << 20 // 1MB

// Dispatcher executes probe requests. One call to Do issues exactly
// one outbound HTTP request; there are no retries and redirects follow
// the http.Client default.
type Dispatcher struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewDispatcher builds a Dispatcher with the given per-probe timeout.
// A timeout of zero falls back to 30 seconds. When allowPrivate is
// false, targets resolving to private/reserved addresses are refused
// at dial time.
func NewDispatcher(timeout time.Duration, maxBodyBytes int64, allowPrivate bool) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyRead
	}
	return &Dispatcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: timeout,
					Control: safenet.MaybeDialControl(allowPrivate),
				}).DialContext,
				DisableKeepAlives: true,
			},
		},
		maxBodyBytes: maxBodyBytes,
	}
}

// Do dispatches the request and captures the response. Elapsed time is
// measured from just before the request is sent to just after the body
// is fully read, or up to the failure point. Transport-level errors do
// not propagate: they come back as a Result with Status 0 and the
// failure message in Body.
func (d *Dispatcher) Do(ctx context.Context, req Request) *Result {
	start := time.Now()

	var bodyReader io.Reader
	if req.Body != nil {
		bodyReader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
	if err != nil {
		return &Result{Body: err.Error(), ElapsedMs: time.Since(start).Milliseconds()}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return &Result{Body: err.Error(), ElapsedMs: time.Since(start).Milliseconds()}
	}
	defer resp.Body.Close()

	bodyBytes, readErr := io.ReadAll(io.LimitReader(resp.Body, d.maxBodyBytes))
	elapsed := time.Since(start).Milliseconds()
	if readErr != nil {
		return &Result{Body: readErr.Error(), ElapsedMs: elapsed}
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[strings.ToLower(k)] = resp.Header.Get(k)
	}

	return &Result{
		Status:    resp.StatusCode,
		Headers:   headers,
		Body:      string(bodyBytes),
		ElapsedMs: elapsed,
	}
}
