package alfa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"golang.org/x/time/rate"
)

// apiError is a non-2xx broker response that survived the retry pipeline.
type apiError struct {
	StatusCode int
	Body       []byte
}

func (e *apiError) Error() string {
	return fmt.Sprintf("broker API error: status=%d body=%s", e.StatusCode, string(e.Body))
}

// requester is the authenticated HTTP layer under every broker operation.
// Throttled client-side, and retried with bounded exponential backoff on 429
// and 5xx responses; after exhaustion the last fault is returned to the
// caller, which maps it to the Unavailable/Rejected taxonomy.
type requester struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	pipeline   failsafe.Executor[*http.Response]
}

func newRequester(baseURL, token string, timeout time.Duration, rps float64) *requester {
	retryPolicy := retrypolicy.NewBuilder[*http.Response]().
		HandleIf(func(resp *http.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		}).
		WithBackoff(500*time.Millisecond, 5*time.Second).
		WithMaxRetries(3).
		Build()

	if rps <= 0 {
		rps = 5
	}

	return &requester{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		pipeline:   failsafe.With(retryPolicy),
	}
}

func (r *requester) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	return r.do(ctx, http.MethodGet, path, params, nil)
}

func (r *requester) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	return r.do(ctx, http.MethodPost, path, nil, body)
}

func (r *requester) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	// The request is rebuilt per attempt so retried POSTs get a fresh body.
	resp, err := r.pipeline.GetWithExecution(func(exec failsafe.Execution[*http.Response]) (*http.Response, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		if query != nil {
			req.URL.RawQuery = query.Encode()
		}
		req.Header.Set("Authorization", "Bearer "+r.token)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return r.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiError{StatusCode: resp.StatusCode, Body: data}
	}
	return data, nil
}
