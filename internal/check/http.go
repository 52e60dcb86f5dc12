package check

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type HTTPChecker struct {
	Client *http.Client
	// Expect is the required status code. Zero accepts any 2xx or 3xx.
	Expect int
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) Result {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: "HTTP", Success: false, Message: err.Error(), Err: err}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return Result{Name: "HTTP", Success: false, Message: err.Error(), LatencyMS: latency, Err: err}
	}
	defer resp.Body.Close()

	success := resp.StatusCode >= 200 && resp.StatusCode < 400
	msg := resp.Status
	if h.Expect != 0 {
		success = resp.StatusCode == h.Expect
		if !success {
			msg = fmt.Sprintf("%s (want %d)", resp.Status, h.Expect)
		}
	}
	return Result{
		Name:       "HTTP",
		Success:    success,
		Message:    msg,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
	}
}
