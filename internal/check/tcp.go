package check

import (
	"context"
	"net"
	"time"
)

// TCPChecker succeeds when a TCP connection to host:port can be opened.
type TCPChecker struct {
	Dialer *net.Dialer
}

func NewTCPChecker(timeout time.Duration) *TCPChecker {
	return &TCPChecker{Dialer: &net.Dialer{Timeout: timeout}}
}

func (c *TCPChecker) Check(ctx context.Context, target string) Result {
	start := time.Now()
	conn, err := c.Dialer.DialContext(ctx, "tcp", target)
	latency := time.Since(start).Seconds() * 1000
	if err != nil {
		return Result{Name: "TCP", Success: false, Message: err.Error(), LatencyMS: latency, Err: err}
	}
	_ = conn.Close()
	return Result{Name: "TCP", Success: true, Message: "connected", LatencyMS: latency}
}
