package singleinstance

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"time"
)

const probeTimeout = 300 * time.Millisecond

// DetectResidentPort returns the first port in range whose listener answers
// PING with PONG.
func DetectResidentPort(ctx context.Context) (int, bool) {
	port, _, ok := findResident(ctx, probeTimeout)
	return port, ok
}

// findResident probes the range in order. timeout bounds each probe and is
// shortened to the ctx deadline.
func findResident(ctx context.Context, timeout time.Duration) (int, string, bool) {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < timeout {
			timeout = d
		}
	}
	start, end := PortRange()
	for port := start; port <= end; port++ {
		if ctx.Err() != nil {
			return 0, "", false
		}
		addr := net.JoinHostPort(residentHost, strconv.Itoa(port))
		if probe(ctx, addr, timeout) {
			return port, addr, true
		}
	}
	return 0, "", false
}

func probe(ctx context.Context, addr string, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := conn.Write([]byte(pingRequest)); err != nil {
		return false
	}
	resp, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && resp == pongResponse
}
