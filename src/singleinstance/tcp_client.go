package singleinstance

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type tcpClient struct{}

func newTcpClient() Client { return &tcpClient{} }

func (c *tcpClient) TryRunOnce(ctx context.Context) (bool, string, error) {
	dialTimeout := 2 * time.Second
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 && d < dialTimeout {
			dialTimeout = d
		}
	}
	log := zap.L().Named("singleinstance")
	_, addr, ok := findResident(ctx, dialTimeout)
	if !ok {
		return false, "", nil
	}
	id := ulid.Make().String()
	log.Info("delegating to resident", zap.String("addr", addr), zap.String("request_id", id))
	detail, err := c.request(ctx, addr, id, dialTimeout)
	return true, detail, err
}

func (c *tcpClient) request(ctx context.Context, addr, id string, dialTimeout time.Duration) (string, error) {
	var d net.Dialer
	d.Timeout = dialTimeout
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("failed to connect to resident: %w", err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	w := bufio.NewWriter(conn)
	if _, err := fmt.Fprintf(w, "%s %s\n", captureVerb, id); err != nil {
		return "", err
	}
	if err := w.Flush(); err != nil {
		return "", err
	}

	br := bufio.NewReader(conn)
	status, err := br.ReadString('\n')
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to read resident status: %w", err)
	}
	body, _ := io.ReadAll(br)
	switch status {
	case statusSuccess:
		return string(body), nil
	case statusCancelled:
		return "", ErrCancelled
	case statusError:
		return "", errors.New(string(body))
	}
	return "", fmt.Errorf("unexpected resident status %q", status)
}
