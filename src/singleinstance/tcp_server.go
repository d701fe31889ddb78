package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	residentHost     = "127.0.0.1"
	pingRequest      = "PING\n"
	pongResponse     = "PONG\n"
	captureVerb      = "CAPTURE"
	statusSuccess    = "SUCCESS\n"
	statusCancelled  = "CANCELLED\n"
	statusError      = "ERROR\n"
	handshakeTimeout = 3 * time.Second
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	lis       net.Listener
	incoming  chan *tcpConn
	port      int
	log       *zap.Logger
	closeOnce sync.Once
}

func newTcpServer() Server {
	return &tcpServer{incoming: make(chan *tcpConn, 8), log: zap.L().Named("singleinstance")}
}

// Start binds ONLY the start port of the configured range. If occupied, fail.
func (s *tcpServer) Start(ctx context.Context) error {
	if s.lis != nil {
		return nil
	}
	start, _ := PortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		s.log.Warn("failed to bind", zap.String("addr", addr), zap.Error(err))
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	s.lis = lis
	s.port = start
	s.log.Info("listening", zap.String("addr", addr))
	go s.acceptLoop(ctx, lis)
	return nil
}

// Port returns the bound port (0 if not started).
func (s *tcpServer) Port() int { return s.port }

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(handshakeTimeout))
		br := bufio.NewReader(c)
		line, _ := br.ReadString('\n')
		bw := bufio.NewWriter(c)
		if line == pingRequest {
			s.log.Debug("PING -> PONG", zap.String("remote", remote))
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
			continue
		}

		req, ok := parseRequest(line)
		if !ok {
			s.log.Warn("malformed request", zap.String("remote", remote), zap.String("line", strings.TrimSpace(line)))
			_, _ = bw.WriteString(statusError + "malformed request")
			_ = bw.Flush()
			_ = c.Close()
			continue
		}
		// The session may run for minutes; only the handshake is time-boxed.
		_ = c.SetDeadline(time.Time{})
		s.log.Info("run-once request", zap.String("remote", remote), zap.String("request_id", req.ID))
		select {
		case s.incoming <- &tcpConn{c: c, r: req, w: bw}:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

// parseRequest accepts "CAPTURE <id>\n". The id is optional.
func parseRequest(line string) (Request, bool) {
	if !strings.HasSuffix(line, "\n") {
		return Request{}, false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != captureVerb || len(fields) > 2 {
		return Request{}, false
	}
	var req Request
	if len(fields) == 2 {
		req.ID = fields[1]
	}
	return req, true
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc, ok := <-s.incoming:
		if !ok {
			return nil, net.ErrClosed
		}
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.lis != nil {
			err = s.lis.Close()
		}
	})
	return err
}

type tcpConn struct {
	c net.Conn
	r Request
	w *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondSuccess(detail string) error { return tc.respond(statusSuccess, detail) }

func (tc *tcpConn) RespondCancelled() error { return tc.respond(statusCancelled, "") }

func (tc *tcpConn) RespondError(msg string) error { return tc.respond(statusError, msg) }

func (tc *tcpConn) respond(status, body string) error {
	if _, err := tc.w.WriteString(status + body); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
