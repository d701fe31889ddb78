package singleinstance

import (
	"context"
	"errors"
	"testing"
	"time"
)

// useFreePortRange points the range at a port unlikely to be taken by a real resident.
func useFreePortRange(t *testing.T, port string) {
	t.Setenv("SINGLEINSTANCE_PORT_START", port)
	t.Setenv("SINGLEINSTANCE_PORT_END", port)
}

func startServer(t *testing.T, ctx context.Context) Server {
	t.Helper()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback TCP unavailable in this environment: %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func TestServerClientRoundTrip(t *testing.T) {
	useFreePortRange(t, "49671")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)

	if port, ok := DetectResidentPort(ctx); !ok || port != srv.Port() {
		t.Fatalf("DetectResidentPort() = %d, %v; expected %d", port, ok, srv.Port())
	}

	client := NewClient()
	type outcome struct {
		delegated bool
		detail    string
		err       error
	}
	done := make(chan outcome, 1)
	go func() {
		delegated, detail, err := client.TryRunOnce(ctx)
		done <- outcome{delegated, detail, err}
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().ID == "" {
		t.Errorf("expected request id")
	}
	if err := conn.RespondSuccess("saved /tmp/shot.png"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	conn.Close()

	o := <-done
	if o.err != nil || !o.delegated {
		t.Fatalf("TryRunOnce() = %v, %v", o.delegated, o.err)
	}
	if o.detail != "saved /tmp/shot.png" {
		t.Errorf("unexpected detail %q", o.detail)
	}
}

func TestClientReportsCancelAndError(t *testing.T) {
	useFreePortRange(t, "49672")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := startServer(t, ctx)
	client := NewClient()

	for _, tc := range []struct {
		respond func(Conn) error
		check   func(error) bool
	}{
		{func(c Conn) error { return c.RespondCancelled() }, func(err error) bool { return errors.Is(err, ErrCancelled) }},
		{func(c Conn) error { return c.RespondError("Busy, please retry") }, func(err error) bool {
			return err != nil && err.Error() == "Busy, please retry"
		}},
	} {
		done := make(chan error, 1)
		go func() {
			_, _, err := client.TryRunOnce(ctx)
			done <- err
		}()
		conn, err := srv.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if err := tc.respond(conn); err != nil {
			t.Fatal(err)
		}
		conn.Close()
		if err := <-done; !tc.check(err) {
			t.Errorf("unexpected client error %v", err)
		}
	}
}

func TestNoResident(t *testing.T) {
	useFreePortRange(t, "49673")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	delegated, _, err := NewClient().TryRunOnce(ctx)
	if err != nil || delegated {
		t.Errorf("TryRunOnce() without resident = %v, %v", delegated, err)
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		line string
		id   string
		ok   bool
	}{
		{"CAPTURE 01HZX\n", "01HZX", true},
		{"CAPTURE\n", "", true},
		{"CAPTURE 01HZX", "", false},
		{"STDOUT\n", "", false},
		{"CAPTURE a b\n", "", false},
	}
	for _, tt := range tests {
		req, ok := parseRequest(tt.line)
		if ok != tt.ok || req.ID != tt.id {
			t.Errorf("parseRequest(%q) = %+v, %v; expected id %q, %v", tt.line, req, ok, tt.id, tt.ok)
		}
	}
}

func TestPortRange(t *testing.T) {
	tests := []struct {
		start, end         string
		wantStart, wantEnd int
	}{
		{"", "", defaultPortStart, defaultPortEnd},
		{"60010", "60000", 60000, 60010},
		{"80", "90000", minUserPort, maxPort},
		{"junk", "49700", defaultPortStart, 49700},
	}
	for _, tt := range tests {
		t.Setenv("SINGLEINSTANCE_PORT_START", tt.start)
		t.Setenv("SINGLEINSTANCE_PORT_END", tt.end)
		start, end := PortRange()
		if start != tt.wantStart || end != tt.wantEnd {
			t.Errorf("PortRange() with %q-%q = %d-%d; expected %d-%d", tt.start, tt.end, start, end, tt.wantStart, tt.wantEnd)
		}
	}
}
