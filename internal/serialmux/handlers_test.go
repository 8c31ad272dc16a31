package serialmux

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recordingSink struct {
	edges   []time.Time
	buttons []string
}

func (s *recordingSink) SensorEdge(at time.Time) {
	s.edges = append(s.edges, at)
}

func (s *recordingSink) ButtonLevel(button string, level bool) {
	v := "0"
	if level {
		v = "1"
	}
	s.buttons = append(s.buttons, button+"="+v)
}

func TestClassifyPayload(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"E 1700000000123", EventTypeSensorEdge},
		{"B start 1", EventTypeButtonLevel},
		{"OK", EventTypeAck},
		{"OK LC", EventTypeAck},
		{"ERR bad cursor", EventTypeAck},
		{"  E 5\r", EventTypeSensorEdge},
		{"EXTRA", EventTypeUnknown},
		{"OKAY", EventTypeUnknown},
		{"", EventTypeUnknown},
	}

	for _, c := range cases {
		got := ClassifyPayload(c.in)
		if got != c.want {
			t.Fatalf("ClassifyPayload(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestParseSensorEdge(t *testing.T) {
	got, err := ParseSensorEdge("E 1700000000123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := time.UnixMilli(1700000000123); !got.Equal(want) {
		t.Errorf("ParseSensorEdge = %v, want %v", got, want)
	}

	for _, bad := range []string{"E", "E abc", "E -5", "E 0", "E 1 2", "X 1"} {
		if _, err := ParseSensorEdge(bad); !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseSensorEdge(%q) error = %v, want ErrMalformedLine", bad, err)
		}
	}
}

func TestParseButtonLevel(t *testing.T) {
	button, level, err := ParseButtonLevel("B info 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if button != "info" || !level {
		t.Errorf("ParseButtonLevel = (%q, %v), want (info, true)", button, level)
	}

	for _, bad := range []string{"B start", "B start 2", "B start 1 1", "E start 1"} {
		if _, _, err := ParseButtonLevel(bad); !errors.Is(err, ErrMalformedLine) {
			t.Errorf("ParseButtonLevel(%q) error = %v, want ErrMalformedLine", bad, err)
		}
	}
}

func TestHandleEvent(t *testing.T) {
	sink := &recordingSink{}

	lines := []string{"E 1000", "B start 1", "OK", "garbage", "B start 0", "E 2200"}
	for _, line := range lines {
		if err := HandleEvent(sink, line); err != nil {
			t.Fatalf("HandleEvent(%q) failed: %v", line, err)
		}
	}

	if diff := cmp.Diff([]time.Time{time.UnixMilli(1000), time.UnixMilli(2200)}, sink.edges); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"start=1", "start=0"}, sink.buttons); diff != "" {
		t.Errorf("buttons mismatch (-want +got):\n%s", diff)
	}

	if err := HandleEvent(sink, "E nope"); err == nil {
		t.Error("expected error for malformed edge")
	}
	if err := HandleEvent(sink, "B start x"); err == nil {
		t.Error("expected error for malformed button level")
	}
}

func TestRoute(t *testing.T) {
	port := NewTestableSerialPort()
	mux := NewSerialMux(port)
	sink := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go mux.Monitor(ctx)

	done := make(chan error, 1)
	go func() { done <- Route(context.Background(), mux, sink) }()

	// wait for the route subscription before feeding lines
	deadline := time.Now().Add(time.Second)
	for {
		mux.subscriberMu.Lock()
		n := len(mux.subscribers)
		mux.subscriberMu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Route never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	port.AddReadData("E 1000\nE bad\nB info 1\n")
	time.Sleep(100 * time.Millisecond)

	// closing the mux closes the subscription, which ends Route
	mux.Close()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Route returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Route did not return after Close")
	}

	if len(sink.edges) != 1 || !sink.edges[0].Equal(time.UnixMilli(1000)) {
		t.Errorf("edges = %v, want [1000ms]", sink.edges)
	}
	if diff := cmp.Diff([]string{"info=1"}, sink.buttons); diff != "" {
		t.Errorf("buttons mismatch (-want +got):\n%s", diff)
	}
}

func TestRoute_ContextCancel(t *testing.T) {
	mux := NewSerialMux(NewTestableSerialPort())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Route(ctx, mux, &recordingSink{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Route error = %v, want context.Canceled", err)
	}
	mux.subscriberMu.Lock()
	defer mux.subscriberMu.Unlock()
	if len(mux.subscribers) != 0 {
		t.Errorf("expected Route to unsubscribe, %d subscribers left", len(mux.subscribers))
	}
}
