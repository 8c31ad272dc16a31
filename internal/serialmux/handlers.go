package serialmux

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/laptimer/internal/monitoring"
)

// Sink receives decoded device input. Implementations are called on the
// routing goroutine and must not block.
type Sink interface {
	SensorEdge(at time.Time)
	ButtonLevel(button string, level bool)
}

func HandleSensorEdge(sink Sink, payload string) error {
	at, err := ParseSensorEdge(payload)
	if err != nil {
		return err
	}
	sink.SensorEdge(at)
	return nil
}

func HandleButtonLevel(sink Sink, payload string) error {
	button, level, err := ParseButtonLevel(payload)
	if err != nil {
		return err
	}
	sink.ButtonLevel(button, level)
	return nil
}

func HandleEvent(sink Sink, payload string) error {
	switch ClassifyPayload(payload) {
	case EventTypeSensorEdge:
		if err := HandleSensorEdge(sink, payload); err != nil {
			return fmt.Errorf("failed to handle sensor edge: %w", err)
		}
	case EventTypeButtonLevel:
		if err := HandleButtonLevel(sink, payload); err != nil {
			return fmt.Errorf("failed to handle button level: %w", err)
		}
	case EventTypeAck:
		monitoring.Logf("device: %s", payload)
	default:
		monitoring.Logf("unknown event type: %s", payload)
	}
	return nil
}

// Route subscribes to mux and feeds every line to sink until ctx is done or
// the mux closes the subscription. Malformed lines are logged and skipped.
func Route(ctx context.Context, mux SerialMuxInterface, sink Sink) error {
	id, lines := mux.Subscribe()
	defer mux.Unsubscribe(id)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if err := HandleEvent(sink, line); err != nil {
				monitoring.Logf("error handling event: %v", err)
			}
		}
	}
}
