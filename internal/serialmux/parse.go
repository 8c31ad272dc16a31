package serialmux

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	EventTypeSensorEdge  = "sensor_edge"
	EventTypeButtonLevel = "button_level"
	EventTypeAck         = "ack"
	EventTypeUnknown     = "unknown"
)

var ErrMalformedLine = errors.New("malformed device line")

// ClassifyPayload inspects a device line and returns a simple event type
// token. Only the leading token is checked; field parsing happens in the
// Parse* helpers.
func ClassifyPayload(payload string) string {
	payload = strings.TrimSpace(payload)
	switch {
	case strings.HasPrefix(payload, "E "):
		return EventTypeSensorEdge
	case strings.HasPrefix(payload, "B "):
		return EventTypeButtonLevel
	case payload == "OK" || strings.HasPrefix(payload, "OK ") ||
		payload == "ERR" || strings.HasPrefix(payload, "ERR "):
		return EventTypeAck
	}
	return EventTypeUnknown
}

// ParseSensorEdge decodes an `E <unix_ms>` line.
func ParseSensorEdge(payload string) (time.Time, error) {
	fields := strings.Fields(payload)
	if len(fields) != 2 || fields[0] != "E" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedLine, payload)
	}
	ms, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, fmt.Errorf("%w: bad edge timestamp %q", ErrMalformedLine, fields[1])
	}
	return time.UnixMilli(ms), nil
}

// ParseButtonLevel decodes a `B <button> <0|1>` line.
func ParseButtonLevel(payload string) (string, bool, error) {
	fields := strings.Fields(payload)
	if len(fields) != 3 || fields[0] != "B" {
		return "", false, fmt.Errorf("%w: %q", ErrMalformedLine, payload)
	}
	switch fields[2] {
	case "0":
		return fields[1], false, nil
	case "1":
		return fields[1], true, nil
	}
	return "", false, fmt.Errorf("%w: bad button level %q", ErrMalformedLine, fields[2])
}
