package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiHandler_FanOut(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	handler := NewMultiHandler(
		slog.NewJSONHandler(&a, nil),
		slog.NewJSONHandler(&b, nil),
	)
	log := slog.New(handler)

	log.Info("fan out")

	if !strings.Contains(a.String(), "fan out") {
		t.Error("first handler did not receive the record")
	}
	if !strings.Contains(b.String(), "fan out") {
		t.Error("second handler did not receive the record")
	}
}

func TestMultiHandler_SkipsNilHandlers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := NewMultiHandler(nil, slog.NewJSONHandler(&buf, nil), nil)
	log := slog.New(handler)

	log.Info("nil safe")

	if !strings.Contains(buf.String(), "nil safe") {
		t.Error("record lost when nil handlers present")
	}
}

func TestMultiHandler_LevelFilterPerHandler(t *testing.T) {
	t.Parallel()

	var debugBuf, warnBuf bytes.Buffer
	handler := NewMultiHandler(
		slog.NewJSONHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(handler)

	log.Debug("debug only")

	if !strings.Contains(debugBuf.String(), "debug only") {
		t.Error("debug handler did not receive debug record")
	}
	if warnBuf.Len() != 0 {
		t.Error("warn handler received debug record")
	}
}
