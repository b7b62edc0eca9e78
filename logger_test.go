package stxtconverter

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return buf
}

func TestDefaultLoggerIsSilent(t *testing.T) {
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("default logger logs errors")
	}
}

func TestSetLogger(t *testing.T) {
	logs := captureLogs(t)

	data := encodeForTest(t, "hello", nil)
	data = append(data, bytes.Repeat([]byte{0xAB}, 20)...)
	if _, _, err := DecodeStyledText(data); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "ignoring unknown section") {
		t.Errorf("logs = %q", logs.String())
	}

	SetLogger(nil)
	if Logger().Enabled(t.Context(), slog.LevelError) {
		t.Error("nil did not restore the silent logger")
	}
}
