package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ctxKey struct{}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	m := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestHandler_RequestIdAndSource(t *testing.T) {
	_, thisFile, _, _ := runtime.Caller(0)

	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelDebug, "json", filepath.Dir(thisFile), ctxKey{})
	require.NoError(t, err)

	l := slog.New(h)
	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	l.InfoContext(ctx, "hello")

	rec := lastRecord(t, &buf)
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])

	src, ok := rec[slog.SourceKey].(map[string]any)
	require.True(t, ok, rec)
	assert.Equal(t, "handler_test.go", src["file"])
}

func TestHandler_WithAttrsKeepsRequestId(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelDebug, "json", "/nowhere", ctxKey{})
	require.NoError(t, err)

	l := slog.New(h).With(slog.String("component", "books")).WithGroup("g")
	l.InfoContext(context.WithValue(context.Background(), ctxKey{}, "req-2"), "with attrs")

	rec := lastRecord(t, &buf)
	assert.Equal(t, "books", rec["component"])
	g, ok := rec["g"].(map[string]any)
	require.True(t, ok, rec)
	assert.Equal(t, "req-2", g["request_id"])
}

func TestHandler_NoRequestId(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelDebug, "json", "/nowhere", ctxKey{})
	require.NoError(t, err)

	slog.New(h).Info("plain")

	_, ok := lastRecord(t, &buf)["request_id"]
	assert.False(t, ok)
}

func TestHandler_NilRequestIdKey(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelDebug, "json", "/nowhere", nil)
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-3")
	assert.NotPanics(t, func() { slog.New(h).InfoContext(ctx, "no key") })

	rec := lastRecord(t, &buf)
	assert.Equal(t, "no key", rec["msg"])
	_, ok := rec["request_id"]
	assert.False(t, ok)
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelWarn, "text", "/nowhere", nil)
	require.NoError(t, err)

	l := slog.New(h)
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewHandler_BadFormat(t *testing.T) {
	_, err := NewHandler(&bytes.Buffer{}, slog.LevelInfo, "xml", "/", nil)
	assert.Error(t, err)
}

func TestPGXTracer_DropsArgs(t *testing.T) {
	var buf bytes.Buffer
	h, err := NewHandler(&buf, slog.LevelDebug, "json", "/nowhere", nil)
	require.NoError(t, err)

	tr := NewPGXTracer(slog.New(h))
	tr.Logger.Log(context.Background(), tracelog.LogLevelError, "Query", map[string]any{
		"sql":  "SELECT 1",
		"args": []any{"secret"},
		"pid":  uint32(42),
	})

	rec := lastRecord(t, &buf)
	assert.Equal(t, "Query", rec["msg"])
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "SELECT 1", rec["sql"])
	assert.NotContains(t, buf.String(), "secret")
	_, hasPid := rec["pid"]
	assert.False(t, hasPid)
}

func TestSlogLevel(t *testing.T) {
	cases := map[tracelog.LogLevel]slog.Level{
		tracelog.LogLevelTrace: slog.LevelDebug,
		tracelog.LogLevelDebug: slog.LevelDebug,
		tracelog.LogLevelInfo:  slog.LevelDebug,
		tracelog.LogLevelWarn:  slog.LevelWarn,
		tracelog.LogLevelError: slog.LevelError,
	}

	for in, want := range cases {
		got, known := slogLevel(in)
		assert.True(t, known)
		assert.Equal(t, want, got, in.String())
	}

	_, known := slogLevel(tracelog.LogLevel(99))
	assert.False(t, known)
}
