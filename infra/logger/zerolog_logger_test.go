package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corelogger "github.com/kilianp07/resplan/core/logger"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, "planner")
	l := corelogger.With(base, map[string]any{"run_id": "abc"})
	l.Infof("scheduled %d", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "planner", entry["component"])
	assert.Equal(t, "abc", entry["run_id"])
	assert.Equal(t, "scheduled 3", entry["message"])
}

func TestWithOnPlainLogger(t *testing.T) {
	l := corelogger.With(NopLogger{}, map[string]any{"k": "v"})
	if _, ok := l.(NopLogger); !ok {
		t.Fatalf("expected the same logger back, got %T", l)
	}
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)
	require.NoError(t, SetLevel("warn"))
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "x")
	l.Infof("hidden")
	l.Warnf("shown")
	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
	assert.Error(t, SetLevel("loud"))
	assert.NoError(t, SetLevel(""))
}
