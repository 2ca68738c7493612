package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
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

func TestZerologLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("cache", &buf)
	l.Debugw("window", map[string]any{"partition": "5790000611003", "price": 0.35})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "cache", line["component"])
	assert.Equal(t, "window", line["message"])
	assert.Equal(t, "5790000611003", line["partition"])
	assert.Equal(t, 0.35, line["price"])
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.DebugLevel)

	require.NoError(t, SetLevel("warn"))
	var buf bytes.Buffer
	l := NewWithWriter("x", &buf)
	l.Infof("hidden")
	l.Warnf("shown")
	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.True(t, strings.Contains(buf.String(), "shown"))

	assert.NoError(t, SetLevel(""))
	assert.Error(t, SetLevel("loud"))
}
