package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLoggerFallsBackToGlobal(t *testing.T) {
	ctx := context.Background()
	entry := GetLogger(ctx)
	require.NotNil(t, entry)
	assert.Equal(t, L.Logger, entry.Logger)
}

func TestWithLoggerRoundTrip(t *testing.T) {
	base := logrus.New()
	entry := logrus.NewEntry(base).WithField("component", "test")

	ctx := WithLogger(context.Background(), entry)
	got := GetLogger(ctx)

	assert.Equal(t, base, got.Logger)
	assert.Equal(t, "test", got.Data["component"])
}

func TestSetLogLevel(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		require.NoError(t, SetLogLevel("debug"))
		assert.Equal(t, logrus.DebugLevel, L.Logger.GetLevel())
		require.NoError(t, SetLogLevel("info"))
	})

	t.Run("invalid level", func(t *testing.T) {
		assert.Error(t, SetLogLevel("nonsense"))
	})
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	setLoggerFormat(l, "json")

	l.Info("hello")
	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.Contains(t, buf.String(), `"logLevel":"info"`)
}
