package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"trace", logrus.TraceLevel},
		{"", logrus.InfoLevel},
		{"loud", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, GetLevel(tt.in))
		})
	}
}

func TestSetup_File(t *testing.T) {
	t.Cleanup(func() {
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{})
	})

	base := filepath.Join(t.TempDir(), "formcoach")
	closer := Setup(Params{Level: "warn", File: base, JSON: true})
	require.NotNil(t, closer)

	logrus.Info("dropped")
	logrus.WithField("session", "abc").Warn("kept")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(base + ".log")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"session":"abc"`)
}

func TestSetup_Stdout(t *testing.T) {
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	assert.Nil(t, Setup(Params{Level: "debug"}))
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
