package capture

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestNewCamera(t *testing.T) {
	tests := []struct {
		name string
		cam  Camera
	}{
		{name: "default device", cam: NewCamera(0)},
		{name: "device 1", cam: NewCamera(1)},
		{name: "video file", cam: NewVideoFile("workout.mp4")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.cam)
			assert.Equal(t, DefaultFPS, tt.cam.FPS())
			assert.False(t, tt.cam.IsOpen(), "source should not be open initially")
		})
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	tests := []struct {
		name    string
		fps     int
		wantFPS int
	}{
		{name: "set to 10", fps: 10, wantFPS: 10},
		{name: "set to 30", fps: 30, wantFPS: 30},
		{name: "set to 1", fps: 1, wantFPS: 1},
		{name: "set to 0 should keep previous", fps: 0, wantFPS: 1},
		{name: "set to negative should keep previous", fps: -5, wantFPS: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetFPS(tt.fps)
			assert.Equal(t, tt.wantFPS, cam.FPS())
		})
	}
}

func TestCamera_ReadFrame_NotOpened(t *testing.T) {
	for _, cam := range []Camera{NewCamera(0), NewVideoFile("workout.mp4")} {
		_, err := cam.ReadFrame()
		assert.ErrorIs(t, err, ErrCameraNotOpen)
	}
}

func TestCamera_Close_NotOpened(t *testing.T) {
	cam := NewCamera(0)
	assert.NoError(t, cam.Close(), "Close() on a source that was never opened")
}

func TestVideoFile_Missing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping OpenCV test in short mode")
	}

	cam := NewVideoFile(filepath.Join(t.TempDir(), "missing.avi"))
	assert.Error(t, cam.Open())
	assert.False(t, cam.IsOpen())
}

func TestVideoFile_Playback_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	path := filepath.Join(t.TempDir(), "clip.avi")
	writer, err := gocv.VideoWriterFile(path, "MJPG", 10, DefaultWidth, DefaultHeight, true)
	if err != nil {
		t.Skipf("skipping test - video writer not available: %v", err)
	}
	frame := gocv.NewMatWithSize(DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	const written = 5
	for i := 0; i < written; i++ {
		require.NoError(t, writer.Write(frame))
	}
	frame.Close()
	require.NoError(t, writer.Close())

	cam := NewVideoFile(path)
	require.NoError(t, cam.Open())
	defer cam.Close()
	assert.Equal(t, 10, cam.FPS(), "video files report their native rate")

	read := 0
	for {
		mat, err := cam.ReadFrame()
		if err != nil {
			assert.ErrorIs(t, err, ErrEndOfStream)
			break
		}
		mat.Close()
		read++
		require.LessOrEqual(t, read, written)
	}
	assert.Equal(t, written, read)
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cam := NewCamera(0)

	if err := cam.Open(); err != nil {
		t.Skipf("skipping test - camera not available: %v", err)
	}
	assert.True(t, cam.IsOpen())

	mat, err := cam.ReadFrame()
	if assert.NoError(t, err) {
		assert.False(t, mat.Empty())
		if mat.Cols() != DefaultWidth || mat.Rows() != DefaultHeight {
			t.Logf("Frame dimensions: %dx%d (camera may not support 640x480)", mat.Cols(), mat.Rows())
		}
		mat.Close()
	}

	assert.NoError(t, cam.Close())
	assert.False(t, cam.IsOpen())
}
