package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/ayusman/formcoach/internal/capture"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/server"
	"github.com/ayusman/formcoach/internal/session"
	"github.com/ayusman/formcoach/internal/store"
)

func newTestCoach(t *testing.T) (*coach, *exercise.Catalog) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	catalog, err := exercise.LoadCatalog()
	require.NoError(t, err)
	require.NoError(t, st.Exercises().Seed(catalog.List()))

	frame := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })

	sessions := session.NewManager(session.ManagerConfig{
		Exercises: st.Exercises(),
		NewCamera: func(session.Source) capture.Camera {
			cam := capture.NewMockCamera([]*gocv.Mat{&frame}, true)
			cam.SetFPS(100)
			return cam
		},
		NewDetector: func() (detector.Detector, error) {
			return detector.NewMockDetector(), nil
		},
	})
	t.Cleanup(sessions.StopAll)

	c := &coach{
		sessions: sessions,
		server:   server.New(server.Config{Sessions: sessions}),
		settings: st.Settings(),
	}
	return c, catalog
}

func TestCoach_InitialExercise(t *testing.T) {
	c, catalog := newTestCoach(t)

	typ, err := c.initialExercise("", catalog)
	require.NoError(t, err)
	assert.Equal(t, exercise.PushUp, typ, "first menu entry without history")

	typ, err = c.initialExercise("Hammer Curl", catalog)
	require.NoError(t, err)
	assert.Equal(t, exercise.HammerCurl, typ)

	_, err = c.initialExercise("plank", catalog)
	assert.ErrorIs(t, err, exercise.ErrUnknownType)

	require.NoError(t, c.settings.Set(store.SettingLastExercise, string(exercise.Squat)))
	typ, err = c.initialExercise("", catalog)
	require.NoError(t, err)
	assert.Equal(t, exercise.Squat, typ, "last exercise is remembered")
}

func TestCoach_SwitchTo(t *testing.T) {
	c, _ := newTestCoach(t)

	first, err := c.switchTo(exercise.Squat)
	require.NoError(t, err)
	assert.True(t, first.Running())

	second, err := c.switchTo(exercise.PushUp)
	require.NoError(t, err)
	assert.False(t, first.Running(), "previous session is stopped")
	assert.True(t, second.Running())
	require.Len(t, c.sessions.List(), 1)

	last, err := c.settings.Get(store.SettingLastExercise)
	require.NoError(t, err)
	assert.Equal(t, string(exercise.PushUp), last)

	// Stopped behind the coach's back, as the API would.
	require.NoError(t, c.sessions.Stop(second.ID))
	c.reset()
	c.stop()
	assert.Empty(t, c.sessions.List())
}
