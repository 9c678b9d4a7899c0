package session

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/formcoach/internal/capture"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
)

func newTestManager(t *testing.T, newDetector func() (detector.Detector, error)) *Manager {
	t.Helper()
	catalog, err := exercise.LoadCatalog()
	require.NoError(t, err)

	frames := newFrames(t, 1)
	m := NewManager(ManagerConfig{
		Exercises: catalog,
		NewCamera: func(src Source) capture.Camera {
			cam := capture.NewMockCamera(frames, true)
			cam.SetFPS(100)
			return cam
		},
		NewDetector: newDetector,
	})
	t.Cleanup(m.StopAll)
	return m
}

func mockDetectors() (detector.Detector, error) {
	d := detector.NewMockDetector()
	d.SetPose(detector.CurlPose(165, 165, 0, 0))
	return d, nil
}

func TestManager_Lifecycle(t *testing.T) {
	m := newTestManager(t, mockDetectors)

	curl, err := m.Launch(exercise.HammerCurl, Source{})
	require.NoError(t, err)
	assert.True(t, curl.Running())
	assert.Equal(t, "Hammer Curl", curl.Info.Name)

	time.Sleep(time.Millisecond)
	squat, err := m.Create(exercise.Squat, Source{Camera: 1})
	require.NoError(t, err)
	assert.False(t, squat.Running(), "Create does not start the session")

	got, err := m.Get(curl.ID)
	require.NoError(t, err)
	assert.Same(t, curl, got)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, curl.ID, list[0].ID)
	assert.Equal(t, squat.ID, list[1].ID)

	require.NoError(t, m.Stop(curl.ID))
	assert.False(t, curl.Running())

	_, err = m.Get(curl.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Stop(curl.ID), ErrNotFound)
	assert.Len(t, m.List(), 1)
}

func TestManager_Errors(t *testing.T) {
	t.Run("unknown exercise", func(t *testing.T) {
		m := newTestManager(t, mockDetectors)
		_, err := m.Create("plank", Source{})
		assert.ErrorIs(t, err, exercise.ErrUnknownType)
		assert.Empty(t, m.List())
	})

	t.Run("detector unavailable", func(t *testing.T) {
		m := newTestManager(t, func() (detector.Detector, error) {
			return nil, errors.New("python not found")
		})
		_, err := m.Launch(exercise.Squat, Source{})
		assert.ErrorContains(t, err, "python not found")
		assert.Empty(t, m.List())
	})

	t.Run("unknown id", func(t *testing.T) {
		m := newTestManager(t, mockDetectors)
		_, err := m.Get(uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestManager_SessionsAreIndependent(t *testing.T) {
	m := newTestManager(t, mockDetectors)

	a, err := m.Create(exercise.Squat, Source{})
	require.NoError(t, err)
	b, err := m.Create(exercise.Squat, Source{})
	require.NoError(t, err)
	require.NotEqual(t, a.ID, b.ID)

	frame := newFrames(t, 1)[0]
	a.detector.(*detector.MockDetector).SetSequence([]*detector.Pose{
		detector.SquatPose(170), detector.SquatPose(90), detector.SquatPose(170),
	})
	for i := 0; i < 3; i++ {
		_, err := a.ProcessFrame(frame)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, a.Latest().Total())
	assert.Zero(t, b.Latest().Total())
}

func TestDefaultCamera(t *testing.T) {
	assert.NotNil(t, DefaultCamera(Source{Camera: 0}))
	assert.NotNil(t, DefaultCamera(Source{Video: "clip.mp4"}))
}
