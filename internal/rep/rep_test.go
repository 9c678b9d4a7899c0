package rep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedAll(m *Machine, c *Counter, angles []float64) []Stage {
	stages := make([]Stage, 0, len(angles))
	for _, a := range angles {
		s, done := m.Feed(a)
		if done {
			c.Inc()
		}
		stages = append(stages, s)
	}
	return stages
}

func TestThresholds_Validate(t *testing.T) {
	tests := []struct {
		name    string
		t       Thresholds
		wantErr bool
	}{
		{"squat", Thresholds{Down: 100, Up: 160}, false},
		{"minimum gap", Thresholds{Down: 100, Up: 105}, false},
		{"gap too small", Thresholds{Down: 100, Up: 103}, true},
		{"inverted", Thresholds{Down: 160, Up: 100}, true},
		{"equal", Thresholds{Down: 120, Up: 120}, true},
		{"out of range", Thresholds{Down: -5, Up: 90}, true},
		{"above straight", Thresholds{Down: 90, Up: 190}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.t.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidThresholds)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMachine_Seeding(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  Stage
	}{
		{"extended", 170, StageUp},
		{"at up threshold", 160, StageUp},
		{"flexed", 80, StageDown},
		{"at down threshold", 100, StageDown},
		{"inside band defaults to up", 130, StageUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(Thresholds{Down: 100, Up: 160}, CountOnRise)
			require.Equal(t, StageUnknown, m.Stage())

			stage, done := m.Feed(tt.angle)
			assert.Equal(t, tt.want, stage)
			assert.False(t, done, "seeding never completes a rep")
		})
	}
}

func TestMachine_SquatScenario(t *testing.T) {
	m := NewMachine(Thresholds{Down: 100, Up: 160}, CountOnRise)
	var c Counter

	angles := []float64{170, 150, 120, 90, 70, 95, 130, 160, 175}
	stages := feedAll(m, &c, angles)

	want := []Stage{StageUp, StageUp, StageUp, StageDown, StageDown, StageDown, StageDown, StageUp, StageUp}
	assert.Equal(t, want, stages)
	assert.Equal(t, 1, c.Value())
	assert.Equal(t, StageUp, m.Stage())
}

func TestMachine_MonotonicCrossing(t *testing.T) {
	tests := []struct {
		name       string
		completion Completion
		angles     []float64
	}{
		{"count on rise", CountOnRise, []float64{170, 140, 110, 95, 120, 150, 165}},
		{"count on fall", CountOnFall, []float64{170, 140, 110, 95, 120, 150, 165}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(Thresholds{Down: 100, Up: 160}, tt.completion)
			var c Counter
			feedAll(m, &c, tt.angles)
			assert.Equal(t, 1, c.Value())
		})
	}
}

func TestMachine_CountOnFall(t *testing.T) {
	m := NewMachine(Thresholds{Down: 40, Up: 150}, CountOnFall)

	steps := []struct {
		angle float64
		stage Stage
		count int
	}{
		{165, StageDown, 0}, // arm hanging
		{90, StageDown, 0},
		{35, StageUp, 0}, // top of the curl
		{90, StageUp, 0},
		{160, StageDown, 1}, // back to extension
		{100, StageDown, 1},
		{30, StageUp, 1},
		{155, StageDown, 2},
	}

	var c Counter
	for _, st := range steps {
		stage, done := m.Feed(st.angle)
		if done {
			c.Inc()
		}
		assert.Equal(t, st.stage, stage, "angle %.0f", st.angle)
		assert.Equal(t, st.count, c.Value(), "angle %.0f", st.angle)
	}
	assert.False(t, m.Flexed())
}

func TestMachine_CountOnFallSeeding(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  Stage
	}{
		{"extended", 165, StageDown},
		{"flexed", 35, StageUp},
		{"inside band reads extended", 90, StageDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(Thresholds{Down: 40, Up: 150}, CountOnFall)
			stage, done := m.Feed(tt.angle)
			assert.Equal(t, tt.want, stage)
			assert.False(t, done)
		})
	}
}

func TestMachine_Flexed(t *testing.T) {
	squat := NewMachine(Thresholds{Down: 100, Up: 160}, CountOnRise)
	assert.False(t, squat.Flexed(), "unseeded")
	squat.Feed(90)
	assert.True(t, squat.Flexed())
	squat.Feed(170)
	assert.False(t, squat.Flexed())

	curl := NewMachine(Thresholds{Down: 40, Up: 150}, CountOnFall)
	curl.Feed(30)
	assert.True(t, curl.Flexed())
	assert.Equal(t, StageUp, curl.Stage())
}

func TestMachine_HysteresisRejection(t *testing.T) {
	th := Thresholds{Down: 100, Up: 160}
	m := NewMachine(th, CountOnRise)
	var c Counter

	m.Feed(170)
	for i := 0; i < 500; i++ {
		if i%2 == 0 {
			m.Feed(th.Down - 1)
		} else {
			m.Feed(th.Down + 1)
		}
	}

	assert.Equal(t, 0, c.Value())
	assert.Equal(t, StageDown, m.Stage())
}

func TestMachine_JitterInsideBand(t *testing.T) {
	m := NewMachine(Thresholds{Down: 100, Up: 160}, CountOnRise)
	var c Counter

	feedAll(m, &c, []float64{170, 101, 159, 101, 159, 101, 159})
	assert.Equal(t, 0, c.Value())
	assert.Equal(t, StageUp, m.Stage())
}

func TestMachine_OneCountPerCycle(t *testing.T) {
	m := NewMachine(Thresholds{Down: 100, Up: 160}, CountOnRise)
	var c Counter

	// Long hold at the top after completion must not add more reps.
	feedAll(m, &c, []float64{170, 90, 165, 170, 175, 168, 171})
	assert.Equal(t, 1, c.Value())

	feedAll(m, &c, []float64{80, 85, 82, 175})
	assert.Equal(t, 2, c.Value())
}

func TestMachine_Reset(t *testing.T) {
	m := NewMachine(Thresholds{Down: 100, Up: 160}, CountOnRise)
	m.Feed(80)
	require.Equal(t, StageDown, m.Stage())

	m.Reset()
	assert.Equal(t, StageUnknown, m.Stage())

	_, done := m.Feed(170)
	assert.False(t, done, "reseeding after reset never counts")
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "up", StageUp.String())
	assert.Equal(t, "down", StageDown.String())
	assert.Equal(t, "", StageUnknown.String())

	text, err := StageDown.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "down", string(text))
}

func TestMeter_Progress(t *testing.T) {
	squat := Meter{Empty: 170, Full: 80}
	curl := Meter{Empty: 160, Full: 30}
	rising := Meter{Empty: 0, Full: 200}

	tests := []struct {
		name  string
		meter Meter
		angle float64
		want  int
	}{
		{"standing is empty", squat, 170, 0},
		{"halfway", squat, 125, 50},
		{"bottom is full", squat, 80, 100},
		{"beyond bottom clamps", squat, 40, 100},
		{"above top clamps", squat, 179, 0},
		{"curl quarter", curl, 127.5, 25},
		{"rounding", curl, 150, 8},
		{"ascending meter", rising, 50, 25},
		{"zero span", Meter{Empty: 90, Full: 90}, 90, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.meter.Progress(tt.angle))
		})
	}
}

func TestStage_Text(t *testing.T) {
	for _, s := range []Stage{StageUnknown, StageUp, StageDown} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var got Stage
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}

	var s Stage
	assert.Error(t, s.UnmarshalText([]byte("sideways")))
}
