// Package session runs the per-exercise frame loop: capture, pose detection,
// tracking, rendering and publishing of results.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gocv.io/x/gocv"

	"github.com/ayusman/formcoach/internal/capture"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/metrics"
	"github.com/ayusman/formcoach/internal/overlay"
	"github.com/ayusman/formcoach/internal/tracker"
)

// subscriberBuffer is how many results a slow subscriber may lag behind
// before results are dropped for it.
const subscriberBuffer = 8

// Config holds everything a session needs. Camera and Detector are owned by
// the session once New succeeds and are closed by Stop.
type Config struct {
	Info          exercise.Info
	Camera        capture.Camera
	Detector      detector.Detector
	Renderer      *overlay.Renderer
	Metrics       *metrics.Manager
	MinVisibility float64
}

// FrameHook receives every processed frame after rendering. The Mat is only
// valid for the duration of the call.
type FrameHook func(frame *gocv.Mat, res tracker.Result)

// Session tracks one exercise from one frame source.
type Session struct {
	ID        uuid.UUID
	Exercise  exercise.Type
	Info      exercise.Info
	StartedAt time.Time

	camera   capture.Camera
	detector detector.Detector
	renderer *overlay.Renderer
	metrics  *metrics.Manager
	log      *log.Entry

	// frameMu serializes ProcessFrame; the tracker is single-threaded.
	frameMu sync.Mutex
	tracker *tracker.Tracker

	mu      sync.RWMutex
	latest  tracker.Result
	subs    map[int]chan tracker.Result
	nextSub int
	hooks   []FrameHook
	stopCh  chan struct{}
	done    chan struct{}
	running bool
	err     error
}

// New creates a session for cfg.Info.Type. An unknown exercise type is
// rejected with an error wrapping exercise.ErrUnknownType.
func New(cfg Config) (*Session, error) {
	trackerCfg, err := exercise.ConfigFor(cfg.Info.Type)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if cfg.MinVisibility > 0 {
		trackerCfg.MinVisibility = cfg.MinVisibility
	}
	tr, err := tracker.New(trackerCfg)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if cfg.Detector == nil {
		return nil, errors.New("session: detector is required")
	}

	id := uuid.New()
	s := &Session{
		ID:        id,
		Exercise:  cfg.Info.Type,
		Info:      cfg.Info,
		StartedAt: time.Now().UTC(),
		camera:    cfg.Camera,
		detector:  cfg.Detector,
		renderer:  cfg.Renderer,
		metrics:   cfg.Metrics,
		log:       log.WithFields(log.Fields{"session": id.String(), "exercise": cfg.Info.Type}),
		tracker:   tr,
		latest:    tr.Current(),
		subs:      make(map[int]chan tracker.Result),
	}
	return s, nil
}

// OnFrame registers a hook called for every processed frame.
func (s *Session) OnFrame(fn FrameHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Start opens the camera and begins the frame loop.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Don't start if already running
	if s.running {
		return nil
	}
	if s.camera == nil {
		return errors.New("session: no frame source")
	}

	if err := s.camera.Open(); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.run(s.stopCh, s.done)

	if s.metrics != nil {
		s.metrics.GaugeActiveSessions.Inc()
	}
	s.log.Info("session started")
	return nil
}

// Stop halts the frame loop and releases the camera and detector. Open
// subscriptions are closed, including those taken before Start. Stop is safe to call more than once.
func (s *Session) Stop() {
	s.mu.Lock()
	stopCh, done := s.stopCh, s.done
	s.stopCh = nil
	s.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.camera != nil {
		err = multierr.Append(err, s.camera.Close())
	}
	if s.detector != nil {
		err = multierr.Append(err, s.detector.Close())
	}
	if err != nil {
		s.log.Warnf("error releasing session resources: %v", err)
	}

	s.closeSubscriptionsLocked()
}

// closeSubscriptionsLocked ends every open subscription. s.mu must be held.
func (s *Session) closeSubscriptionsLocked() {
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

// Done is closed when the frame loop exits, either through Stop or because
// the source ran out of frames. It is nil before Start.
func (s *Session) Done() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Running reports whether the frame loop is active.
func (s *Session) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Err returns the error that ended the frame loop, if any. The end of a
// video file is not an error.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Latest returns the most recent result.
func (s *Session) Latest() tracker.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Subscribe returns a channel receiving every new result and a function
// that cancels the subscription. Results are dropped for a subscriber that
// falls more than a few frames behind. The channel is closed when the frame
// loop exits; subscribing after that yields an already closed channel.
func (s *Session) Subscribe() (<-chan tracker.Result, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan tracker.Result, subscriberBuffer)
	if s.done != nil && !s.running {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
	return ch, cancel
}

// Reset clears the counts, as at the start of a new set.
func (s *Session) Reset() tracker.Result {
	s.frameMu.Lock()
	s.tracker.Reset()
	res := s.tracker.Current()
	s.frameMu.Unlock()

	s.publish(res)
	s.log.Info("counts reset")
	return res
}

// ProcessFrame runs detection and tracking on one frame, renders the result
// onto it and publishes it. A detector failure skips the frame: the tracker
// is not advanced and the previous result is returned with the error.
func (s *Session) ProcessFrame(frame *gocv.Mat) (tracker.Result, error) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	start := time.Now()

	pose, err := s.detector.Detect(frame)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CounterDetectorErrors.Inc()
		}
		return s.Latest(), fmt.Errorf("detect: %w", err)
	}

	prev := s.Latest()
	res := s.tracker.Update(pose)
	s.record(prev, res, pose != nil)

	if s.renderer != nil {
		s.renderer.Draw(frame, pose, res, s.Info)
	}

	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn(frame, res)
	}

	s.publish(res)

	if s.metrics != nil {
		s.metrics.HistFrameDuration.Observe(time.Since(start).Seconds())
	}
	return res, nil
}

func (s *Session) publish(res tracker.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = res
	for _, ch := range s.subs {
		select {
		case ch <- res:
		default:
		}
	}
}

// record updates metrics and logs completed reps.
func (s *Session) record(prev, res tracker.Result, found bool) {
	for _, l := range res.Limbs {
		before, _ := prev.Limb(l.Side)
		if l.Count > before.Count {
			s.log.WithField("side", l.Side).Infof("rep %d", l.Count)
			if s.metrics != nil {
				s.metrics.CounterReps.WithLabelValues(string(s.Exercise), l.Side).Add(float64(l.Count - before.Count))
			}
		}
		if l.Warning.Active() && s.metrics != nil {
			s.metrics.CounterWarnings.WithLabelValues(string(s.Exercise), string(l.Warning.Code)).Inc()
		}
	}

	if s.metrics != nil {
		label := "no"
		if found {
			label = "yes"
		}
		s.metrics.CounterFrames.WithLabelValues(string(s.Exercise), label).Inc()
	}
}
