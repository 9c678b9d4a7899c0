package session

import (
	"errors"
	"time"

	"github.com/ayusman/formcoach/internal/capture"
)

// maxReadFailures is how many consecutive camera read errors end the loop.
const maxReadFailures = 50

// run is the frame loop. It reads a frame per tick at the source's frame
// rate until stopped or the source runs out of frames.
//
// Pipeline logic:
// 1. Read a frame from the camera or video file
// 2. Detect the pose
// 3. Update the tracker and render the overlay
// 4. Publish the result to subscribers and frame hooks
func (s *Session) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.closeSubscriptionsLocked()
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.GaugeActiveSessions.Dec()
		}
		close(done)
		s.log.Info("session stopped")
	}()

	fps := s.camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := s.camera.ReadFrame()
			if errors.Is(err, capture.ErrEndOfStream) {
				s.log.Info("end of video")
				return
			}
			if err != nil {
				failures++
				s.log.Warnf("error reading frame: %v", err)
				if failures >= maxReadFailures {
					s.mu.Lock()
					s.err = err
					s.mu.Unlock()
					s.log.Errorf("giving up after %d failed reads", failures)
					return
				}
				continue
			}
			failures = 0

			if _, err := s.ProcessFrame(frame); err != nil {
				s.log.Warnf("frame skipped: %v", err)
			}
			frame.Close()
		}
	}
}
