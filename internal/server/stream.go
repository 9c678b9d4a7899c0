package server

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/formcoach/internal/session"
	"github.com/ayusman/formcoach/internal/tracker"
)

// jpegBuffer holds the latest annotated frame of one session as JPEG.
// Frames are only encoded while someone is watching.
type jpegBuffer struct {
	viewers atomic.Int32

	mu     sync.Mutex
	data   []byte
	seq    uint64
	notify chan struct{}
}

func newJPEGBuffer() *jpegBuffer {
	return &jpegBuffer{notify: make(chan struct{})}
}

// hook is registered as the session's frame hook.
func (b *jpegBuffer) hook(frame *gocv.Mat, _ tracker.Result) {
	if b.viewers.Load() == 0 || frame == nil || frame.Empty() {
		return
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		log.Debugf("encode frame: %v", err)
		return
	}
	data := bytes.Clone(buf.GetBytes())
	buf.Close()

	b.mu.Lock()
	b.data = data
	b.seq++
	close(b.notify)
	b.notify = make(chan struct{})
	b.mu.Unlock()
}

// latest returns the current frame, its sequence number and a channel that
// is closed when the next frame arrives.
func (b *jpegBuffer) latest() ([]byte, uint64, <-chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data, b.seq, b.notify
}

func (b *jpegBuffer) watch() func() {
	b.viewers.Add(1)
	return func() { b.viewers.Add(-1) }
}

// frameHub keeps one jpegBuffer per attached session.
type frameHub struct {
	mu      sync.Mutex
	buffers map[uuid.UUID]*jpegBuffer
}

func newFrameHub() *frameHub {
	return &frameHub{buffers: make(map[uuid.UUID]*jpegBuffer)}
}

// attach registers the JPEG hook on sess once.
func (h *frameHub) attach(sess *session.Session) {
	h.get(sess)
}

func (h *frameHub) get(sess *session.Session) *jpegBuffer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.buffers[sess.ID]; ok {
		return b
	}
	b := newJPEGBuffer()
	sess.OnFrame(b.hook)
	h.buffers[sess.ID] = b
	return b
}

// forget drops buffers of sessions the manager no longer knows.
func (h *frameHub) forget(m *session.Manager) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id := range h.buffers {
		if _, err := m.Get(id); err != nil {
			delete(h.buffers, id)
		}
	}
}

// handleStream serves GET /api/sessions/{id}/stream as MJPEG.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Lookup(w, r)
	if !ok {
		return
	}
	s.frames.forget(s.config.Sessions)

	buf := s.frames.get(sess)
	release := buf.watch()
	defer release()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	done := sess.Done()
	var sent uint64
	for {
		data, seq, next := buf.latest()
		if seq != sent && len(data) > 0 {
			if err := writePart(w, data); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case <-next:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
