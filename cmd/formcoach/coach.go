package main

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/server"
	"github.com/ayusman/formcoach/internal/session"
	"github.com/ayusman/formcoach/internal/store"
	"github.com/ayusman/formcoach/internal/tracker"
	"github.com/ayusman/formcoach/internal/tray"
)

// coach owns the session picked from the command line, the window or the
// tray. Sessions started through the HTTP API are independent of it.
type coach struct {
	sessions *session.Manager
	server   *server.Server
	settings *store.SettingsRepository
	source   session.Source

	mu      sync.Mutex
	current *session.Session
}

// initialExercise picks the exercise named on the command line, else the
// one used last, else the first of the menu.
func (c *coach) initialExercise(name string, catalog *exercise.Catalog) (exercise.Type, error) {
	if name != "" {
		return exercise.ParseType(name)
	}
	if last, err := c.settings.Get(store.SettingLastExercise); err == nil {
		if typ, err := exercise.ParseType(last); err == nil {
			return typ, nil
		}
	}
	list := catalog.List()
	if len(list) == 0 {
		return "", errors.New("exercise catalog is empty")
	}
	return list[0].Type, nil
}

// switchTo stops the current session and starts typ on the configured source.
func (c *coach) switchTo(typ exercise.Type, hooks ...session.FrameHook) (*session.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	s, err := c.sessions.Create(typ, c.source)
	if err != nil {
		return nil, err
	}
	c.server.Attach(s)
	for _, fn := range hooks {
		s.OnFrame(fn)
	}
	if err := s.Start(); err != nil {
		c.sessions.Stop(s.ID)
		return nil, err
	}
	c.current = s

	if err := c.settings.Set(store.SettingLastExercise, string(typ)); err != nil {
		log.Warnf("Failed to remember exercise: %v", err)
	}
	log.Infof("Tracking %s, target %d reps x %d sets (session %s)", s.Info.Name, s.Info.Reps, s.Info.Sets, s.ID)
	return s, nil
}

func (c *coach) reset() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()

	if s != nil {
		s.Reset()
	}
}

func (c *coach) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *coach) stopLocked() {
	if c.current == nil {
		return
	}
	// Already gone when stopped through the API.
	if err := c.sessions.Stop(c.current.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
		log.Warnf("Failed to stop session: %v", err)
	}
	c.current = nil
}

// runWindow shows the annotated frames until q is pressed, the source runs
// out or ctx is cancelled. The window must live on the main goroutine.
func runWindow(ctx context.Context, c *coach, typ exercise.Type) error {
	frames := make(chan gocv.Mat, 1)
	s, err := c.switchTo(typ, func(frame *gocv.Mat, _ tracker.Result) {
		clone := frame.Clone()
		select {
		case frames <- clone:
		default:
			clone.Close()
		}
	})
	if err != nil {
		return fmt.Errorf("start %s: %w", typ, err)
	}
	defer func() {
		c.stop()
		select {
		case f := <-frames:
			f.Close()
		default:
		}
	}()

	win := gocv.NewWindow("FormCoach - " + s.Info.Name)
	defer win.Close()

	tick := time.NewTicker(30 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.Done():
			return s.Err()
		case f := <-frames:
			win.IMShow(f)
			f.Close()
		case <-tick.C:
		}

		if win.WaitKey(1) == 'q' {
			return nil
		}
	}
}

// runTray blocks in the tray menu until Quit is picked or ctx is cancelled.
func runTray(ctx context.Context, quit context.CancelFunc, c *coach, typ exercise.Type, catalog *exercise.Catalog, dashboardURL string) {
	t := tray.New(catalog.List())

	start := func(typ exercise.Type) {
		s, err := c.switchTo(typ)
		if err != nil {
			log.Errorf("Failed to start %s: %v", typ, err)
			return
		}
		t.SetExercise(typ)
		t.SetReps(0, s.Info.Reps)

		// The channel closes when the session stops.
		results, _ := s.Subscribe()
		go func() {
			for res := range results {
				t.SetReps(res.Total(), s.Info.Reps)
			}
		}()
	}

	t.OnSelect(start)
	t.OnReset(c.reset)
	t.OnDashboard(func() {
		if err := openBrowser(dashboardURL); err != nil {
			log.Warnf("Failed to open dashboard: %v", err)
		}
	})
	t.OnQuit(quit)

	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	start(typ)
	t.Run()
	c.stop()
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
