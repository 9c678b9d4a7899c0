package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/formcoach/internal/capture"
	"github.com/ayusman/formcoach/internal/config"
	"github.com/ayusman/formcoach/internal/detector"
	"github.com/ayusman/formcoach/internal/exercise"
	"github.com/ayusman/formcoach/internal/logging"
	"github.com/ayusman/formcoach/internal/metrics"
	"github.com/ayusman/formcoach/internal/overlay"
	"github.com/ayusman/formcoach/internal/server"
	"github.com/ayusman/formcoach/internal/session"
	"github.com/ayusman/formcoach/internal/store"
)

func main() {
	var (
		configPath   = flag.String("config", filepath.Join(config.DataDir(), "config.yaml"), "path to the YAML config file")
		exerciseName = flag.String("exercise", "", "exercise to track: push_up, hammer_curl or squat")
		videoPath    = flag.String("video", "", "track a video file instead of the camera")
		cameraID     = flag.Int("camera", -1, "camera device index (overrides the config file)")
		window       = flag.Bool("window", false, "show the annotated video in a window, press q to quit")
		withTray     = flag.Bool("tray", false, "run with a system tray menu")
		locale       = flag.String("locale", "", "language for on-screen text (overrides the config file)")
	)
	flag.Parse()

	fmt.Println("FormCoach - Exercise Rep Counter")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *cameraID >= 0 {
		cfg.Camera.Device = *cameraID
	}
	if *locale != "" {
		cfg.Locale = *locale
	}

	if closer := logging.Setup(logging.Params{
		Level:    cfg.Logging.Level,
		File:     cfg.Logging.File,
		ToStdout: cfg.Logging.ToStdout,
		JSON:     cfg.Logging.JSON,
	}); closer != nil {
		defer closer.Close()
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	st, err := store.New(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	catalog, err := exercise.LoadCatalog()
	if err != nil {
		log.Fatalf("Failed to load exercise catalog: %v", err)
	}
	if err := st.Exercises().Seed(catalog.List()); err != nil {
		log.Fatalf("Failed to seed exercises: %v", err)
	}

	registry := metrics.NewRegistry()
	mm := metrics.NewManager(registry)

	detectorCfg := detector.Config{
		ModelComplexity: cfg.Detector.ModelComplexity,
		MinConfidence:   cfg.Detector.MinDetectionConfidence,
		MinTrackingConf: cfg.Detector.MinTrackingConfidence,
		IdleTimeoutSec:  cfg.Detector.IdleTimeoutSec,
	}

	sessions := session.NewManager(session.ManagerConfig{
		Exercises: st.Exercises(),
		NewCamera: func(src session.Source) capture.Camera {
			cam := session.DefaultCamera(src)
			if src.Video == "" {
				cam.SetFPS(cfg.Camera.FPS)
			}
			return cam
		},
		NewDetector: func() (detector.Detector, error) {
			return detector.NewMediaPipeDetector(detectorCfg)
		},
		Renderer:      overlay.NewRenderer(overlay.NewMessages(cfg.Locale), cfg.Detector.MinVisibility),
		Metrics:       mm,
		MinVisibility: cfg.Detector.MinVisibility,
	})
	defer sessions.StopAll()

	webDir := findWebDir()
	if webDir != "" {
		log.Infof("Serving static files from: %s", webDir)
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Sessions:  sessions,
		Registry:  registry,
		Metrics:   mm,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			log.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	c := &coach{
		sessions: sessions,
		server:   srv,
		settings: st.Settings(),
		source:   session.Source{Camera: cfg.Camera.Device, Video: *videoPath},
	}

	typ, err := c.initialExercise(*exerciseName, catalog)
	if err != nil {
		log.Fatalf("%v", err)
	}

	switch {
	case *withTray:
		runTray(ctx, stop, c, typ, catalog, "http://"+cfg.Server.Addr)
	case *window:
		if err := runWindow(ctx, c, typ); err != nil {
			log.Fatalf("%v", err)
		}
	default:
		if *exerciseName != "" {
			if _, err := c.switchTo(typ); err != nil {
				log.Fatalf("Failed to start %s: %v", typ, err)
			}
		}
		log.Infof("Dashboard at http://%s", cfg.Server.Addr)
		<-ctx.Done()
	}

	log.Info("Shutting down")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.formcoach/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeWebDir := filepath.Join(config.DataDir(), "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
