package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/nixlim/jarviz/internal/capture"
	"github.com/nixlim/jarviz/internal/config"
	"github.com/nixlim/jarviz/internal/events"
	"github.com/nixlim/jarviz/internal/github"
	"github.com/nixlim/jarviz/internal/grab"
	"github.com/nixlim/jarviz/internal/history"
	"github.com/nixlim/jarviz/internal/overlay"
	"github.com/nixlim/jarviz/internal/schedule"
	"github.com/nixlim/jarviz/internal/settings"
	"github.com/nixlim/jarviz/internal/tui"
)

// app holds the long-lived components behind the launcher pages.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	store      history.Store
	persistent bool

	tail     *events.RingBuffer
	recorder *capture.Recorder
	overlay  *overlay.Controller
	github   *github.Client
	schedule *schedule.Client
	grabber  grab.Grabber
}

func newApp(cfg config.Config, store history.Store, persistent bool, logger *zap.Logger) *app {
	a := &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		persistent: persistent,
		tail:       events.NewRingBuffer(cfg.Capture.TailSize),
		github: github.NewClient(
			github.WithTimeout(time.Duration(cfg.Download.TimeoutSeconds)*time.Second),
			github.WithLogger(logger.Named("github")),
		),
		schedule: schedule.NewClient(
			schedule.WithURL(cfg.Schedule.URL),
			schedule.WithLogger(logger.Named("schedule")),
		),
		grabber: grab.NewPlatformGrabber(),
	}
	a.recorder = newRecorder(cfg.Capture, store, a.tail, logger)

	if argv, err := overlayArgv(cfg.Overlay); err != nil {
		logger.Warn("overlay disabled", zap.Error(err))
	} else {
		a.overlay = overlay.NewController(argv,
			overlay.WithStopTimeout(time.Duration(cfg.Overlay.StopTimeoutSeconds)*time.Second),
			overlay.WithLogger(logger.Named("overlay")),
		)
	}
	return a
}

// recorderOverrides are applied last by newRecorder. Tests use them to swap
// the input backend and foreground probe.
var recorderOverrides []capture.RecorderOption

// newRecorder builds a recorder that feeds tail and records finished
// sessions in store. tail may be nil.
func newRecorder(cc config.CaptureConfig, store history.Store, tail *events.RingBuffer, logger *zap.Logger) *capture.Recorder {
	opts := []capture.RecorderOption{
		capture.WithGateInterval(time.Duration(cc.GateIntervalMS) * time.Millisecond),
		capture.WithLogger(logger.Named("capture")),
		capture.WithSessionHook(func(sum capture.SessionSummary) {
			store.RecordCapture(captureSession(sum))
		}),
	}
	if tail != nil {
		opts = append(opts, capture.WithObserver(func(sessionID string, e capture.Event) {
			tail.Add(events.Format(sessionID, e))
		}))
	}
	return capture.NewRecorder(append(opts, recorderOverrides...)...)
}

func captureSession(sum capture.SessionSummary) history.CaptureSession {
	return history.CaptureSession{
		ID:           sum.ID,
		Path:         sum.Config.OutputPath,
		Mode:         string(sum.Config.Mode),
		TargetWindow: sum.Config.TargetWindow,
		Events:       sum.EventsWritten,
		StartedAt:    sum.StartedAt,
		EndedAt:      sum.EndedAt,
	}
}

// overlayArgv is the command that re-runs this binary as the overlay,
// forwarding the config and settings paths in use.
func overlayArgv(oc config.OverlayConfig) ([]string, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating jarviz executable: %w", err)
	}
	argv := overlay.Command(oc.Terminal, exe)
	if configPath != "" {
		argv = append(argv, "--config", config.ExpandPath(configPath))
	}
	if settingsPath != "" {
		argv = append(argv, "--settings", config.ExpandPath(settingsPath))
	}
	return argv, nil
}

// pages returns the launcher pages in sidebar order.
func (a *app) pages(s settings.Settings, settingsFile string) []tui.Page {
	var ov tui.Overlay
	if a.overlay != nil {
		ov = a.overlay
	}
	return []tui.Page{
		tui.NewGeneralPage(),
		tui.NewGithubPage(a.github, a.store, a.cfg.Download),
		tui.NewCapturePage(a.recorder, a.tail, a.cfg.Capture),
		tui.NewPreviewPage(a.grabber, a.cfg.Preview),
		tui.NewCodingPage(),
		tui.NewTimersPage(a.schedule, ov, a.cfg.Schedule),
		tui.NewHistoryPage(a.store, a.persistent),
		tui.NewSettingsPage(settingsFile, s),
		tui.NewFAQPage(),
	}
}

// shutdown stops the recorder before closing the store so the final session
// is still recorded.
func (a *app) shutdown() error {
	var errs []error
	if err := a.recorder.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping capture: %w", err))
	}
	if a.overlay != nil {
		if err := a.overlay.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping overlay: %w", err))
		}
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing history: %w", err))
	}
	return errors.Join(errs...)
}
