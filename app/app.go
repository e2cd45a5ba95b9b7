package app

import (
	"image"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/boxmark/app/driver"
	"github.com/soocke/boxmark/domain/capture"
	"github.com/soocke/boxmark/ui/theme"
	"github.com/soocke/boxmark/ui/view"
)

const (
	tick = 30 * time.Millisecond
	// captureDelay lets the region picker unmap before the screen is grabbed.
	captureDelay = 250 * time.Millisecond
)

type app struct {
	c       *AppContainer
	afterID string
	stop    atomic.Bool // set by OS signals and when the run is finished
	closed  bool
}

// NewApp prepares the main window for the container's components.
func NewApp(title string, c *AppContainer) *app {
	a := &app{c: c}
	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, "+100+100")
	return a
}

// Start builds the UI, opens the first image and runs the Tk event loop until
// the window is closed.
func (a *app) Start() {
	c := a.c
	theme.SetDark(c.Config.DarkMode)
	theme.InitStyles()
	c.RootView.Build(view.Handlers{
		Input:         c.Annotator,
		OnApply:       c.ApplySettings,
		OnCaptureRect: a.captureRect,
		OnExit:        a.exitHandler,
	})

	c.Loop.Schedule = a.scheduleUpdate
	c.Loop.ShouldStop = a.stop.Load
	c.Loop.Stop = a.exitHandler
	c.Driver.OnDone = func() { a.stop.Store(true) }

	a.watchSignals()
	c.Driver.Advance()
	a.scheduleUpdate()

	App.Wait()
	a.shutdown()
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	Destroy(App)
}

func (a *app) shutdown() {
	a.c.Close()
	p := a.c.Progress.Values(time.Now())
	a.c.Logger.Info("annotator closed",
		"saved", p.Saved, "discarded", p.Discarded, "skipped", p.Skipped, "failed", p.Failed,
		"annotation_time", p.Elapsed.Round(time.Second).String())
}

func (a *app) scheduleUpdate() {
	// Schedule the next update using TclAfter to stay on Tk's event loop thread.
	a.afterID = TclAfter(tick, a.c.Loop.Tick)
}

// watchSignals requests a clean exit on SIGINT/SIGTERM. Tk may only be
// touched from its own thread, so the handler just raises the stop flag the
// loop polls.
func (a *app) watchSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		a.c.Logger.Info("signal received, exiting", "signal", sig.String())
		a.stop.Store(true)
	}()
}

// captureRect grabs r once the picker window is gone and queues the capture.
func (a *app) captureRect(r image.Rectangle) {
	TclAfter(captureDelay, func() {
		img, err := capture.GrabRect(r)
		if err != nil {
			a.c.Logger.Error("region capture failed", "rect", r.String(), "error", err)
			a.c.Status.Post("Capture failed", time.Now())
			return
		}
		name := capture.Name(time.Now())
		a.c.Driver.Enqueue(driver.Source{Name: name, Image: img})
		a.c.Status.Post("Queued "+name, time.Now())
	})
}
