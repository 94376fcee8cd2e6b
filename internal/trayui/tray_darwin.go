//go:build darwin

// Package trayui presents flowmod's menu-bar icon: master toggles for
// mouse/keyboard transforms, the current smooth-scroll level, and quit.
//
// Grounded on y3owk1n-govim's cmd/neru/systray.go: onReady/onExit entry
// points, a goroutine draining each MenuItem's ClickedCh in a select
// loop, and toggling a shared app field's title/state from the handler.
package trayui

import (
	"fmt"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/settingsbridge"
)

// Controller exposes the state the tray needs to read and the actions it
// can trigger; cmd/flowmod's run command supplies the real
// bridge/reload/quit.
type Controller struct {
	Bridge  *settingsbridge.Bridge
	Reload  func(mutate func(*model.Settings)) // atomically publish a modified snapshot
	Quit    func()
	Logger  *zap.Logger
	Version string
}

// Run blocks until the tray quits; systray runs the menu bar's native run
// loop on the calling goroutine. The run command calls it directly from
// runDaemon.
func Run(c *Controller) {
	systray.Run(func() { onReady(c) }, func() { onExit(c) })
}

// Quit ends the tray's run loop from outside the click-handler goroutine,
// e.g. in response to a SIGINT/SIGTERM caught elsewhere in the process.
func Quit() {
	systray.Quit()
}

func onReady(c *Controller) {
	systray.SetTitle("⇅")
	systray.SetTooltip("flowmod")

	mVersion := systray.AddMenuItem(fmt.Sprintf("flowmod %s", c.Version), "")
	mVersion.Disable()

	systray.AddSeparator()
	mMouse := systray.AddMenuItem(statusLabel("Mouse transforms", c.Bridge.Get().MasterMouseEnabled), "Toggle mouse transforms")
	mKeyboard := systray.AddMenuItem(statusLabel("Keyboard transforms", c.Bridge.Get().MasterKeyboardEnabled), "Toggle keyboard transforms")

	systray.AddSeparator()
	mSmoothOff := systray.AddMenuItem("Smooth scroll: Off", "")
	mSmoothOn := systray.AddMenuItem("Smooth scroll: Smooth", "")
	mSmoothVery := systray.AddMenuItem("Smooth scroll: Very smooth", "")
	refreshSmoothChecks(c, mSmoothOff, mSmoothOn, mSmoothVery)

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit flowmod", "")

	go handleEvents(c, mMouse, mKeyboard, mSmoothOff, mSmoothOn, mSmoothVery, mQuit)
}

func handleEvents(c *Controller, mMouse, mKeyboard, mSmoothOff, mSmoothOn, mSmoothVery, mQuit *systray.MenuItem) {
	for {
		select {
		case <-mMouse.ClickedCh:
			c.Reload(func(s *model.Settings) { s.MasterMouseEnabled = !s.MasterMouseEnabled })
			mMouse.SetTitle(statusLabel("Mouse transforms", c.Bridge.Get().MasterMouseEnabled))
		case <-mKeyboard.ClickedCh:
			c.Reload(func(s *model.Settings) { s.MasterKeyboardEnabled = !s.MasterKeyboardEnabled })
			mKeyboard.SetTitle(statusLabel("Keyboard transforms", c.Bridge.Get().MasterKeyboardEnabled))
		case <-mSmoothOff.ClickedCh:
			c.Reload(func(s *model.Settings) { s.SmoothScrollLevel = model.SmoothOff })
			refreshSmoothChecks(c, mSmoothOff, mSmoothOn, mSmoothVery)
		case <-mSmoothOn.ClickedCh:
			c.Reload(func(s *model.Settings) { s.SmoothScrollLevel = model.Smooth })
			refreshSmoothChecks(c, mSmoothOff, mSmoothOn, mSmoothVery)
		case <-mSmoothVery.ClickedCh:
			c.Reload(func(s *model.Settings) { s.SmoothScrollLevel = model.VerySmooth })
			refreshSmoothChecks(c, mSmoothOff, mSmoothOn, mSmoothVery)
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func refreshSmoothChecks(c *Controller, off, on, very *systray.MenuItem) {
	level := c.Bridge.Get().SmoothScrollLevel
	setChecked(off, level == model.SmoothOff)
	setChecked(on, level == model.Smooth)
	setChecked(very, level == model.VerySmooth)
}

func setChecked(item *systray.MenuItem, checked bool) {
	if checked {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func statusLabel(name string, enabled bool) string {
	state := "Enabled"
	if !enabled {
		state = "Disabled"
	}
	return fmt.Sprintf("%s: %s", name, state)
}

func onExit(c *Controller) {
	if c.Logger != nil {
		c.Logger.Info("tray exiting")
	}
	if c.Quit != nil {
		c.Quit()
	}
}
