package main

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sendmebits/flowmod/internal/config"
	"github.com/sendmebits/flowmod/internal/devicereg"
	"github.com/sendmebits/flowmod/internal/dispatcher"
	"github.com/sendmebits/flowmod/internal/gestureengine"
	"github.com/sendmebits/flowmod/internal/interceptor"
	"github.com/sendmebits/flowmod/internal/model"
	"github.com/sendmebits/flowmod/internal/scrollengine"
	"github.com/sendmebits/flowmod/internal/settingsbridge"
	"github.com/sendmebits/flowmod/internal/telemetry"
	"github.com/sendmebits/flowmod/internal/trayui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the daemon",
	Long:  `Start the event interceptor, engines, and menu-bar icon. Blocks until interrupted or quit from the tray.`,
	RunE:  runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// daemon bundles the pieces run needs to tear down on shutdown, mirroring
// the teacher's single-App-instance shape generalized to flowmod's
// multi-engine pipeline.
type daemon struct {
	log      *zap.Logger
	bridge   *settingsbridge.Bridge
	devices  *devicereg.Registry
	watcher  *config.Watcher
	in       *interceptor.Interceptor
	stopOnce sync.Once
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := telemetry.New(cfg.ToTelemetryConfig())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	settings, err := cfg.ToSettings()
	if err != nil {
		return fmt.Errorf("translate config: %w", err)
	}
	bridge := settingsbridge.New(settings)
	settingsFn := bridge.Get

	devices, err := devicereg.Start(func(externalMouse, externalKeyboard bool) {
		reload(bridge, func(s *model.Settings) {
			s.ExternalMousePresent = externalMouse
			s.ExternalKeyboardPresent = externalKeyboard
		})
		log.Debug("device presence changed",
			zap.Bool("external_mouse", externalMouse),
			zap.Bool("external_keyboard", externalKeyboard))
	})
	if err != nil {
		return fmt.Errorf("start device registry: %w", err)
	}

	dispatch := dispatcher.New(settingsFn, dispatcher.NewPoster(), dispatcher.Frontmost, log)

	in := interceptor.New(nil)
	platform := gestureengine.NewPlatform(in.EnableDragDeltaMode, in.DisableDragDeltaMode)
	gesture := gestureengine.New(settingsFn, dispatch, gestureengine.NewPoster(), platform, log)
	scroll := scrollengine.New(scrollengine.NewPoster(), settingsFn, &scrollengine.DisplayLinkClock{}, log)
	router := interceptor.NewRouter(settingsFn, scroll, gesture, dispatch)
	in.SetRouter(router)

	if err := in.Start(); err != nil {
		devices.Stop()
		return fmt.Errorf("start event taps: %w", err)
	}

	var watcher *config.Watcher
	if path := resolvedConfigPath(); path != "" {
		watcher, err = config.Watch(path, log, func(reloaded *config.Config) {
			applyReload(bridge, reloaded, log)
		})
		if err != nil {
			log.Warn("config live-reload disabled", zap.Error(err))
		}
	}

	d := &daemon{log: log, bridge: bridge, devices: devices, watcher: watcher, in: in}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info("signal received, stopping")
		trayui.Quit() // unblocks Run below; onExit calls d.teardown
	}()

	trayui.Run(&trayui.Controller{
		Bridge:  bridge,
		Reload:  func(mutate func(*model.Settings)) { reload(bridge, mutate) },
		Quit:    d.teardown,
		Logger:  log,
		Version: Version,
	})

	return nil
}

// teardown releases every resource run acquired. Reached exactly once,
// from trayui's onExit, regardless of whether the quit originated from
// the tray's own menu item or a caught signal that called trayui.Quit.
func (d *daemon) teardown() {
	d.stopOnce.Do(func() {
		if d.watcher != nil {
			d.watcher.Close()
		}
		d.in.Stop()
		d.devices.Stop()
	})
}

// reload atomically publishes a Settings snapshot derived from the
// current one plus mutate's changes, the same copy-modify-publish shape
// internal/settingsbridge's doc comment describes.
func reload(bridge *settingsbridge.Bridge, mutate func(*model.Settings)) {
	current := *bridge.Get()
	mutate(&current)
	bridge.Publish(&current)
}

// applyReload rebuilds a full Settings snapshot from a freshly parsed
// Config, preserving the device-presence fields the registry owns (the
// config file has no opinion on what's physically plugged in).
func applyReload(bridge *settingsbridge.Bridge, cfg *config.Config, log *zap.Logger) {
	next, err := cfg.ToSettings()
	if err != nil {
		log.Warn("reloaded config rejected, keeping previous settings", zap.Error(err))
		return
	}
	prev := bridge.Get()
	next.ExternalMousePresent = prev.ExternalMousePresent
	next.ExternalKeyboardPresent = prev.ExternalKeyboardPresent
	bridge.Publish(next)
}

func resolvedConfigPath() string {
	if configFlag != "" {
		return configFlag
	}
	return config.FindConfigFile()
}
