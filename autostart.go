package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/borgmon/reminder-clock/pkg/logging"
	"github.com/emersion/go-autostart"
)

func autostartApp() (*autostart.App, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}

	// Resolve symlinks if any
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	return &autostart.App{
		Name:        "reminder-clock",
		DisplayName: "Reminder Clock",
		Exec:        []string{execPath},
	}, nil
}

func setupAutostart(enable bool) error {
	logger := logging.WithComponent("autostart")

	app, err := autostartApp()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}

	switch {
	case enable && !app.IsEnabled():
		if err := app.Enable(); err != nil {
			return fmt.Errorf("enable autostart: %w", err)
		}
		logger.Info().Msg("autostart enabled")
	case !enable && app.IsEnabled():
		if err := app.Disable(); err != nil {
			return fmt.Errorf("disable autostart: %w", err)
		}
		logger.Info().Msg("autostart disabled")
	}
	return nil
}
