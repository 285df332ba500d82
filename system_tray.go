package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/borgmon/reminder-clock/pkg/alarm"
	"github.com/borgmon/reminder-clock/pkg/audio"
	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/borgmon/reminder-clock/pkg/countdown"
	"github.com/borgmon/reminder-clock/pkg/models"
)

const trayUpcomingLimit = 5

func (rc *ReminderClock) setupSystemTray() {
	rc.updateSystemTrayMenu()
}

func (rc *ReminderClock) updateSystemTrayMenu() {
	desk, ok := rc.app.(desktop.App)
	if !ok {
		return
	}

	var menuItems []*fyne.MenuItem

	if lines := upcomingLines(rc.reminders.List(), rc.coarse.Latest(), trayUpcomingLimit); len(lines) > 0 {
		header := fyne.NewMenuItem("Upcoming:", nil)
		header.Disabled = true
		menuItems = append(menuItems, header)
		for _, line := range lines {
			item := fyne.NewMenuItem(line, nil)
			item.Disabled = true
			menuItems = append(menuItems, item)
		}
		menuItems = append(menuItems, fyne.NewMenuItemSeparator())
	}

	for _, id := range rc.watcher.Ringing() {
		reminderID := id
		label := "Stop alarm"
		if r, ok := rc.reminders.Get(id); ok {
			label = "Stop " + truncateString(displayLabel(r.Label), 30)
		}
		menuItems = append(menuItems, fyne.NewMenuItem(label, func() {
			rc.gesture(audio.PointerDown)
			rc.watcher.Acknowledge(reminderID)
			rc.updateSystemTrayMenu()
		}))
	}

	menuItems = append(menuItems,
		fyne.NewMenuItem("Show Clock", rc.mainWindow.Show),
		fyne.NewMenuItem("Add Reminder", func() {
			rc.mainWindow.Show()
			rc.mainWindow.showAddReminderDialog()
		}),
		fyne.NewMenuItem("Settings", rc.showSettingsWindow),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", rc.quit),
	)

	desk.SetSystemTrayMenu(fyne.NewMenu("Reminder Clock", menuItems...))
	desk.SetSystemTrayIcon(theme.HistoryIcon())
}

// upcomingLines formats the soonest reminders as "9:30 AM - Stand-up (in 01:05)".
func upcomingLines(reminders []models.Reminder, sample clock.Sample, limit int) []string {
	upcoming := alarm.Upcoming(reminders, sample)
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}

	lines := make([]string, 0, len(upcoming))
	for _, r := range upcoming {
		line := fmt.Sprintf("  %s - %s", r.Time, truncateString(displayLabel(r.Label), 35))
		if left, ok := countdown.ComputeRaw(sample, r.Time); ok {
			line += fmt.Sprintf(" (in %s:%s)", left.HourText(), left.MinuteText())
		}
		lines = append(lines, line)
	}
	return lines
}

// truncateString truncates s to maxLen runes, adding "..." if needed
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
