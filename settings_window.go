package main

import (
	"os/exec"
	"runtime"
	"slices"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/reminder-clock/pkg/models"
)

const savedMessage = "Settings saved"

type SettingsWindow struct {
	window fyne.Window
	rc     *ReminderClock
	saved  models.Config

	// General tab
	autoStartCheck *widget.Check

	// Alarm tab
	alarmSoundSelect *widget.Select
	holdTimeSelect   *widget.Select

	// Calendar tab
	icalSourcesList *widget.List
	icalSourcesData []models.ICalSource

	saveStatusLabel *widget.Label
	saveButton      *widget.Button
}

func (rc *ReminderClock) showSettingsWindow() {
	// If the window is already open, just bring it to front
	if rc.settingsWindow != nil {
		rc.settingsWindow.window.Show()
		rc.settingsWindow.window.RequestFocus()
		return
	}

	rc.settingsWindow = NewSettingsWindow(rc)
	rc.settingsWindow.window.SetOnClosed(func() {
		rc.settingsWindow = nil
	})
	rc.settingsWindow.window.Show()
}

func NewSettingsWindow(rc *ReminderClock) *SettingsWindow {
	sw := &SettingsWindow{
		rc:    rc,
		saved: rc.config,
	}
	sw.window = rc.app.NewWindow("Reminder Clock - Settings")
	sw.buildUI()
	return sw
}

func (sw *SettingsWindow) buildUI() {
	tabs := container.NewAppTabs(
		container.NewTabItem("General", sw.buildGeneralTab()),
		container.NewTabItem("Alarm", sw.buildAlarmTab()),
		container.NewTabItem("Calendar", sw.buildCalendarTab()),
	)

	sw.saveStatusLabel = widget.NewLabel("")
	sw.saveStatusLabel.Importance = widget.SuccessImportance

	sw.saveButton = widget.NewButton("Save", sw.save)
	sw.saveButton.Importance = widget.HighImportance
	sw.saveButton.Disable()

	buttonRow := container.NewBorder(
		nil,
		nil,
		container.NewHBox(sw.saveButton, sw.saveStatusLabel),
		widget.NewButton("Close", sw.handleClose),
	)

	sw.window.SetContent(container.NewBorder(nil, container.NewPadded(buttonRow), nil, nil, tabs))
	sw.window.Resize(fyne.NewSize(720, 560))
	sw.window.CenterOnScreen()
	sw.window.SetCloseIntercept(sw.handleClose)
	sw.window.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		if key.Name == fyne.KeyEscape {
			sw.handleClose()
		}
	})
}

func (sw *SettingsWindow) save() {
	sw.saveButton.Disable()
	sw.setStatus("Saving...", widget.MediumImportance)

	cfg := sw.settingsFromUI()
	go func() {
		if err := setupAutostart(cfg.AutoStart); err != nil {
			sw.rc.logger.Error().Err(err).Msg("failed to set autostart")
			fyne.Do(func() {
				sw.setStatus("Error: failed to set autostart", widget.DangerImportance)
				sw.updateSaveButtonState()
			})
			return
		}

		fyne.Do(func() {
			sw.rc.applySettings(cfg)
			sw.saved = cfg
			sw.setStatus(savedMessage, widget.SuccessImportance)
			sw.updateSaveButtonState()

			time.AfterFunc(3*time.Second, func() {
				fyne.Do(func() {
					if sw.saveStatusLabel.Text == savedMessage {
						sw.setStatus("", widget.MediumImportance)
					}
				})
			})
		})
	}()
}

func (sw *SettingsWindow) setStatus(text string, importance widget.Importance) {
	sw.saveStatusLabel.Importance = importance
	sw.saveStatusLabel.SetText(text)
}

// settingsFromUI returns the saved configuration with the edited fields applied.
func (sw *SettingsWindow) settingsFromUI() models.Config {
	cfg := sw.saved
	cfg.AutoStart = sw.autoStartCheck.Checked
	cfg.HoldTimeSeconds = parseHoldOption(sw.holdTimeSelect.Selected, sw.saved.HoldTimeSeconds)
	if sw.alarmSoundSelect.Selected != "" {
		cfg.Sounds.Alarm = sw.alarmSoundSelect.Selected
	}
	cfg.ICalSources = slices.Clone(sw.icalSourcesData)
	return cfg
}

func (sw *SettingsWindow) markChanged() {
	sw.updateSaveButtonState()
}

func (sw *SettingsWindow) updateSaveButtonState() {
	if sw.saveButton == nil {
		return
	}
	if sw.hasChanges() {
		sw.saveButton.Enable()
	} else {
		sw.saveButton.Disable()
	}
}

func (sw *SettingsWindow) hasChanges() bool {
	return settingsChanged(sw.saved, sw.settingsFromUI())
}

// settingsChanged compares the fields the settings window edits.
func settingsChanged(a, b models.Config) bool {
	return a.AutoStart != b.AutoStart ||
		a.HoldTimeSeconds != b.HoldTimeSeconds ||
		a.Sounds.Alarm != b.Sounds.Alarm ||
		!slices.Equal(a.ICalSources, b.ICalSources)
}

func (sw *SettingsWindow) handleClose() {
	if !sw.hasChanges() {
		sw.window.Close()
		return
	}
	dialog.ShowConfirm("Unsaved Changes",
		"You have unsaved changes. Are you sure you want to close?",
		func(confirmed bool) {
			if confirmed {
				sw.window.Close()
			}
		}, sw.window)
}

func (sw *SettingsWindow) buildGeneralTab() fyne.CanvasObject {
	sw.autoStartCheck = widget.NewCheck("Auto Start on System Boot", nil)
	sw.autoStartCheck.SetChecked(sw.saved.AutoStart)
	sw.autoStartCheck.OnChanged = func(bool) { sw.markChanged() }

	storageURIEntry := widget.NewEntry()
	storageURIEntry.SetText(sw.rc.app.Storage().RootURI().String())
	storageURIEntry.Disable()

	openStorageButton := widget.NewButton("Open in File Manager", func() {
		path := sw.rc.app.Storage().RootURI().Path()
		cmd := fileManagerCommand(runtime.GOOS, path)
		if cmd == nil {
			sw.rc.logger.Warn().Str("os", runtime.GOOS).Msg("no file manager for this OS")
			return
		}
		if err := cmd.Start(); err != nil {
			sw.rc.logger.Error().Err(err).Str("path", path).Msg("failed to open file manager")
		}
	})

	autoStartHelp := widget.NewLabel("Launch Reminder Clock automatically when your system starts")
	autoStartHelp.Importance = widget.MediumImportance

	storageHelp := widget.NewLabel("Reminders, background and settings are stored here")
	storageHelp.Wrapping = fyne.TextWrapWord
	storageHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(widget.NewLabel("Auto Start:"), autoStartHelp),
		sw.autoStartCheck,

		container.NewVBox(widget.NewLabel("Storage Location:"), storageHelp),
		container.NewBorder(nil, container.NewPadded(openStorageButton), nil, nil, storageURIEntry),
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		widget.NewLabel("General Settings"),
		widget.NewSeparator(),
		form,
	)))
}

func fileManagerCommand(goos, path string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", path)
	case "windows":
		return exec.Command("explorer", path)
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", path)
	default:
		return nil
	}
}
