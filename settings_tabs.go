package main

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/reminder-clock/pkg/audio"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/google/uuid"
)

const maxHoldSeconds = 10

func holdOptions() []string {
	options := []string{"Tap (no hold)"}
	for i := 1; i <= maxHoldSeconds; i++ {
		options = append(options, holdOption(i))
	}
	return options
}

func holdOption(seconds int) string {
	if seconds <= 0 {
		return "Tap (no hold)"
	}
	return strconv.Itoa(min(seconds, maxHoldSeconds)) + " sec"
}

// parseHoldOption turns "3 sec" into 3, falling back on anything unknown.
func parseHoldOption(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	if s == holdOption(0) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, " sec"))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// soundOptions lists the built-in sounds plus the configured one if it is custom.
func soundOptions(current string) []string {
	options := audio.BuiltinSounds()
	if current != "" && !slices.Contains(options, current) {
		options = append(options, current)
	}
	return options
}

func (sw *SettingsWindow) buildAlarmTab() fyne.CanvasObject {
	sw.alarmSoundSelect = widget.NewSelect(soundOptions(sw.saved.Sounds.Alarm), nil)
	sw.alarmSoundSelect.SetSelected(sw.saved.Sounds.Alarm)
	sw.alarmSoundSelect.OnChanged = func(string) { sw.markChanged() }

	testButton := widget.NewButtonWithIcon("Test", theme.MediaPlayIcon(), func() {
		name := sw.alarmSoundSelect.Selected
		rc := sw.rc
		// The click is the gesture that lets audio start
		go func() {
			if !rc.gate.Unlock(rc.ctx) {
				rc.logger.Warn().Msg("audio output unavailable")
				return
			}
			rc.sounds.PlayOnce(name)
		}()
	})

	sw.holdTimeSelect = widget.NewSelect(holdOptions(), nil)
	sw.holdTimeSelect.SetSelected(holdOption(sw.saved.HoldTimeSeconds))
	sw.holdTimeSelect.OnChanged = func(string) { sw.markChanged() }

	soundHelp := widget.NewLabel("Played on repeat until the alarm is stopped")
	soundHelp.Importance = widget.MediumImportance

	holdHelp := widget.NewLabel("How long the Stop button must be held")
	holdHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(widget.NewLabel("Alarm Sound:"), soundHelp),
		container.NewHBox(sw.alarmSoundSelect, testButton),

		container.NewVBox(widget.NewLabel("Hold to Stop:"), holdHelp),
		container.NewVBox(sw.holdTimeSelect),
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		widget.NewLabel("Alarm Settings"),
		widget.NewSeparator(),
		form,
	)))
}

// validateSourceURL checks an iCal URL and rejects ones already added.
func validateSourceURL(s string, existing []models.ICalSource) error {
	if s == "" {
		return errors.New("URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("URL must start with http:// or https://")
	}
	for _, source := range existing {
		if source.URL == s {
			return errors.New("this calendar URL has already been added")
		}
	}
	return nil
}

func (sw *SettingsWindow) buildCalendarTab() fyne.CanvasObject {
	sw.icalSourcesData = slices.Clone(sw.saved.ICalSources)
	selectedIndex := -1

	sw.icalSourcesList = widget.NewList(
		func() int {
			return len(sw.icalSourcesData)
		},
		func() fyne.CanvasObject {
			nameLabel := widget.NewLabel("Name")
			nameLabel.TextStyle.Bold = true
			urlLabel := widget.NewLabel("URL")
			urlLabel.Importance = widget.MediumImportance
			urlLabel.Truncation = fyne.TextTruncateEllipsis
			return container.NewVBox(nameLabel, urlLabel)
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			objects := o.(*fyne.Container).Objects
			source := sw.icalSourcesData[i]
			objects[0].(*widget.Label).SetText(source.Name)
			objects[1].(*widget.Label).SetText(source.URL)
		})
	sw.icalSourcesList.OnSelected = func(id widget.ListItemID) {
		selectedIndex = id
	}

	addButton := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		nameEntry := widget.NewEntry()
		nameEntry.SetPlaceHolder("e.g., Work Calendar")
		nameEntry.Validator = func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("name is required")
			}
			return nil
		}

		urlEntry := widget.NewMultiLineEntry()
		urlEntry.SetPlaceHolder("https://calendar.example.com/ical/...")
		urlEntry.Wrapping = fyne.TextWrapBreak
		urlEntry.SetMinRowsVisible(4)
		urlEntry.Validator = func(s string) error {
			return validateSourceURL(strings.TrimSpace(s), sw.icalSourcesData)
		}

		addDialog := dialog.NewForm("Add iCal Source", "Add", "Cancel", []*widget.FormItem{
			widget.NewFormItem("Name", nameEntry),
			widget.NewFormItem("URL", urlEntry),
		}, func(confirmed bool) {
			if !confirmed {
				return
			}
			sw.icalSourcesData = append(sw.icalSourcesData, models.ICalSource{
				ID:   uuid.NewString(),
				Name: strings.TrimSpace(nameEntry.Text),
				URL:  strings.TrimSpace(urlEntry.Text),
			})
			sw.icalSourcesList.Refresh()
			sw.markChanged()
		}, sw.window)
		addDialog.Resize(fyne.NewSize(560, 300))
		addDialog.Show()
	})

	removeButton := widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), func() {
		if selectedIndex < 0 || selectedIndex >= len(sw.icalSourcesData) {
			return
		}
		index := selectedIndex
		dialog.ShowConfirm("Remove Calendar",
			fmt.Sprintf("Are you sure you want to remove '%s'?", sw.icalSourcesData[index].Name),
			func(confirmed bool) {
				if !confirmed {
					return
				}
				sw.icalSourcesData = slices.Delete(sw.icalSourcesData, index, index+1)
				sw.icalSourcesList.UnselectAll()
				selectedIndex = -1
				sw.icalSourcesList.Refresh()
				sw.markChanged()
			}, sw.window)
	})

	listScroll := container.NewScroll(sw.icalSourcesList)
	listScroll.SetMinSize(fyne.NewSize(0, 200))

	sourcesHelp := widget.NewLabel("Events starting in the next 24 hours can be imported as reminders from the main window.")
	sourcesHelp.Wrapping = fyne.TextWrapWord
	sourcesHelp.Importance = widget.MediumImportance

	form := container.New(layout.NewFormLayout(),
		container.NewVBox(widget.NewLabel("iCal Sources:"), sourcesHelp),
		container.NewVBox(
			container.NewBorder(widget.NewSeparator(), widget.NewSeparator(), nil, nil, listScroll),
			container.NewHBox(addButton, removeButton),
		),
	)

	return container.NewPadded(container.NewVScroll(container.NewVBox(
		widget.NewLabel("Calendar Settings"),
		widget.NewSeparator(),
		form,
	)))
}
