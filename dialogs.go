package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/reminder-clock/pkg/backgrounds"
	"github.com/borgmon/reminder-clock/pkg/calendar"
	"github.com/borgmon/reminder-clock/pkg/countdown"
	"github.com/borgmon/reminder-clock/pkg/toast"
)

const importTimeout = time.Minute

func validateReminderTime(s string) error {
	if s == "" {
		return errors.New("time is required")
	}
	if _, ok := countdown.Parse(s); !ok {
		return errors.New("use a time like 9:30 AM")
	}
	return nil
}

func (mw *MainWindow) showAddReminderDialog() {
	labelEntry := widget.NewEntry()
	labelEntry.SetPlaceHolder("e.g., Stand-up")

	timeEntry := widget.NewEntry()
	timeEntry.SetPlaceHolder("9:30 AM")
	timeEntry.Validator = validateReminderTime

	items := []*widget.FormItem{
		widget.NewFormItem("Label", labelEntry),
		widget.NewFormItem("Time", timeEntry),
	}

	dialog.ShowForm("Add Reminder", "Add", "Cancel", items, func(confirmed bool) {
		if !confirmed {
			return
		}
		mw.addReminder(labelEntry.Text, timeEntry.Text)
	}, mw.window)
}

func (mw *MainWindow) addReminder(label, raw string) bool {
	rc := mw.rc
	r, err := rc.reminders.Add(label, raw)
	if err != nil {
		dialog.ShowError(err, mw.window)
		return false
	}

	desc := ""
	if left, ok := rc.countdown.Remaining(r.Time); ok {
		desc = "Rings in " + left.Text()
	}
	rc.toasts.Set(fmt.Sprintf("%s set for %s", displayLabel(r.Label), r.Time),
		toast.WithDescription(desc),
		toast.WithSound(rc.config.Sounds.Set),
		toast.WithDuration(rc.config.ToastDuration()),
	)
	rc.logger.Info().Str("id", r.ID).Str("time", r.Time).Msg("reminder added")

	mw.reminderList.Reload()
	rc.updateSystemTrayMenu()
	return true
}

func (mw *MainWindow) showBackgroundDialog() {
	rc := mw.rc
	items := rc.catalog.Items()
	if len(items) == 0 {
		dialog.ShowInformation("No Backgrounds",
			fmt.Sprintf("No backgrounds found in %s. Run the manifest tool to generate it.", rc.config.Backgrounds.Manifest),
			mw.window)
		return
	}

	labels := make([]string, len(items))
	for i, it := range items {
		labels[i] = it.Label
	}
	current := rc.catalog.Resolve(rc.background.Current())

	choice := widget.NewSelect(labels, nil)
	choice.SetSelected(current.Label)

	dialog.ShowForm("Background", "Apply", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Video", choice)},
		func(confirmed bool) {
			if !confirmed || choice.SelectedIndex() < 0 {
				return
			}
			mw.applyBackground(items[choice.SelectedIndex()])
		}, mw.window)
}

func (mw *MainWindow) applyBackground(item backgrounds.Item) {
	rc := mw.rc
	bg := rc.background.Replace(item.Background())
	mw.refreshBackground()
	rc.toasts.Info("Background changed",
		toast.WithDescription(bg.Label),
		toast.WithDuration(rc.config.ToastDuration()),
	)
	go rc.prefetcher.One(rc.ctx, bg.Src)
}

func (mw *MainWindow) showImportDialog() {
	rc := mw.rc
	sources := rc.config.ICalSources
	if len(sources) == 0 {
		dialog.ShowInformation("No Calendars", "Add an iCal source in Settings to import events.", mw.window)
		return
	}

	loadingID := rc.toasts.Loading("Importing calendar events",
		toast.WithDescription(fmt.Sprintf("%d source(s)", len(sources))))
	loc := rc.fine.Sampler().Location()

	go func() {
		ctx, cancel := context.WithTimeout(rc.ctx, importTimeout)
		defer cancel()

		candidates, err := rc.calendar.Import(ctx, sources, loc)
		rc.toasts.Dismiss(loadingID)
		if err != nil {
			rc.logger.Warn().Err(err).Int("candidates", len(candidates)).Msg("calendar import incomplete")
		}

		fyne.Do(func() {
			switch {
			case len(candidates) == 0 && err != nil:
				rc.toasts.Error("Calendar import failed",
					toast.WithDescription(err.Error()),
					toast.WithDuration(rc.config.ToastDuration()))
			case len(candidates) == 0:
				rc.toasts.Info("No upcoming events",
					toast.WithDescription("Nothing starts in the next 24 hours."),
					toast.WithDuration(rc.config.ToastDuration()))
			default:
				mw.showCandidates(candidates)
			}
		})
	}()
}

func (mw *MainWindow) showCandidates(candidates []calendar.Candidate) {
	checks := make([]*widget.Check, len(candidates))
	list := container.NewVBox()
	for i, c := range candidates {
		checks[i] = widget.NewCheck(fmt.Sprintf("%s  %s", c.Time, c.Label), nil)
		checks[i].SetChecked(true)
		list.Add(checks[i])
	}

	scroll := container.NewVScroll(list)
	scroll.SetMinSize(fyne.NewSize(380, 240))

	dialog.ShowCustomConfirm("Import Events", "Import", "Cancel", scroll, func(confirmed bool) {
		if !confirmed {
			return
		}
		added := 0
		for i, c := range candidates {
			if !checks[i].Checked {
				continue
			}
			if _, err := mw.rc.reminders.Add(c.Label, c.Time); err != nil {
				mw.rc.logger.Warn().Err(err).Str("label", c.Label).Msg("skipped calendar event")
				continue
			}
			added++
		}
		mw.reminderList.Reload()
		mw.rc.updateSystemTrayMenu()
		mw.rc.toasts.Success(fmt.Sprintf("Imported %d reminder(s)", added),
			toast.WithSound(mw.rc.config.Sounds.Set),
			toast.WithDuration(mw.rc.config.ToastDuration()))
	}, mw.window)
}

func displayLabel(label string) string {
	if label == "" {
		return "Reminder"
	}
	return label
}
