package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/reminder-clock/pkg/audio"
	"github.com/borgmon/reminder-clock/pkg/clock"
	"github.com/borgmon/reminder-clock/pkg/countdown"
	"github.com/borgmon/reminder-clock/pkg/models"
	"github.com/borgmon/reminder-clock/pkg/toast"
	"github.com/borgmon/reminder-clock/pkg/ui/components"
)

type MainWindow struct {
	rc     *ReminderClock
	window fyne.Window

	timeText        *canvas.Text
	periodText      *canvas.Text
	dateLabel       *widget.Label
	backgroundLabel *widget.Label
	reminderList    *components.RowList
	toastLayer      *ToastLayer
}

func NewMainWindow(rc *ReminderClock) *MainWindow {
	mw := &MainWindow{rc: rc}
	mw.window = rc.app.NewWindow("Reminder Clock")
	mw.buildUI()

	rc.detach = append(rc.detach,
		rc.fine.Subscribe(func(s clock.Sample) {
			fyne.Do(func() { mw.tick(s) })
		}),
		rc.coarse.Subscribe(func(s clock.Sample) {
			fyne.Do(func() { mw.dateLabel.SetText(rc.coarse.Sampler().DateText(s.At)) })
		}),
		rc.toasts.Subscribe(func([]toast.Toast) {
			fyne.Do(func() {
				mw.refreshToasts()
				rc.updateSystemTrayMenu()
			})
		}),
	)
	return mw
}

func (mw *MainWindow) buildUI() {
	mw.timeText = canvas.NewText("--:--:--", theme.Color(theme.ColorNameForeground))
	mw.timeText.TextSize = 72
	mw.timeText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	mw.timeText.Alignment = fyne.TextAlignCenter

	mw.periodText = canvas.NewText("", theme.Color(theme.ColorNamePlaceHolder))
	mw.periodText.TextSize = 28

	mw.dateLabel = widget.NewLabel("")
	mw.dateLabel.Alignment = fyne.TextAlignCenter

	mw.backgroundLabel = widget.NewLabel("")
	mw.backgroundLabel.Importance = widget.MediumImportance
	mw.refreshBackground()

	var listObject fyne.CanvasObject
	mw.reminderList, listObject = components.NewRowList(components.RowListConfig{
		Rows:      mw.reminderRows,
		OnRemove:  mw.removeReminder,
		EmptyText: "No reminders yet. Add one to start a countdown.",
	})

	addButton := widget.NewButtonWithIcon("Add Reminder", theme.ContentAddIcon(), mw.tapped(mw.showAddReminderDialog))
	addButton.Importance = widget.HighImportance

	toolbar := container.NewHBox(
		addButton,
		widget.NewButtonWithIcon("Import", theme.DownloadIcon(), mw.tapped(mw.showImportDialog)),
		layout.NewSpacer(),
		widget.NewButtonWithIcon("Background", theme.MediaVideoIcon(), mw.tapped(mw.showBackgroundDialog)),
		widget.NewButtonWithIcon("", theme.SettingsIcon(), mw.tapped(mw.rc.showSettingsWindow)),
	)

	clockFace := container.NewVBox(
		container.NewCenter(container.NewHBox(mw.timeText, container.NewVBox(layout.NewSpacer(), mw.periodText))),
		mw.dateLabel,
		container.NewCenter(mw.backgroundLabel),
	)

	content := container.NewBorder(
		container.NewVBox(clockFace, widget.NewSeparator()),
		container.NewPadded(toolbar),
		nil,
		nil,
		listObject,
	)

	mw.toastLayer = NewToastLayer(mw.rc)
	mw.window.SetContent(container.NewStack(container.NewPadded(content), mw.toastLayer.root))
	mw.window.Resize(fyne.NewSize(640, 720))
	mw.window.CenterOnScreen()

	mw.setupGestures()

	// Closing the window keeps the app in the tray
	mw.window.SetCloseIntercept(func() {
		mw.window.Hide()
	})
}

// setupGestures feeds key presses into the audio gate.
func (mw *MainWindow) setupGestures() {
	c := mw.window.Canvas()
	if dc, ok := c.(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(*fyne.KeyEvent) {
			mw.rc.gesture(audio.KeyDown)
		})
		return
	}
	c.SetOnTypedKey(func(*fyne.KeyEvent) {
		mw.rc.gesture(audio.KeyDown)
	})
}

// tapped wraps a button handler so the tap also counts as a user gesture.
func (mw *MainWindow) tapped(fn func()) func() {
	return func() {
		mw.rc.gesture(audio.PointerDown)
		fn()
	}
}

func (mw *MainWindow) tick(s clock.Sample) {
	if s.Valid() {
		mw.timeText.Text = fmt.Sprintf("%s:%s:%s", s.HourText(), s.MinuteText(), s.SecondText())
		mw.periodText.Text = string(s.Period)
	} else {
		mw.timeText.Text = "--:--:--"
		mw.periodText.Text = ""
	}
	mw.timeText.Refresh()
	mw.periodText.Refresh()
	mw.reminderList.Reload()
}

func (mw *MainWindow) reminderRows() []components.Row {
	return reminderRows(mw.rc.reminders.List(), mw.rc.countdown, mw.rc.watcher.Ringing())
}

// reminderRows renders reminders in stored order with their countdowns.
// Ringing reminders show that instead of a countdown.
func reminderRows(reminders []models.Reminder, tracker *countdown.Tracker, ringing []string) []components.Row {
	isRinging := make(map[string]bool, len(ringing))
	for _, id := range ringing {
		isRinging[id] = true
	}

	rows := make([]components.Row, len(reminders))
	for i, r := range reminders {
		row := components.Row{ID: r.ID, Title: r.Label, Detail: r.Time}
		if row.Title == "" {
			row.Title = "Reminder"
		}
		switch left, ok := tracker.Remaining(r.Time); {
		case isRinging[r.ID]:
			row.Trailing = "ringing"
		case ok:
			row.Trailing = left.Text()
		default:
			row.Trailing = "--:--:--"
		}
		rows[i] = row
	}
	return rows
}

func (mw *MainWindow) removeReminder(id string) {
	mw.rc.gesture(audio.PointerDown)
	mw.rc.watcher.Acknowledge(id)
	if !mw.rc.reminders.Remove(id) {
		return
	}
	mw.rc.updateSystemTrayMenu()
}

func (mw *MainWindow) refreshBackground() {
	item := mw.rc.catalog.Resolve(mw.rc.background.Current())
	mw.backgroundLabel.SetText("Background: " + item.Label)
}

func (mw *MainWindow) refreshToasts() {
	mw.toastLayer.Sync()
}

func (mw *MainWindow) Show() {
	mw.window.Show()
	mw.window.RequestFocus()
}
