package main

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/borgmon/reminder-clock/pkg/audio"
	"github.com/borgmon/reminder-clock/pkg/toast"
	"github.com/borgmon/reminder-clock/pkg/ui/components"
)

const toastWidth = 320

// ToastLayer draws the toast store as stacks anchored at the six positions.
// It sits on top of the main content and only covers the space its cards use.
type ToastLayer struct {
	rc     *ReminderClock
	stacks map[toast.Position]*fyne.Container
	cards  map[string]fyne.CanvasObject
	root   fyne.CanvasObject
}

func NewToastLayer(rc *ReminderClock) *ToastLayer {
	tl := &ToastLayer{
		rc:     rc,
		stacks: make(map[toast.Position]*fyne.Container, len(toast.Positions)),
		cards:  make(map[string]fyne.CanvasObject),
	}
	for _, p := range toast.Positions {
		tl.stacks[p] = container.NewVBox()
	}

	row := func(left, center, right toast.Position) fyne.CanvasObject {
		return container.NewHBox(
			tl.stacks[left],
			layout.NewSpacer(),
			tl.stacks[center],
			layout.NewSpacer(),
			tl.stacks[right],
		)
	}
	tl.root = container.NewPadded(container.NewBorder(
		row(toast.TopLeft, toast.TopCenter, toast.TopRight),
		row(toast.BottomLeft, toast.BottomCenter, toast.BottomRight),
		nil, nil,
	))
	return tl
}

// Sync redraws from the store's current contents. Change notifications can
// arrive out of order, so they trigger a Sync rather than carrying the data.
func (tl *ToastLayer) Sync() {
	tl.Refresh(tl.rc.toasts.List())
}

// Refresh redraws from snapshot. Cards of toasts still present are reused so
// an alarm being held down keeps its progress.
func (tl *ToastLayer) Refresh(snapshot []toast.Toast) {
	grouped := groupByPosition(snapshot)
	cards := make(map[string]fyne.CanvasObject, len(snapshot))

	for _, p := range toast.Positions {
		objects := make([]fyne.CanvasObject, 0, len(grouped[p]))
		for _, t := range grouped[p] {
			card, ok := tl.cards[t.ID]
			if !ok || t.Done {
				card = tl.card(t)
			}
			cards[t.ID] = card
			objects = append(objects, card)
			tl.rc.toasts.Present(t.ID)
		}
		tl.stacks[p].Objects = objects
		tl.stacks[p].Refresh()
	}
	tl.cards = cards
}

func (tl *ToastLayer) card(t toast.Toast) fyne.CanvasObject {
	id := t.ID

	title := widget.NewLabelWithStyle(t.Label, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	title.Wrapping = fyne.TextWrapWord
	body := container.NewVBox(title)

	if t.Description != "" {
		desc := widget.NewLabel(t.Description)
		desc.Wrapping = fyne.TextWrapWord
		body.Add(desc)
	}
	if t.Variant == toast.VariantLoading {
		body.Add(widget.NewProgressBarInfinite())
	}

	if len(t.Actions) > 0 {
		buttons := container.NewHBox(layout.NewSpacer())
		for _, action := range t.Actions {
			buttons.Add(tl.actionButton(t, action))
		}
		body.Add(buttons)
	}

	var header fyne.CanvasObject = layout.NewSpacer()
	if t.Closable {
		closeButton := widget.NewButtonWithIcon("", theme.CancelIcon(), func() {
			tl.rc.gesture(audio.PointerDown)
			tl.rc.toasts.Dismiss(id)
		})
		closeButton.Importance = widget.LowImportance
		header = container.NewHBox(layout.NewSpacer(), closeButton)
	}

	accent := canvas.NewRectangle(theme.Color(variantColor(t.Variant)))
	accent.SetMinSize(fyne.NewSize(4, 0))
	bg := canvas.NewRectangle(theme.Color(theme.ColorNameOverlayBackground))
	bg.CornerRadius = theme.InputRadiusSize()
	bg.StrokeColor = theme.Color(theme.ColorNameShadow)
	bg.StrokeWidth = 1

	content := container.NewBorder(header, nil, accent, nil, container.NewPadded(body))
	sized := container.NewGridWrap(fyne.NewSize(toastWidth, content.MinSize().Height), container.NewStack(bg, content))
	return sized
}

func (tl *ToastLayer) actionButton(t toast.Toast, action toast.Action) fyne.CanvasObject {
	handler := action.Handler
	run := func() {
		if handler != nil {
			handler()
		}
	}

	// Alarms can't be stopped by a stray click
	if t.Variant == toast.VariantAlarm {
		hold := time.Duration(tl.rc.config.HoldTimeSeconds) * time.Second
		label := action.Label
		if hold > 0 {
			label = action.Label + " (hold)"
		}
		b := components.NewHoldButton(label, hold, run)
		b.OnPress = func() { tl.rc.gesture(audio.MouseDown) }
		return b
	}

	b := widget.NewButton(action.Label, func() {
		tl.rc.gesture(audio.PointerDown)
		run()
	})
	switch action.Style {
	case toast.StylePrimary:
		b.Importance = widget.HighImportance
	case toast.StyleGhost:
		b.Importance = widget.LowImportance
	}
	return b
}

func groupByPosition(toasts []toast.Toast) map[toast.Position][]toast.Toast {
	grouped := make(map[toast.Position][]toast.Toast, len(toast.Positions))
	for _, t := range toasts {
		p := t.Position
		if _, ok := positionIndex[p]; !ok {
			p = toast.TopCenter
		}
		// Bottom stacks grow upwards, so the newest sits at the edge
		if isBottom(p) {
			grouped[p] = append([]toast.Toast{t}, grouped[p]...)
		} else {
			grouped[p] = append(grouped[p], t)
		}
	}
	return grouped
}

var positionIndex = func() map[toast.Position]int {
	m := make(map[toast.Position]int, len(toast.Positions))
	for i, p := range toast.Positions {
		m[p] = i
	}
	return m
}()

func isBottom(p toast.Position) bool {
	return p == toast.BottomLeft || p == toast.BottomCenter || p == toast.BottomRight
}

func variantColor(v toast.Variant) fyne.ThemeColorName {
	switch v {
	case toast.VariantSuccess, toast.VariantComplete:
		return theme.ColorNameSuccess
	case toast.VariantError, toast.VariantAlarm:
		return theme.ColorNameError
	case toast.VariantWarning:
		return theme.ColorNameWarning
	case toast.VariantInfo, toast.VariantSet, toast.VariantLoading:
		return theme.ColorNamePrimary
	default:
		return theme.ColorNameForeground
	}
}
