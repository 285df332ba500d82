package components

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Row is one line of a RowList.
type Row struct {
	ID       string
	Title    string
	Detail   string // shown next to the title, e.g. the reminder time
	Trailing string // right aligned, e.g. the countdown
}

// RowList shows rows pulled from a provider, each with a remove button.
// Reload re-reads the provider; the list itself keeps no other state.
type RowList struct {
	list     *widget.List
	provider func() []Row
	onRemove func(id string)
	empty    *widget.Label

	mu   sync.Mutex
	rows []Row
}

// RowListConfig configures a RowList.
type RowListConfig struct {
	Rows      func() []Row
	OnRemove  func(id string) // nil hides the remove buttons
	EmptyText string
}

// NewRowList creates a RowList and the container that displays it.
func NewRowList(config RowListConfig) (*RowList, fyne.CanvasObject) {
	rl := &RowList{
		provider: config.Rows,
		onRemove: config.OnRemove,
		empty:    widget.NewLabel(config.EmptyText),
	}
	rl.empty.Alignment = fyne.TextAlignCenter

	rl.list = widget.NewList(
		rl.Len,
		func() fyne.CanvasObject {
			title := widget.NewLabelWithStyle("title", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
			detail := widget.NewLabel("detail")
			trailing := widget.NewLabelWithStyle("trailing", fyne.TextAlignTrailing, fyne.TextStyle{Monospace: true})
			remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
			remove.Importance = widget.LowImportance
			if rl.onRemove == nil {
				remove.Hide()
			}
			return container.NewHBox(title, detail, layout.NewSpacer(), trailing, remove)
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			row, ok := rl.At(i)
			if !ok {
				return
			}
			objects := o.(*fyne.Container).Objects
			objects[0].(*widget.Label).SetText(row.Title)
			objects[1].(*widget.Label).SetText(row.Detail)
			objects[3].(*widget.Label).SetText(row.Trailing)
			objects[4].(*widget.Button).OnTapped = func() { rl.Remove(row.ID) }
		})

	scroll := container.NewScroll(rl.list)
	scroll.SetMinSize(fyne.NewSize(0, 150))

	rl.Reload()
	return rl, container.NewStack(rl.empty, scroll)
}

// Len returns the number of cached rows.
func (rl *RowList) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.rows)
}

// At returns the cached row at i.
func (rl *RowList) At(i int) (Row, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if i < 0 || i >= len(rl.rows) {
		return Row{}, false
	}
	return rl.rows[i], true
}

// Reload re-reads the provider and redraws.
func (rl *RowList) Reload() {
	var rows []Row
	if rl.provider != nil {
		rows = rl.provider()
	}

	rl.mu.Lock()
	rl.rows = rows
	rl.mu.Unlock()

	if len(rows) == 0 {
		rl.empty.Show()
	} else {
		rl.empty.Hide()
	}
	rl.list.Refresh()
}

// Remove asks the owner to delete id, then reloads.
func (rl *RowList) Remove(id string) {
	if rl.onRemove == nil {
		return
	}
	rl.onRemove(id)
	rl.list.UnselectAll()
	rl.Reload()
}
