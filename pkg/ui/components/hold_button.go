package components

import (
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const holdTick = 50 * time.Millisecond

// HoldButton confirms only after being held down for Hold. A zero Hold
// confirms on a plain tap. Progress is drawn as a bar filling left to right.
type HoldButton struct {
	widget.BaseWidget
	Text      string
	Hold      time.Duration
	OnPress   func() // every press, before any confirmation
	OnConfirm func()

	mu       sync.Mutex
	hovered  bool
	progress float64
	stop     chan struct{}
}

// NewHoldButton creates a new HoldButton
func NewHoldButton(text string, hold time.Duration, onConfirm func()) *HoldButton {
	b := &HoldButton{Text: text, Hold: hold, OnConfirm: onConfirm}
	b.ExtendBaseWidget(b)
	return b
}

// CreateRenderer implements fyne.Widget
func (b *HoldButton) CreateRenderer() fyne.WidgetRenderer {
	text := canvas.NewText(b.Text, theme.Color(theme.ColorNameForeground))
	text.Alignment = fyne.TextAlignCenter

	return &holdButtonRenderer{
		button:      b,
		text:        text,
		bg:          canvas.NewRectangle(theme.Color(theme.ColorNameButton)),
		progressBar: canvas.NewRectangle(theme.Color(theme.ColorNamePrimary)),
	}
}

// Progress returns how far the current hold has got, 0..1.
func (b *HoldButton) Progress() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.progress
}

// Tapped implements fyne.Tappable
func (b *HoldButton) Tapped(*fyne.PointEvent) {
	if b.Hold > 0 {
		return
	}
	if b.OnPress != nil {
		b.OnPress()
	}
	b.confirm()
}

// MouseIn implements desktop.Hoverable
func (b *HoldButton) MouseIn(*desktop.MouseEvent) {
	b.mu.Lock()
	b.hovered = true
	b.mu.Unlock()
	b.Refresh()
}

// MouseMoved implements desktop.Hoverable
func (b *HoldButton) MouseMoved(*desktop.MouseEvent) {}

// MouseOut implements desktop.Hoverable; leaving the button abandons the hold.
func (b *HoldButton) MouseOut() {
	b.mu.Lock()
	b.hovered = false
	b.mu.Unlock()
	b.release()
}

// MouseDown implements desktop.Mouseable
func (b *HoldButton) MouseDown(*desktop.MouseEvent) {
	if b.OnPress != nil {
		b.OnPress()
	}
	if b.Hold <= 0 {
		return
	}

	b.mu.Lock()
	if b.stop != nil {
		b.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	b.stop = stop
	b.mu.Unlock()

	go b.track(time.Now(), stop)
}

// MouseUp implements desktop.Mouseable
func (b *HoldButton) MouseUp(*desktop.MouseEvent) {
	b.release()
}

func (b *HoldButton) track(start time.Time, stop chan struct{}) {
	ticker := time.NewTicker(holdTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			p := holdProgress(now.Sub(start), b.Hold)

			b.mu.Lock()
			if b.stop != stop {
				b.mu.Unlock()
				return
			}
			b.progress = p
			if p >= 1 {
				b.stop = nil
				b.progress = 0
			}
			b.mu.Unlock()

			if p >= 1 {
				fyne.Do(b.confirm)
				return
			}
			fyne.Do(b.Refresh)
		}
	}
}

func (b *HoldButton) release() {
	b.cancel()
	b.Refresh()
}

func (b *HoldButton) cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stop != nil {
		close(b.stop)
		b.stop = nil
	}
	b.progress = 0
}

func (b *HoldButton) confirm() {
	b.Refresh()
	if b.OnConfirm != nil {
		b.OnConfirm()
	}
}

func holdProgress(elapsed, hold time.Duration) float64 {
	if hold <= 0 || elapsed >= hold {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	return float64(elapsed) / float64(hold)
}

type holdButtonRenderer struct {
	button      *HoldButton
	text        *canvas.Text
	bg          *canvas.Rectangle
	progressBar *canvas.Rectangle
}

func (r *holdButtonRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.text.Resize(size)
	r.progressBar.Move(fyne.NewPos(0, 0))
	r.progressBar.Resize(fyne.NewSize(size.Width*float32(r.button.Progress()), size.Height))
}

func (r *holdButtonRenderer) MinSize() fyne.Size {
	textSize := r.text.MinSize()
	return fyne.NewSize(
		max(textSize.Width+theme.Padding()*4, 200),
		max(textSize.Height+theme.Padding()*2, 56),
	)
}

func (r *holdButtonRenderer) Refresh() {
	r.button.mu.Lock()
	hovered := r.button.hovered
	r.button.mu.Unlock()

	r.text.Text = r.button.Text
	r.text.Color = theme.Color(theme.ColorNameForeground)
	if hovered {
		r.bg.FillColor = theme.Color(theme.ColorNameHover)
	} else {
		r.bg.FillColor = theme.Color(theme.ColorNameButton)
	}
	r.Layout(r.bg.Size())

	r.bg.Refresh()
	r.progressBar.Refresh()
	r.text.Refresh()
}

func (r *holdButtonRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.progressBar, r.text}
}

func (r *holdButtonRenderer) Destroy() {
	r.button.cancel()
}

func (r *holdButtonRenderer) BackgroundColor() color.Color {
	return theme.Color(theme.ColorNameButton)
}
