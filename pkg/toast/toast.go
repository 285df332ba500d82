// Package toast keeps the ordered collection of on-screen notifications and
// ties each one's sound to its lifetime.
package toast

import "time"

// Variant selects the visual treatment of a toast.
type Variant string

const (
	VariantDefault  Variant = "default"
	VariantSuccess  Variant = "success"
	VariantError    Variant = "error"
	VariantWarning  Variant = "warning"
	VariantInfo     Variant = "info"
	VariantLoading  Variant = "loading"
	VariantSet      Variant = "set"
	VariantComplete Variant = "complete"
	VariantAlarm    Variant = "alarm"
)

// Position is the screen anchor a toast is stacked at.
type Position string

const (
	TopLeft      Position = "top-left"
	TopCenter    Position = "top-center"
	TopRight     Position = "top-right"
	BottomLeft   Position = "bottom-left"
	BottomCenter Position = "bottom-center"
	BottomRight  Position = "bottom-right"
)

// Positions lists every anchor, top row first.
var Positions = []Position{TopLeft, TopCenter, TopRight, BottomLeft, BottomCenter, BottomRight}

// ActionStyle is the button style of an action.
type ActionStyle string

const (
	StylePrimary   ActionStyle = "primary"
	StyleSecondary ActionStyle = "secondary"
	StyleGhost     ActionStyle = "ghost"
)

// Action is a button rendered on a toast.
type Action struct {
	Label   string
	Handler func()
	Style   ActionStyle
}

// DefaultDuration is how long a toast stays up unless told otherwise.
const DefaultDuration = 4 * time.Second

// Toast is a notification record. Values handed out by the Store are copies.
type Toast struct {
	ID          string
	CreatedAt   time.Time
	Variant     Variant
	Position    Position
	Label       string
	Description string
	Actions     []Action
	Closable    bool
	Duration    time.Duration // 0 keeps the toast until dismissed
	Sound       string        // optional asset name
	SoundLoop   bool
	SoundPlayed bool // one-shot guard
	Done        bool
}

// Persistent reports whether the toast waits for an explicit dismissal.
func (t Toast) Persistent() bool { return t.Duration <= 0 }

func (t Toast) clone() Toast {
	if t.Actions != nil {
		t.Actions = append([]Action(nil), t.Actions...)
	}
	return t
}

// Option customises a toast at creation.
type Option func(*Toast)

// WithVariant sets the semantic variant, which picks the default sound.
func WithVariant(v Variant) Option {
	return func(t *Toast) { t.Variant = v }
}

// WithPosition places the toast in one of the screen-edge stacks.
func WithPosition(p Position) Option {
	return func(t *Toast) { t.Position = p }
}

// WithLabel sets the title line.
func WithLabel(label string) Option {
	return func(t *Toast) { t.Label = label }
}

// WithDescription sets the body text shown under the label.
func WithDescription(desc string) Option {
	return func(t *Toast) { t.Description = desc }
}

// WithClosable controls whether the toast shows a close button.
func WithClosable(closable bool) Option {
	return func(t *Toast) { t.Closable = closable }
}

// WithDuration sets how long the toast stays up. Zero or less keeps it until
// it is dismissed.
func WithDuration(d time.Duration) Option {
	return func(t *Toast) { t.Duration = d }
}

// WithSound overrides the variant's sound with a one-shot named sound.
func WithSound(name string) Option {
	return func(t *Toast) { t.Sound = name }
}

// WithLoop plays name on repeat until the toast is dismissed or marked done.
func WithLoop(name string) Option {
	return func(t *Toast) {
		t.Sound = name
		t.SoundLoop = true
	}
}

// WithAction appends a button.
func WithAction(label string, style ActionStyle, handler func()) Option {
	return func(t *Toast) {
		t.Actions = append(t.Actions, Action{Label: label, Handler: handler, Style: style})
	}
}

func defaults() Toast {
	return Toast{
		Variant:  VariantDefault,
		Position: TopCenter,
		Closable: true,
		Duration: DefaultDuration,
	}
}
