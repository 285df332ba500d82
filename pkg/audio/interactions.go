package audio

import "sync"

// InteractionKind is a user gesture that may unlock audio output.
type InteractionKind string

const (
	TouchStart  InteractionKind = "touchstart"
	PointerDown InteractionKind = "pointerdown"
	MouseDown   InteractionKind = "mousedown"
	KeyDown     InteractionKind = "keydown"
)

// UnlockKinds are the gestures the gate listens for.
var UnlockKinds = []InteractionKind{TouchStart, PointerDown, MouseDown, KeyDown}

// InteractionSource lets the gate register gesture listeners.
type InteractionSource interface {
	// On registers fn for kind and returns a func that removes it.
	On(kind InteractionKind, fn func()) (remove func())
}

// Interactions is an in-process gesture bus. The UI layer emits into it.
type Interactions struct {
	mu       sync.Mutex
	nextID   int
	handlers map[InteractionKind]map[int]func()
}

// NewInteractions creates an empty bus.
func NewInteractions() *Interactions {
	return &Interactions{handlers: make(map[InteractionKind]map[int]func())}
}

func (b *Interactions) On(kind InteractionKind, fn func()) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.handlers[kind] == nil {
		b.handlers[kind] = make(map[int]func())
	}
	b.handlers[kind][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[kind], id)
	}
}

// Emit invokes every handler registered for kind.
func (b *Interactions) Emit(kind InteractionKind) {
	b.mu.Lock()
	fns := make([]func(), 0, len(b.handlers[kind]))
	for _, fn := range b.handlers[kind] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Listeners returns how many handlers are registered across all kinds.
func (b *Interactions) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, hs := range b.handlers {
		n += len(hs)
	}
	return n
}
