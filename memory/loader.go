package memory

// A Loader holds the bank that is currently active. There is at most one
// active bank at a time.
type Loader struct {
	active     *Bank
	generation uint64
}

// NewLoader creates a loader with no active bank.
func NewLoader() *Loader {
	return &Loader{}
}

// Load makes a bank active, replacing the previous one.
func (l *Loader) Load(b *Bank) {
	if b == nil {
		panic("cannot load a nil bank")
	}

	l.active = b
	l.generation++
}

// Unload clears the active bank.
func (l *Loader) Unload() {
	if l.active == nil {
		return
	}

	l.active = nil
	l.generation++
}

// Active returns the active bank.
func (l *Loader) Active() (*Bank, bool) {
	return l.active, l.active != nil
}

// Generation increases every time the active bank changes.
func (l *Loader) Generation() uint64 {
	return l.generation
}
