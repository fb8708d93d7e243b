package memory

import "github.com/sarchlab/chesttrack/world"

// Metadata describes a bank.
type Metadata struct {
	Name      string
	Integrity IntegritySettings

	loadedTime int64
	icons      map[world.Key]string
}

// NewMetadata creates metadata with the default integrity settings.
func NewMetadata(name string) *Metadata {
	return &Metadata{
		Name:      name,
		Integrity: DefaultIntegritySettings(),
		icons:     make(map[world.Key]string),
	}
}

// LoadedTime returns the number of ticks the bank has been loaded for.
func (m *Metadata) LoadedTime() int64 {
	return m.loadedTime
}

// SetLoadedTime overrides the loaded tick counter.
func (m *Metadata) SetLoadedTime(ticks int64) {
	m.loadedTime = ticks
}

// IncrementLoadedTime advances the loaded tick counter by one.
func (m *Metadata) IncrementLoadedTime() {
	m.loadedTime++
}

// Icon returns the item shown next to a key, or the empty string.
func (m *Metadata) Icon(key world.Key) string {
	return m.icons[key]
}

// SetIcon changes the item shown next to a key.
func (m *Metadata) SetIcon(key world.Key, itemID string) {
	if m.icons == nil {
		m.icons = make(map[world.Key]string)
	}

	if itemID == "" {
		delete(m.icons, key)
		return
	}

	m.icons[key] = itemID
}
