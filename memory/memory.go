// Package memory holds remembered container contents, grouped into banks and
// keyed by region and position, along with the settings that decide when a
// memory is too old to trust.
package memory

import (
	"time"

	"github.com/sarchlab/chesttrack/world"
)

// Markers for timestamps that were not recorded when the memory was created.
const (
	UnknownLoadedTimestamp int64 = -437822
	UnknownWorldTimestamp  int64 = -437821
)

// UnknownRealTimestamp marks an unrecorded wall-clock timestamp.
var UnknownRealTimestamp = time.Unix(0, 0).UTC()

// An ItemStack is a number of items of one kind.
type ItemStack struct {
	ID    string `yaml:"id"`
	Count int    `yaml:"count"`
}

// A Memory is a snapshot of a container's contents.
type Memory struct {
	// Name is the custom name of the container, or empty.
	Name  string
	Items []ItemStack

	RealTimestamp   time.Time
	InGameTimestamp int64
	LoadedTimestamp int64
}

// HasName reports whether the container was given a custom name.
func (m Memory) HasName() bool {
	return m.Name != ""
}

// CountOf returns the number of items with the given ID.
func (m Memory) CountOf(itemID string) int {
	total := 0

	for _, s := range m.Items {
		if s.ID == itemID {
			total += s.Count
		}
	}

	return total
}

// An Entry pairs a memory with its position.
type Entry struct {
	Pos    world.BlockPos
	Memory Memory
}
