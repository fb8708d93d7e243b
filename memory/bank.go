package memory

import (
	"slices"

	"github.com/sarchlab/chesttrack/world"
)

// A Bank is the collection of memories for one save, server or realm. Inside
// a bank, memories are grouped by key and indexed by position.
type Bank struct {
	id       string
	metadata *Metadata
	memories map[world.Key]map[world.BlockPos]Memory
	keys     []world.Key
}

// NewBank creates an empty bank.
func NewBank(id string, metadata *Metadata) *Bank {
	if metadata == nil {
		metadata = NewMetadata(id)
	}

	return &Bank{
		id:       id,
		metadata: metadata,
		memories: make(map[world.Key]map[world.BlockPos]Memory),
	}
}

// ID returns the identifier of the bank.
func (b *Bank) ID() string {
	return b.id
}

// Metadata returns the metadata of the bank.
func (b *Bank) Metadata() *Metadata {
	return b.metadata
}

// Keys returns the keys of the bank in display order.
func (b *Bank) Keys() []world.Key {
	return slices.Clone(b.keys)
}

// Memories returns the memories stored under a key, or nil if the key is not
// known. The returned map is owned by the bank and must not be modified.
func (b *Bank) Memories(key world.Key) map[world.BlockPos]Memory {
	return b.memories[key]
}

// Entries returns a snapshot of the memories under a key, ordered by
// position.
func (b *Bank) Entries(key world.Key) []Entry {
	memories := b.memories[key]
	if len(memories) == 0 {
		return nil
	}

	entries := make([]Entry, 0, len(memories))
	for pos, m := range memories {
		entries = append(entries, Entry{Pos: pos, Memory: m})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.Pos.Less(b.Pos):
			return -1
		case b.Pos.Less(a.Pos):
			return 1
		default:
			return 0
		}
	})

	return entries
}

// Memory returns the memory at a position.
func (b *Bank) Memory(key world.Key, pos world.BlockPos) (Memory, bool) {
	m, ok := b.memories[key][pos]
	return m, ok
}

// Count returns the number of memories under a key.
func (b *Bank) Count(key world.Key) int {
	return len(b.memories[key])
}

// AddMemory stores a memory, replacing the one at the same position.
func (b *Bank) AddMemory(key world.Key, pos world.BlockPos, m Memory) {
	memories, ok := b.memories[key]
	if !ok {
		memories = make(map[world.BlockPos]Memory)
		b.memories[key] = memories
		b.keys = append(b.keys, key)
	}

	memories[pos] = m
}

// RemoveMemory deletes the memory at a position. It returns false if there
// was none.
func (b *Bank) RemoveMemory(key world.Key, pos world.BlockPos) bool {
	memories, ok := b.memories[key]
	if !ok {
		return false
	}

	if _, ok := memories[pos]; !ok {
		return false
	}

	delete(memories, pos)

	return true
}

// RemoveKey deletes a key and every memory under it.
func (b *Bank) RemoveKey(key world.Key) bool {
	if _, ok := b.memories[key]; !ok {
		return false
	}

	delete(b.memories, key)
	b.keys = slices.DeleteFunc(b.keys, func(k world.Key) bool { return k == key })
	b.metadata.SetIcon(key, "")

	return true
}

// MoveKey moves a key to a new index in the display order. The index is
// clamped to the valid range.
func (b *Bank) MoveKey(key world.Key, index int) bool {
	from := slices.Index(b.keys, key)
	if from < 0 {
		return false
	}

	b.keys = slices.Delete(b.keys, from, from+1)
	index = max(0, min(index, len(b.keys)))
	b.keys = slices.Insert(b.keys, index, key)

	return true
}

// A SearchResult locates a remembered item.
type SearchResult struct {
	Key   world.Key
	Pos   world.BlockPos
	Name  string
	Count int
}

// Find returns every memory that holds the given item, in key display order
// and then by position.
func (b *Bank) Find(itemID string) []SearchResult {
	var results []SearchResult

	for _, key := range b.keys {
		for _, e := range b.Entries(key) {
			count := e.Memory.CountOf(itemID)
			if count == 0 {
				continue
			}

			results = append(results, SearchResult{
				Key:   key,
				Pos:   e.Pos,
				Name:  e.Memory.Name,
				Count: count,
			})
		}
	}

	return results
}
