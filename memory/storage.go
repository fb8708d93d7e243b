package memory

// Storage loads and saves banks. The on-disk layout is owned by the
// implementation.
type Storage interface {
	Load(id string) (*Bank, bool, error)
	Save(b *Bank) error
}

// InMemoryStorage keeps banks in a map. It is used by the replay host and
// tests.
type InMemoryStorage struct {
	banks map[string]*Bank
}

// NewInMemoryStorage creates an empty storage.
func NewInMemoryStorage() *InMemoryStorage {
	return &InMemoryStorage{banks: make(map[string]*Bank)}
}

// Load returns the bank with the given id.
func (s *InMemoryStorage) Load(id string) (*Bank, bool, error) {
	b, ok := s.banks[id]
	return b, ok, nil
}

// Save stores the bank under its id.
func (s *InMemoryStorage) Save(b *Bank) error {
	s.banks[b.ID()] = b
	return nil
}

// Len returns the number of stored banks.
func (s *InMemoryStorage) Len() int {
	return len(s.banks)
}
