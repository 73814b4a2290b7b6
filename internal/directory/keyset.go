package directory

import "sync"

// keyset records which cache keys were built under which parent, so a
// mutation can invalidate exactly the keys that exist. The cache itself
// cannot enumerate related keys; key construction is owned here.
type keyset struct {
	mu   sync.Mutex
	keys map[string]map[string]struct{}
}

func newKeyset() *keyset {
	return &keyset{keys: make(map[string]map[string]struct{})}
}

func (s *keyset) add(parent, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.keys[parent]
	if !ok {
		set = make(map[string]struct{})
		s.keys[parent] = set
	}
	set[key] = struct{}{}
}

// take returns and forgets every key recorded under parent.
func (s *keyset) take(parent string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.keys[parent]
	if !ok {
		return nil
	}
	delete(s.keys, parent)

	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	return keys
}
