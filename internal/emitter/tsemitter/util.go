package tsemitter

// orderedSet is a string set that preserves first-seen insertion order.
// Generated output depends on declaration order, so unordered maps are never
// iterated directly anywhere in this package.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(item string) {
	if _, ok := s.seen[item]; ok {
		return
	}
	s.seen[item] = struct{}{}
	s.items = append(s.items, item)
}

func (s *orderedSet) has(item string) bool {
	_, ok := s.seen[item]
	return ok
}

func (s *orderedSet) list() []string {
	return s.items
}

func (s *orderedSet) empty() bool {
	return len(s.items) == 0
}
