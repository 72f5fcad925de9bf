package casecomp

// slotAllocator numbers the bind sites of one choice from zero and remembers the
// largest count any choice needed.
type slotAllocator struct {
	next int
	max  int
}

func (s *slotAllocator) alloc() int {
	n := s.next
	s.next++
	if s.next > s.max {
		s.max = s.next
	}
	return n
}

// reset starts the numbering of the next choice.
func (s *slotAllocator) reset() {
	s.next = 0
}
