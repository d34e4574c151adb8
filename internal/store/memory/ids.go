package memory

// sequence hands out ids the way a serial column does: starting at 1, never reused.
// Callers hold Store.mu.
type sequence struct {
	last int64
}

func (s *sequence) next() int64 {
	s.last++
	return s.last
}
