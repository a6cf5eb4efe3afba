package engine

// HasConnectedAllSides reports whether the stones of t form a group that
// touches all three sides. It reuses the state's visited buffer and stack.
func (s *BoardState) HasConnectedAllSides(t Token) bool {
	clear(s.visited)
	s.lastFill = 0
	for _, start := range s.valid {
		if s.cells[start] != t || s.visited[start] || s.edges[start] == 0 {
			continue
		}
		if s.fill(start, t) == allEdges {
			return true
		}
	}
	return false
}

// fill walks the group of start depth-first and returns the OR of its edge
// masks, stopping as soon as every side has been seen.
func (s *BoardState) fill(start int, t Token) uint8 {
	var mask uint8
	s.stack = append(s.stack[:0], start)
	s.visited[start] = true
	for len(s.stack) > 0 {
		cur := s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]
		s.lastFill++
		mask |= s.edges[cur]
		if mask == allEdges {
			return mask
		}
		for _, nb := range s.neighbors[cur] {
			if !s.visited[nb] && s.cells[nb] == t {
				s.visited[nb] = true
				s.stack = append(s.stack, nb)
			}
		}
	}
	return mask
}
