package engine

// Terminal scores from Self's point of view.
const (
	WinScore  = 100000
	LoseScore = -WinScore
)

// Evaluate scores s from Self's point of view. A finished connection wins
// outright; otherwise stones near the centre are worth more than stones on
// the rim.
func Evaluate(s *BoardState) int {
	if s.HasConnectedAllSides(Self) {
		return WinScore
	}
	if s.HasConnectedAllSides(Opponent) {
		return LoseScore
	}
	return s.centerScore(Self) - s.centerScore(Opponent)
}

func (s *BoardState) centerScore(t Token) int {
	score := 0
	for _, idx := range s.valid {
		if s.cells[idx] == t {
			score += s.center[idx]
		}
	}
	return score
}
