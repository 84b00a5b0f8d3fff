package scoring

// Service evaluates dice multisets against the 10000 scoring rules.
// It is pure and stateless; every method is safe for concurrent use.
type Service struct{}

// New creates a new ScoringService
func New() *Service {
	return &Service{}
}

// faceCounts tallies the dice by face. ok is false if any die is outside 1..6.
func faceCounts(dice []int) (counts [7]int, ok bool) {
	for _, d := range dice {
		if d < 1 || d > 6 {
			return counts, false
		}
		counts[d]++
	}
	return counts, true
}

// Score returns the total score of a kept multiset. Singles and pairs of 1s
// and 5s score 100 and 50 per die; three of a kind scores face*100 (1000 for
// 1s) with each die beyond the third adding the triple value again. Faces
// 2, 3, 4 and 6 with fewer than three dice score nothing.
func (s *Service) Score(kept []int) int {
	counts, ok := faceCounts(kept)
	if !ok {
		return 0
	}

	total := 0
	for face := 1; face <= 6; face++ {
		c := counts[face]
		if c == 0 {
			continue
		}
		switch {
		case face == 1 && c < 3:
			total += c * 100
		case face == 5 && c < 3:
			total += c * 50
		case c >= 3:
			tripleValue := face * 100
			if face == 1 {
				tripleValue = 1000
			}
			total += tripleValue * (c - 2)
		}
	}
	return total
}

// IsFullyScorable reports whether the roll contains at least one legal
// combination (a 1, a 5, or three identical faces), i.e. the turn may
// continue. A roll that is not fully scorable is a bust.
func (s *Service) IsFullyScorable(roll []int) bool {
	counts, ok := faceCounts(roll)
	if !ok {
		return false
	}

	if counts[1] > 0 || counts[5] > 0 {
		return true
	}
	for face := 2; face <= 6; face++ {
		if counts[face] >= 3 {
			return true
		}
	}
	return false
}

// HasDeadDice reports whether kept contains one or two dice of a face in
// {2, 3, 4, 6}. Such dice score nothing on their own and may not be kept.
func (s *Service) HasDeadDice(kept []int) bool {
	counts, ok := faceCounts(kept)
	if !ok {
		return true
	}

	for _, face := range []int{2, 3, 4, 6} {
		if c := counts[face]; c == 1 || c == 2 {
			return true
		}
	}
	return false
}

// IsMultisetSubset reports whether every face occurs in subset at most as
// often as in superset.
func (s *Service) IsMultisetSubset(superset, subset []int) bool {
	superCounts, ok := faceCounts(superset)
	if !ok {
		return false
	}
	subCounts, ok := faceCounts(subset)
	if !ok {
		return false
	}

	for face := 1; face <= 6; face++ {
		if subCounts[face] > superCounts[face] {
			return false
		}
	}
	return true
}

// Interface for dependency injection
type ServiceInterface interface {
	Score(kept []int) int
	IsFullyScorable(roll []int) bool
	HasDeadDice(kept []int) bool
	IsMultisetSubset(superset, subset []int) bool
}

var _ ServiceInterface = (*Service)(nil)
