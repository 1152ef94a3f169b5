package game

// TallyResult holds per-target vote counts and the set of targets tied for
// the most votes.
type TallyResult struct {
	Counts  map[string]int
	Winners map[string]bool
	Max     int
}

// TallyVotes counts votes from a voter id -> target id mapping. Ties are not
// broken: every target at the maximum count is in Winners. An empty mapping
// yields Max 0 and an empty winner set.
func TallyVotes(votes map[string]string) TallyResult {
	result := TallyResult{
		Counts:  make(map[string]int),
		Winners: make(map[string]bool),
	}

	for _, targetID := range votes {
		result.Counts[targetID]++
		if result.Counts[targetID] > result.Max {
			result.Max = result.Counts[targetID]
		}
	}

	for targetID, count := range result.Counts {
		if count == result.Max {
			result.Winners[targetID] = true
		}
	}

	return result
}
