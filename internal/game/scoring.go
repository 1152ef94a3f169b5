package game

// ScoreDeltas computes the per-player score change for one round. An imposter
// who stayed out of the winner set gains 2. A non-imposter gains 1 when the
// winner set implicates at least one imposter, even on a split vote. Everyone
// else is unchanged.
func ScoreDeltas(playerIDs []string, imposters, winners map[string]bool) map[string]int {
	implicated := false
	for id := range imposters {
		if winners[id] {
			implicated = true
			break
		}
	}

	deltas := make(map[string]int, len(playerIDs))
	for _, id := range playerIDs {
		switch {
		case imposters[id] && !winners[id]:
			deltas[id] = 2
		case !imposters[id] && implicated:
			deltas[id] = 1
		default:
			deltas[id] = 0
		}
	}
	return deltas
}
