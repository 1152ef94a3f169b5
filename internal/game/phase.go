package game

// Phase is the lifecycle stage of a room.
type Phase string

const (
	PhaseLobby     Phase = "lobby"
	PhaseAnswering Phase = "answering"
	PhaseRevealed  Phase = "revealed"
	PhaseVoting    Phase = "voting"
	PhaseScoredEnd Phase = "scored_end"
)
