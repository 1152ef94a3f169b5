package game

import "time"

// Player is a participant in a room. Prompt, Answer, Answered and IsImposter
// are round-scoped and cleared on restart; Score accumulates until the room
// is destroyed.
type Player struct {
	ID         string
	Name       string
	IsHost     bool
	Score      int
	Prompt     string
	Answer     string
	Answered   bool
	IsImposter bool
	JoinedAt   time.Time
}

// PlayerSummary is the public view of a player used in snapshots.
type PlayerSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Score  int    `json:"score"`
}

func (p *Player) summary() PlayerSummary {
	return PlayerSummary{
		ID:     p.ID,
		Name:   p.Name,
		IsHost: p.IsHost,
		Score:  p.Score,
	}
}

func (p *Player) resetRound() {
	p.Prompt = ""
	p.Answer = ""
	p.Answered = false
	p.IsImposter = false
}
