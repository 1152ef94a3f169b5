package game

// EventType identifies an outbound notification.
type EventType string

const (
	EventCurrentState     EventType = "current_state"
	EventPlayerJoined     EventType = "player_joined"
	EventRoundStarted     EventType = "round_started"
	EventYourPrompt       EventType = "your_prompt"
	EventAnswersRevealed  EventType = "answers_revealed"
	EventVotingStarted    EventType = "voting_started"
	EventVoteTallyUpdated EventType = "vote_tally_updated"
	EventRoundScored      EventType = "round_scored"
	EventRoundRestarted   EventType = "round_restarted"
	EventRoomEnded        EventType = "room_ended"
)

// Event is an outbound notification produced by a room transition. ToName is
// empty for room-wide broadcasts; private events name a single recipient.
type Event struct {
	Type    EventType
	ToName  string
	Payload interface{}
}

// CurrentStatePayload is the full-state snapshot pushed to a subscriber right
// after it registers.
type CurrentStatePayload struct {
	Code    string          `json:"code"`
	Phase   Phase           `json:"phase"`
	Players []PlayerSummary `json:"players"`
}

// PlayerJoinedPayload announces a new roster member.
type PlayerJoinedPayload struct {
	Player  string   `json:"player"`
	Players []string `json:"players"`
	Phase   Phase    `json:"phase"`
}

// RoundStartedPayload carries counts only. Prompt content and imposter
// membership are never broadcast.
type RoundStartedPayload struct {
	Phase     Phase `json:"phase"`
	Players   int   `json:"players"`
	Imposters int   `json:"imposters"`
}

// YourPromptPayload is private to one player.
type YourPromptPayload struct {
	Prompt     string `json:"prompt"`
	IsImposter bool   `json:"isImposter"`
}

// PlayerAnswer pairs a display name with its submitted answer.
type PlayerAnswer struct {
	Player string `json:"player"`
	Answer string `json:"answer"`
}

// AnswersRevealedPayload exposes every answer. Public by design: it is sent
// once all answers are in, before voting opens.
type AnswersRevealedPayload struct {
	Phase   Phase          `json:"phase"`
	Answers []PlayerAnswer `json:"answers"`
}

// VotingStartedPayload announces the administrative Revealed -> Voting
// transition.
type VotingStartedPayload struct {
	Phase Phase `json:"phase"`
}

// VoteTallyUpdatedPayload carries per-target counts keyed by player id.
type VoteTallyUpdatedPayload struct {
	Counts map[string]int `json:"counts"`
}

// RoundScoredPayload is the round summary broadcast at scoring time.
type RoundScoredPayload struct {
	Phase     Phase          `json:"phase"`
	Imposters []string       `json:"imposters"`
	Counts    map[string]int `json:"counts"`
	Scores    map[string]int `json:"scores"`
}

// RoomEndedPayload announces room teardown.
type RoomEndedPayload struct {
	Message string `json:"message"`
}
