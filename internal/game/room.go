package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PromptPair is one round's prompts: Main for regular players, Imposter for
// the imposter subset.
type PromptPair struct {
	Main     string `json:"main"`
	Imposter string `json:"imposter"`
}

// VoteStatus is returned to the voter after a recorded vote.
type VoteStatus struct {
	Counts map[string]int `json:"counts"`
	Closed bool           `json:"closed"`
}

// Room is the authoritative state of one game session. Every mutating method
// is serialized by the room's own mutex, so unrelated rooms never contend.
// Guard violations return an Error and leave state untouched.
type Room struct {
	mu        sync.Mutex
	code      string
	phase     Phase
	ended     bool // set by End; every mutator rejects an ended room
	players   []*Player // join order; players[0] is the creator and stays host
	imposters map[string]bool
	votes     map[string]string // voter id -> target id, one entry per voter
	createdAt time.Time
}

func newRoom(code, hostName string) *Room {
	now := time.Now()
	host := &Player{
		ID:       uuid.NewString(),
		Name:     hostName,
		IsHost:   true,
		JoinedAt: now,
	}
	return &Room{
		code:      code,
		phase:     PhaseLobby,
		players:   []*Player{host},
		imposters: make(map[string]bool),
		votes:     make(map[string]string),
		createdAt: now,
	}
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// CreatedAt returns when the room was created.
func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// Phase returns the current phase.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// PlayerCount returns the roster size.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Players returns the roster in join order.
func (r *Room) Players() []PlayerSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summaries()
}

// HasPlayerName reports whether a display name is on the roster.
func (r *Room) HasPlayerName(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findByName(name) != nil
}

// Snapshot returns the public current-state view pushed to new subscribers.
func (r *Room) Snapshot() CurrentStatePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return CurrentStatePayload{
		Code:    r.code,
		Phase:   r.phase,
		Players: r.summaries(),
	}
}

// Join adds a player. Names are unique per room, case-sensitive; a duplicate
// is rejected, never renamed. Joining is allowed in any phase.
func (r *Room) Join(name string) (PlayerSummary, []Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLive(); err != nil {
		return PlayerSummary{}, nil, err
	}
	if r.findByName(name) != nil {
		return PlayerSummary{}, nil, errConflict("name %q already taken in room %s", name, r.code)
	}

	player := &Player{
		ID:       uuid.NewString(),
		Name:     name,
		JoinedAt: time.Now(),
	}
	r.players = append(r.players, player)

	events := []Event{{
		Type: EventPlayerJoined,
		Payload: PlayerJoinedPayload{
			Player:  name,
			Players: r.names(),
			Phase:   r.phase,
		},
	}}
	return player.summary(), events, nil
}

// Start begins a round from the lobby. Requires at least three players.
func (r *Room) Start(prompts PromptPair) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLive(); err != nil {
		return nil, err
	}
	if r.phase != PhaseLobby {
		return nil, errPrecondition("room %s is in phase %s, cannot start", r.code, r.phase)
	}
	if len(r.players) < 3 {
		return nil, errPrecondition("room %s needs at least 3 players to start, has %d", r.code, len(r.players))
	}

	return r.beginRound(prompts, EventRoundStarted), nil
}

// Restart begins a new round after scoring. Membership and cumulative scores
// carry over; round-scoped fields are cleared and imposters re-sampled.
func (r *Room) Restart(prompts PromptPair) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLive(); err != nil {
		return nil, err
	}
	if r.phase != PhaseScoredEnd {
		return nil, errPrecondition("room %s is in phase %s, cannot restart", r.code, r.phase)
	}
	if len(r.players) < 3 {
		return nil, errPrecondition("room %s needs at least 3 players to restart, has %d", r.code, len(r.players))
	}

	return r.beginRound(prompts, EventRoundRestarted), nil
}

// beginRound resets round state, samples imposters, assigns prompts, and
// moves to Answering. Caller holds the lock.
func (r *Room) beginRound(prompts PromptPair, broadcastType EventType) []Event {
	for _, p := range r.players {
		p.resetRound()
	}
	r.votes = make(map[string]string)

	n := len(r.players)
	// Two-stage sampling: group size first, then membership. A per-player
	// coin flip would give a different group-size distribution.
	k := rand.Intn(n-1) + 1
	r.imposters = make(map[string]bool, k)
	for _, idx := range rand.Perm(n)[:k] {
		r.imposters[r.players[idx].ID] = true
	}

	for _, p := range r.players {
		if r.imposters[p.ID] {
			p.IsImposter = true
			p.Prompt = prompts.Imposter
		} else {
			p.Prompt = prompts.Main
		}
	}

	r.phase = PhaseAnswering

	events := []Event{{
		Type: broadcastType,
		Payload: RoundStartedPayload{
			Phase:     r.phase,
			Players:   n,
			Imposters: k,
		},
	}}
	// One private prompt event per player. Nothing else ever carries prompt
	// text or the imposter flag before the round summary.
	for _, p := range r.players {
		events = append(events, Event{
			Type:   EventYourPrompt,
			ToName: p.Name,
			Payload: YourPromptPayload{
				Prompt:     p.Prompt,
				IsImposter: p.IsImposter,
			},
		})
	}
	return events
}

// SubmitAnswer stores or overwrites a player's answer. Once every player has
// answered, the room auto-advances to Revealed and all answers go public.
func (r *Room) SubmitAnswer(playerID, answer string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLive(); err != nil {
		return nil, err
	}
	if r.phase != PhaseAnswering {
		return nil, errPrecondition("room %s is in phase %s, not accepting answers", r.code, r.phase)
	}
	player := r.findByID(playerID)
	if player == nil {
		return nil, errNotFound("player %s not found in room %s", playerID, r.code)
	}

	player.Answer = answer
	player.Answered = true

	for _, p := range r.players {
		if !p.Answered {
			return nil, nil
		}
	}

	r.phase = PhaseRevealed
	answers := make([]PlayerAnswer, len(r.players))
	for i, p := range r.players {
		answers[i] = PlayerAnswer{Player: p.Name, Answer: p.Answer}
	}
	return []Event{{
		Type: EventAnswersRevealed,
		Payload: AnswersRevealedPayload{
			Phase:   r.phase,
			Answers: answers,
		},
	}}, nil
}

// BeginVoting opens the voting phase and drops any stale votes.
func (r *Room) BeginVoting() ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLive(); err != nil {
		return nil, err
	}
	if r.phase != PhaseRevealed {
		return nil, errPrecondition("room %s is in phase %s, cannot open voting", r.code, r.phase)
	}

	r.votes = make(map[string]string)
	r.phase = PhaseVoting

	return []Event{{
		Type:    EventVotingStarted,
		Payload: VotingStartedPayload{Phase: r.phase},
	}}, nil
}

// CastVote records a vote, replacing the voter's earlier vote if any. When
// every current player has voted, the round is scored and closed.
func (r *Room) CastVote(voterID, targetID string) (VoteStatus, []Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkLive(); err != nil {
		return VoteStatus{}, nil, err
	}
	if r.phase == PhaseScoredEnd {
		return VoteStatus{}, nil, errConflict("voting already closed in room %s", r.code)
	}
	if r.phase != PhaseVoting {
		return VoteStatus{}, nil, errPrecondition("room %s is in phase %s, not accepting votes", r.code, r.phase)
	}
	if r.findByID(voterID) == nil {
		return VoteStatus{}, nil, errNotFound("voter %s not found in room %s", voterID, r.code)
	}
	if r.findByID(targetID) == nil {
		return VoteStatus{}, nil, errNotFound("target %s not found in room %s", targetID, r.code)
	}

	r.votes[voterID] = targetID
	tally := TallyVotes(r.votes)

	events := []Event{{
		Type:    EventVoteTallyUpdated,
		Payload: VoteTallyUpdatedPayload{Counts: tally.Counts},
	}}

	status := VoteStatus{Counts: tally.Counts}
	if len(r.votes) < len(r.players) {
		return status, events, nil
	}

	// Quorum: every current player has exactly one recorded vote.
	events = append(events, r.scoreRound(tally))
	status.Closed = true
	return status, events, nil
}

// scoreRound applies the scoring rule and closes the round. Caller holds the
// lock and has verified quorum.
func (r *Room) scoreRound(tally TallyResult) Event {
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	deltas := ScoreDeltas(ids, r.imposters, tally.Winners)

	imposterNames := make([]string, 0, len(r.imposters))
	scores := make(map[string]int, len(r.players))
	for _, p := range r.players {
		p.Score += deltas[p.ID]
		scores[p.Name] = p.Score
		if r.imposters[p.ID] {
			imposterNames = append(imposterNames, p.Name)
		}
	}

	r.phase = PhaseScoredEnd

	return Event{
		Type: EventRoundScored,
		Payload: RoundScoredPayload{
			Phase:     r.phase,
			Imposters: imposterNames,
			Counts:    tally.Counts,
			Scores:    scores,
		},
	}
}

// End tears the room down from any phase. The engine removes the room and the
// caller releases its registry resources. A command racing the teardown may
// still hold a pointer to this room; the ended flag makes every later
// mutation fail instead of writing into the orphan.
func (r *Room) End() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ended = true

	return []Event{{
		Type:    EventRoomEnded,
		Payload: RoomEndedPayload{Message: "the room has ended"},
	}}
}

// checkLive rejects commands against an ended room. Caller holds the lock.
func (r *Room) checkLive() error {
	if r.ended {
		return errConflict("room %s has ended", r.code)
	}
	return nil
}

func (r *Room) findByName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) findByID(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) summaries() []PlayerSummary {
	out := make([]PlayerSummary, len(r.players))
	for i, p := range r.players {
		out[i] = p.summary()
	}
	return out
}

func (r *Room) names() []string {
	out := make([]string, len(r.players))
	for i, p := range r.players {
		out[i] = p.Name
	}
	return out
}
