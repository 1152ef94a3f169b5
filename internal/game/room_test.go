package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPrompts() PromptPair {
	return PromptPair{Main: "main question", Imposter: "imposter question"}
}

func roomWithPlayers(t *testing.T, names ...string) *Room {
	t.Helper()
	r := newRoom("ROOM01", names[0])
	for _, name := range names[1:] {
		_, _, err := r.Join(name)
		require.NoError(t, err)
	}
	return r
}

func TestRoom_CreatorIsHost(t *testing.T) {
	r := newRoom("ROOM01", "host")

	players := r.Players()
	require.Len(t, players, 1)
	assert.True(t, players[0].IsHost)
	assert.Equal(t, "host", players[0].Name)
	assert.NotEmpty(t, players[0].ID)
	assert.Equal(t, PhaseLobby, r.Phase())
}

func TestRoom_Join_DuplicateNameRejected(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice")

	_, _, err := r.Join("alice")

	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 2, r.PlayerCount())
}

func TestRoom_Join_NamesAreCaseSensitive(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice")

	_, events, err := r.Join("Alice")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventPlayerJoined, events[0].Type)
	assert.Equal(t, 3, r.PlayerCount())
}

func TestRoom_Start_RequiresThreePlayers(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice")

	_, err := r.Start(testPrompts())

	require.Error(t, err)
	assert.Equal(t, KindPreconditionFailed, KindOf(err))
	assert.Equal(t, PhaseLobby, r.Phase())
}

func TestRoom_Start_WrongPhaseRejected(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")
	_, err := r.Start(testPrompts())
	require.NoError(t, err)

	_, err = r.Start(testPrompts())

	require.Error(t, err)
	assert.Equal(t, KindPreconditionFailed, KindOf(err))
}

func TestRoom_Start_SamplesImpostersAndAssignsPrompts(t *testing.T) {
	// Sampling is random, so check the invariants over repeated rounds:
	// group size in [1, n-1], and prompt matches the imposter flag exactly.
	for i := 0; i < 50; i++ {
		r := roomWithPlayers(t, "host", "alice", "bob", "carol")

		events, err := r.Start(testPrompts())
		require.NoError(t, err)
		assert.Equal(t, PhaseAnswering, r.Phase())

		imposters := 0
		for _, p := range r.players {
			if p.IsImposter {
				imposters++
				assert.Equal(t, "imposter question", p.Prompt)
				assert.True(t, r.imposters[p.ID])
			} else {
				assert.Equal(t, "main question", p.Prompt)
			}
		}
		assert.GreaterOrEqual(t, imposters, 1)
		assert.LessOrEqual(t, imposters, 3)
		assert.Len(t, r.imposters, imposters)

		require.Len(t, events, 5) // 1 broadcast + 4 private prompts
		assert.Equal(t, EventRoundStarted, events[0].Type)
		payload := events[0].Payload.(RoundStartedPayload)
		assert.Equal(t, 4, payload.Players)
		assert.Equal(t, imposters, payload.Imposters)
	}
}

func TestRoom_Start_PromptEventsArePrivate(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")

	events, err := r.Start(testPrompts())
	require.NoError(t, err)

	assert.Empty(t, events[0].ToName) // round_started is a broadcast
	for _, ev := range events[1:] {
		require.Equal(t, EventYourPrompt, ev.Type)
		require.NotEmpty(t, ev.ToName)

		player := r.findByName(ev.ToName)
		require.NotNil(t, player)
		payload := ev.Payload.(YourPromptPayload)
		assert.Equal(t, player.Prompt, payload.Prompt)
		assert.Equal(t, player.IsImposter, payload.IsImposter)
	}
}

func TestRoom_SubmitAnswer_RevealsOnceAllAnswered(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")
	_, err := r.Start(testPrompts())
	require.NoError(t, err)

	players := r.Players()

	events, err := r.SubmitAnswer(players[0].ID, "pizza")
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, PhaseAnswering, r.Phase())

	// Overwriting an earlier answer does not count twice.
	_, err = r.SubmitAnswer(players[0].ID, "pasta")
	require.NoError(t, err)
	assert.Equal(t, PhaseAnswering, r.Phase())

	_, err = r.SubmitAnswer(players[1].ID, "sushi")
	require.NoError(t, err)

	events, err = r.SubmitAnswer(players[2].ID, "tacos")
	require.NoError(t, err)
	assert.Equal(t, PhaseRevealed, r.Phase())

	require.Len(t, events, 1)
	assert.Equal(t, EventAnswersRevealed, events[0].Type)
	payload := events[0].Payload.(AnswersRevealedPayload)
	require.Len(t, payload.Answers, 3)
	assert.Equal(t, PlayerAnswer{Player: "host", Answer: "pasta"}, payload.Answers[0])
	assert.Equal(t, PlayerAnswer{Player: "alice", Answer: "sushi"}, payload.Answers[1])
	assert.Equal(t, PlayerAnswer{Player: "bob", Answer: "tacos"}, payload.Answers[2])
}

func TestRoom_SubmitAnswer_UnknownPlayer(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")
	_, err := r.Start(testPrompts())
	require.NoError(t, err)

	_, err = r.SubmitAnswer("nope", "pizza")

	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRoom_SubmitAnswer_WrongPhase(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")

	_, err := r.SubmitAnswer(r.Players()[0].ID, "pizza")

	require.Error(t, err)
	assert.Equal(t, KindPreconditionFailed, KindOf(err))
}

func TestRoom_BeginVoting_ClearsStaleVotes(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")
	r.phase = PhaseRevealed
	r.votes = map[string]string{"stale": "entry"}

	events, err := r.BeginVoting()

	require.NoError(t, err)
	assert.Equal(t, PhaseVoting, r.Phase())
	assert.Empty(t, r.votes)
	require.Len(t, events, 1)
	assert.Equal(t, EventVotingStarted, events[0].Type)
}

func TestRoom_BeginVoting_WrongPhase(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")

	_, err := r.BeginVoting()

	require.Error(t, err)
	assert.Equal(t, KindPreconditionFailed, KindOf(err))
}

// votingRoom sets up a three-player room in the Voting phase with alice as
// the only imposter.
func votingRoom(t *testing.T) (r *Room, host, alice, bob PlayerSummary) {
	t.Helper()
	r = roomWithPlayers(t, "host", "alice", "bob")
	players := r.Players()
	host, alice, bob = players[0], players[1], players[2]

	r.imposters = map[string]bool{alice.ID: true}
	r.findByID(alice.ID).IsImposter = true
	r.phase = PhaseVoting
	return r, host, alice, bob
}

func TestRoom_CastVote_LatestVoteWins(t *testing.T) {
	r, host, alice, bob := votingRoom(t)

	status, _, err := r.CastVote(host.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, status.Closed)
	assert.Equal(t, map[string]int{alice.ID: 1}, status.Counts)

	// Re-vote replaces, never adds a second count.
	status, _, err = r.CastVote(host.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, status.Closed)
	assert.Equal(t, map[string]int{bob.ID: 1}, status.Counts)
}

func TestRoom_CastVote_QuorumClosesAndScores(t *testing.T) {
	r, host, alice, bob := votingRoom(t)

	_, _, err := r.CastVote(host.ID, alice.ID)
	require.NoError(t, err)
	_, _, err = r.CastVote(bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseVoting, r.Phase()) // alice has not voted yet

	status, events, err := r.CastVote(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, status.Closed)
	assert.Equal(t, PhaseScoredEnd, r.Phase())

	// Winner set {alice}: the imposter was implicated, non-imposters +1.
	require.Len(t, events, 2)
	assert.Equal(t, EventVoteTallyUpdated, events[0].Type)
	assert.Equal(t, EventRoundScored, events[1].Type)
	payload := events[1].Payload.(RoundScoredPayload)
	assert.Equal(t, []string{"alice"}, payload.Imposters)
	assert.Equal(t, map[string]int{"host": 1, "alice": 0, "bob": 1}, payload.Scores)
}

func TestRoom_CastVote_QuorumCountsEveryRosterMember(t *testing.T) {
	// A disconnected player is still on the roster, so two votes out of
	// three never close the round.
	r, host, alice, _ := votingRoom(t)

	_, _, err := r.CastVote(host.ID, alice.ID)
	require.NoError(t, err)
	status, _, err := r.CastVote(alice.ID, host.ID)
	require.NoError(t, err)

	assert.False(t, status.Closed)
	assert.Equal(t, PhaseVoting, r.Phase())
}

func TestRoom_CastVote_AfterCloseIsConflict(t *testing.T) {
	r, host, alice, bob := votingRoom(t)
	_, _, err := r.CastVote(host.ID, alice.ID)
	require.NoError(t, err)
	_, _, err = r.CastVote(alice.ID, bob.ID)
	require.NoError(t, err)
	_, _, err = r.CastVote(bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseScoredEnd, r.Phase())

	_, _, err = r.CastVote(host.ID, bob.ID)

	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRoom_CastVote_UnknownPlayers(t *testing.T) {
	r, host, _, _ := votingRoom(t)

	_, _, err := r.CastVote("nope", host.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, _, err = r.CastVote(host.ID, "nope")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))

	assert.Empty(t, r.votes)
}

func TestRoom_Restart_PreservesScoresAndClearsRoundState(t *testing.T) {
	r, host, alice, bob := votingRoom(t)
	_, _, err := r.CastVote(host.ID, alice.ID)
	require.NoError(t, err)
	_, _, err = r.CastVote(alice.ID, bob.ID)
	require.NoError(t, err)
	_, _, err = r.CastVote(bob.ID, alice.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseScoredEnd, r.Phase())

	events, err := r.Restart(testPrompts())
	require.NoError(t, err)

	assert.Equal(t, PhaseAnswering, r.Phase())
	assert.Equal(t, 3, r.PlayerCount())
	assert.Empty(t, r.votes)

	// Scores from the previous round survive the restart.
	byName := make(map[string]int)
	for _, p := range r.Players() {
		byName[p.Name] = p.Score
	}
	assert.Equal(t, map[string]int{"host": 1, "alice": 0, "bob": 1}, byName)

	for _, p := range r.players {
		assert.False(t, p.Answered)
		assert.Empty(t, p.Answer)
		assert.NotEmpty(t, p.Prompt) // new round, new prompt
	}

	require.NotEmpty(t, events)
	assert.Equal(t, EventRoundRestarted, events[0].Type)
}

func TestRoom_Restart_WrongPhase(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")

	_, err := r.Restart(testPrompts())

	require.Error(t, err)
	assert.Equal(t, KindPreconditionFailed, KindOf(err))
}

func TestRoom_End_WorksFromAnyPhase(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice", "bob")

	events := r.End()

	require.Len(t, events, 1)
	assert.Equal(t, EventRoomEnded, events[0].Type)
}

func TestRoom_CommandsAfterEndAreRejected(t *testing.T) {
	// A caller that looked the room up just before teardown still holds the
	// pointer; nothing it does may mutate the ended room.
	r := roomWithPlayers(t, "host", "alice", "bob")
	players := r.Players()
	r.End()

	_, _, err := r.Join("late-joiner")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 3, r.PlayerCount())

	_, err = r.Start(testPrompts())
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, PhaseLobby, r.Phase())

	_, err = r.SubmitAnswer(players[0].ID, "pizza")
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = r.BeginVoting()
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	_, _, err = r.CastVote(players[0].ID, players[1].ID)
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = r.Restart(testPrompts())
	require.Error(t, err)
	assert.Equal(t, KindConflict, KindOf(err))
}

func TestRoom_Snapshot(t *testing.T) {
	r := roomWithPlayers(t, "host", "alice")

	snap := r.Snapshot()

	assert.Equal(t, "ROOM01", snap.Code)
	assert.Equal(t, PhaseLobby, snap.Phase)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "host", snap.Players[0].Name)
}
