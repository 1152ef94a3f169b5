package service

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Tenniee/imposter/internal/cache"
	"github.com/Tenniee/imposter/internal/game"
	"github.com/Tenniee/imposter/internal/model"
	"github.com/Tenniee/imposter/internal/repository"
)

// GameService is the session engine: it owns the live room set, routes
// commands to the right room, fans the resulting events out through the
// broadcaster, and mirrors state into Mongo/Redis as a best-effort
// projection. Every repo and cache may be nil; the service stays correct
// in-memory-only.
type GameService struct {
	engine  *game.Engine
	prompts *PromptService

	roomRepo    repository.RoomRepo
	playerRepo  repository.PlayerRepo
	voteRepo    repository.VoteRepo
	roomCache   cache.RoomCache
	leaderboard cache.LeaderboardCache

	broadcaster Broadcaster

	// Per-room guard held across command + fan-out so subscribers observe
	// events in emission order. Sends are non-blocking, so holding it
	// through dispatch is cheap, and rooms never contend with each other.
	mu     sync.Mutex
	guards map[string]*sync.Mutex
}

// NewGameService creates a new game service. Any of the repos and caches may
// be nil to run without that backend.
func NewGameService(
	prompts *PromptService,
	roomRepo repository.RoomRepo,
	playerRepo repository.PlayerRepo,
	voteRepo repository.VoteRepo,
	roomCache cache.RoomCache,
	leaderboard cache.LeaderboardCache,
) *GameService {
	return &GameService{
		engine:      game.NewEngine(),
		prompts:     prompts,
		roomRepo:    roomRepo,
		playerRepo:  playerRepo,
		voteRepo:    voteRepo,
		roomCache:   roomCache,
		leaderboard: leaderboard,
		guards:      make(map[string]*sync.Mutex),
	}
}

// SetBroadcaster sets the broadcaster for push events.
func (s *GameService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// CreateRoom creates a room with the host as its only player. The Redis room
// index joins the collision check so a code held by another process (or a
// not-yet-expired ended room) is never reissued.
func (s *GameService) CreateRoom(ctx context.Context, hostName string) (game.CurrentStatePayload, error) {
	room, err := s.engine.CreateRoom(hostName, func(code string) bool {
		if s.roomCache == nil {
			return false
		}
		exists, err := s.roomCache.Exists(ctx, code)
		if err != nil {
			log.Printf("room index check failed for %s: %v", code, err)
			return false
		}
		return exists
	})
	if err != nil {
		return game.CurrentStatePayload{}, err
	}

	s.projectRoom(ctx, room)
	for _, p := range room.Players() {
		s.projectPlayer(ctx, room.Code(), p)
	}

	return room.Snapshot(), nil
}

// JoinRoom adds a player to a room and announces the join.
func (s *GameService) JoinRoom(ctx context.Context, code, playerName string) (game.PlayerSummary, game.CurrentStatePayload, error) {
	guard := s.guard(code)
	guard.Lock()
	defer guard.Unlock()

	// Lookup happens under the guard so a concurrent EndRoom cannot hand us
	// a room it is about to tear down.
	room, err := s.engine.Room(code)
	if err != nil {
		return game.PlayerSummary{}, game.CurrentStatePayload{}, err
	}

	joined, events, err := room.Join(playerName)
	if err != nil {
		return game.PlayerSummary{}, game.CurrentStatePayload{}, err
	}
	s.dispatch(code, events)

	s.projectRoom(ctx, room)
	s.projectPlayer(ctx, code, joined)

	return joined, room.Snapshot(), nil
}

// StartRound starts a round from the lobby.
func (s *GameService) StartRound(ctx context.Context, code string) (game.CurrentStatePayload, error) {
	return s.beginRound(ctx, code, func(room *game.Room, pair game.PromptPair) ([]game.Event, error) {
		return room.Start(pair)
	})
}

// RestartRound starts a new round after scoring, keeping scores and roster.
func (s *GameService) RestartRound(ctx context.Context, code string) (game.CurrentStatePayload, error) {
	return s.beginRound(ctx, code, func(room *game.Room, pair game.PromptPair) ([]game.Event, error) {
		return room.Restart(pair)
	})
}

func (s *GameService) beginRound(ctx context.Context, code string, begin func(*game.Room, game.PromptPair) ([]game.Event, error)) (game.CurrentStatePayload, error) {
	pair := s.prompts.Pair(ctx)

	guard := s.guard(code)
	guard.Lock()
	defer guard.Unlock()

	room, err := s.engine.Room(code)
	if err != nil {
		return game.CurrentStatePayload{}, err
	}

	events, err := begin(room, pair)
	if err != nil {
		return game.CurrentStatePayload{}, err
	}
	s.dispatch(code, events)

	s.projectRoom(ctx, room)
	s.clearVotes(ctx, code)

	return room.Snapshot(), nil
}

// SubmitAnswer stores a player's answer; the room reveals all answers once
// the last one arrives.
func (s *GameService) SubmitAnswer(ctx context.Context, code, playerID, answer string) (game.Phase, error) {
	guard := s.guard(code)
	guard.Lock()
	defer guard.Unlock()

	room, err := s.engine.Room(code)
	if err != nil {
		return "", err
	}

	events, err := room.SubmitAnswer(playerID, answer)
	if err != nil {
		return "", err
	}
	s.dispatch(code, events)
	s.projectRoom(ctx, room)

	return room.Phase(), nil
}

// BeginVoting opens the voting phase.
func (s *GameService) BeginVoting(ctx context.Context, code string) (game.CurrentStatePayload, error) {
	guard := s.guard(code)
	guard.Lock()
	defer guard.Unlock()

	room, err := s.engine.Room(code)
	if err != nil {
		return game.CurrentStatePayload{}, err
	}

	events, err := room.BeginVoting()
	if err != nil {
		return game.CurrentStatePayload{}, err
	}
	s.dispatch(code, events)

	s.projectRoom(ctx, room)
	s.clearVotes(ctx, code)

	return room.Snapshot(), nil
}

// CastVote records a vote and closes the round when the last player votes.
func (s *GameService) CastVote(ctx context.Context, code, voterID, targetID string) (game.VoteStatus, error) {
	guard := s.guard(code)
	guard.Lock()
	defer guard.Unlock()

	room, err := s.engine.Room(code)
	if err != nil {
		return game.VoteStatus{}, err
	}

	status, events, err := room.CastVote(voterID, targetID)
	if err != nil {
		return game.VoteStatus{}, err
	}
	s.dispatch(code, events)

	if s.voteRepo != nil {
		vote := &model.VoteRecord{
			RoomCode: code,
			VoterID:  voterID,
			TargetID: targetID,
			CastAt:   time.Now(),
		}
		if err := s.voteRepo.Upsert(ctx, vote); err != nil {
			log.Printf("vote projection failed for room %s: %v", code, err)
		}
	}

	if status.Closed {
		s.projectRoom(ctx, room)
		for _, p := range room.Players() {
			s.projectScore(ctx, code, p)
		}
	}

	return status, nil
}

// EndRoom tears a room down from any phase, notifies subscribers, and
// releases every resource tied to it.
func (s *GameService) EndRoom(ctx context.Context, code string) error {
	guard := s.guard(code)
	guard.Lock()
	room, err := s.engine.Room(code)
	if err != nil {
		guard.Unlock()
		return err
	}
	s.dispatch(code, room.End())
	s.engine.RemoveRoom(code)
	guard.Unlock()
	s.dropGuard(code)

	if s.broadcaster != nil {
		s.broadcaster.ReleaseRoom(code)
	}

	if s.roomRepo != nil {
		if err := s.roomRepo.Delete(ctx, code); err != nil {
			log.Printf("room projection delete failed for %s: %v", code, err)
		}
	}
	if s.playerRepo != nil {
		if err := s.playerRepo.DeleteByRoom(ctx, code); err != nil {
			log.Printf("player projection delete failed for %s: %v", code, err)
		}
	}
	s.clearVotes(ctx, code)
	if s.roomCache != nil {
		if err := s.roomCache.Delete(ctx, code); err != nil {
			log.Printf("room cache delete failed for %s: %v", code, err)
		}
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.Delete(ctx, code); err != nil {
			log.Printf("leaderboard delete failed for %s: %v", code, err)
		}
	}

	return nil
}

// Snapshot returns the current-state view for a room, pushed to subscribers
// right after they register.
func (s *GameService) Snapshot(code string) (game.CurrentStatePayload, error) {
	room, err := s.engine.Room(code)
	if err != nil {
		return game.CurrentStatePayload{}, err
	}
	return room.Snapshot(), nil
}

// RoomDetail is the read model for the room endpoint. Live rooms answer from
// the engine; ended or lost rooms answer from whatever the projection
// retained.
type RoomDetail struct {
	Live    bool                 `json:"live"`
	Code    string               `json:"code"`
	Phase   game.Phase           `json:"phase"`
	Players []game.PlayerSummary `json:"players"`
	Votes   map[string]int       `json:"votes,omitempty"` // target id -> count, projection only
}

// RoomDetail reads a room by code. When the room is not live, for example
// after a process restart emptied the engine, the Redis meta and Mongo
// records answer instead so clients can still inspect what was recorded.
func (s *GameService) RoomDetail(ctx context.Context, code string) (RoomDetail, error) {
	room, lookupErr := s.engine.Room(code)
	if lookupErr == nil {
		snap := room.Snapshot()
		return RoomDetail{
			Live:    true,
			Code:    snap.Code,
			Phase:   snap.Phase,
			Players: snap.Players,
		}, nil
	}

	detail := RoomDetail{Code: code}
	found := false

	if s.roomCache != nil {
		meta, err := s.roomCache.GetMeta(ctx, code)
		if err != nil {
			log.Printf("room index read failed for %s: %v", code, err)
		} else if meta != nil {
			detail.Phase = game.Phase(meta.Phase)
			found = true
		}
	}
	if !found && s.roomRepo != nil {
		rec, err := s.roomRepo.GetByCode(ctx, code)
		if err != nil {
			log.Printf("room projection read failed for %s: %v", code, err)
		} else if rec != nil {
			detail.Phase = game.Phase(rec.Phase)
			found = true
		}
	}
	if !found {
		return RoomDetail{}, lookupErr
	}

	if s.playerRepo != nil {
		records, err := s.playerRepo.ListByRoom(ctx, code)
		if err != nil {
			log.Printf("player projection read failed for %s: %v", code, err)
		} else {
			for _, rec := range records {
				detail.Players = append(detail.Players, game.PlayerSummary{
					ID:     rec.ID,
					Name:   rec.Name,
					IsHost: rec.IsHost,
					Score:  rec.Score,
				})
			}
		}
	}
	if s.voteRepo != nil {
		records, err := s.voteRepo.ListByRoom(ctx, code)
		if err != nil {
			log.Printf("vote projection read failed for %s: %v", code, err)
		} else if len(records) > 0 {
			votes := make(map[string]string, len(records))
			for _, rec := range records {
				votes[rec.VoterID] = rec.TargetID
			}
			detail.Votes = game.TallyVotes(votes).Counts
		}
	}

	return detail, nil
}

// HasPlayer reports whether a display name is on a room's roster.
func (s *GameService) HasPlayer(code, playerName string) (bool, error) {
	room, err := s.engine.Room(code)
	if err != nil {
		return false, err
	}
	return room.HasPlayerName(playerName), nil
}

// LeaderboardRow is one ranked leaderboard entry with the display name
// resolved from the live roster.
type LeaderboardRow struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

// Leaderboard returns the top scorers for a room, from the Redis ZSET when
// available and from live state otherwise.
func (s *GameService) Leaderboard(ctx context.Context, code string, top int) ([]LeaderboardRow, error) {
	room, err := s.engine.Room(code)
	if err != nil {
		return nil, err
	}

	players := room.Players()
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	if s.leaderboard != nil {
		entries, err := s.leaderboard.GetTop(ctx, code, top)
		if err == nil && len(entries) > 0 {
			rows := make([]LeaderboardRow, len(entries))
			for i, e := range entries {
				rows[i] = LeaderboardRow{
					PlayerID: e.PlayerID,
					Name:     names[e.PlayerID],
					Score:    e.Score,
					Rank:     e.Rank,
				}
			}
			return rows, nil
		}
		if err != nil {
			log.Printf("leaderboard read failed for %s, using live scores: %v", code, err)
		}
	}

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	if top > 0 && len(players) > top {
		players = players[:top]
	}
	rows := make([]LeaderboardRow, len(players))
	for i, p := range players {
		rows[i] = LeaderboardRow{PlayerID: p.ID, Name: p.Name, Score: p.Score, Rank: i + 1}
	}
	return rows, nil
}

// dispatch fans events out: named events go to one subscriber, the rest to
// the whole room.
func (s *GameService) dispatch(code string, events []game.Event) {
	if s.broadcaster == nil {
		return
	}
	for _, ev := range events {
		if ev.ToName != "" {
			s.broadcaster.Unicast(code, ev.ToName, ev)
		} else {
			s.broadcaster.Broadcast(code, ev)
		}
	}
}

func (s *GameService) guard(code string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guards[code]
	if !ok {
		g = &sync.Mutex{}
		s.guards[code] = g
	}
	return g
}

func (s *GameService) dropGuard(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guards, code)
}

func (s *GameService) projectRoom(ctx context.Context, room *game.Room) {
	snap := room.Snapshot()
	host := ""
	if len(snap.Players) > 0 {
		host = snap.Players[0].Name
	}

	if s.roomRepo != nil {
		record := &model.RoomRecord{
			Code:      snap.Code,
			Phase:     string(snap.Phase),
			HostName:  host,
			CreatedAt: room.CreatedAt(),
		}
		if err := s.roomRepo.Upsert(ctx, record); err != nil {
			log.Printf("room projection failed for %s: %v", snap.Code, err)
		}
	}
	if s.roomCache != nil {
		meta := &cache.RoomMeta{
			Code:      snap.Code,
			Phase:     string(snap.Phase),
			HostName:  host,
			Players:   len(snap.Players),
			CreatedAt: room.CreatedAt(),
		}
		if err := s.roomCache.SetMeta(ctx, snap.Code, meta); err != nil {
			log.Printf("room cache write failed for %s: %v", snap.Code, err)
		}
	}
}

func (s *GameService) projectPlayer(ctx context.Context, code string, p game.PlayerSummary) {
	if s.playerRepo != nil {
		record := &model.PlayerRecord{
			ID:       p.ID,
			RoomCode: code,
			Name:     p.Name,
			IsHost:   p.IsHost,
			Score:    p.Score,
			JoinedAt: time.Now(),
		}
		if err := s.playerRepo.Upsert(ctx, record); err != nil {
			log.Printf("player projection failed for %s: %v", code, err)
		}
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.SetScore(ctx, code, p.ID, p.Score); err != nil {
			log.Printf("leaderboard write failed for %s: %v", code, err)
		}
	}
}

func (s *GameService) projectScore(ctx context.Context, code string, p game.PlayerSummary) {
	if s.playerRepo != nil {
		if err := s.playerRepo.UpdateScore(ctx, p.ID, p.Score); err != nil {
			log.Printf("score projection failed for %s: %v", code, err)
		}
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.SetScore(ctx, code, p.ID, p.Score); err != nil {
			log.Printf("leaderboard write failed for %s: %v", code, err)
		}
	}
}

func (s *GameService) clearVotes(ctx context.Context, code string) {
	if s.voteRepo == nil {
		return
	}
	if err := s.voteRepo.DeleteByRoom(ctx, code); err != nil {
		log.Printf("vote projection clear failed for %s: %v", code, err)
	}
}
