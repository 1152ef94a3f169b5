package service

import (
	"context"
	"log"
	"math/rand"

	"github.com/Tenniee/imposter/internal/game"
	"github.com/Tenniee/imposter/internal/repository"
)

// builtinPrompts keeps rounds playable when Mongo is absent or unseeded.
var builtinPrompts = []game.PromptPair{
	{Main: "What's your favorite food?", Imposter: "What's a Chinese cuisine you'd try?"},
	{Main: "What's the best vacation you've taken?", Imposter: "What's a trip you regret taking?"},
	{Main: "What's your go-to karaoke song?", Imposter: "What song do you secretly dislike?"},
	{Main: "What would you do with a free weekend?", Imposter: "What chore do you keep putting off?"},
	{Main: "What's a movie you could rewatch forever?", Imposter: "What's a movie you walked out of?"},
	{Main: "What's your dream job?", Imposter: "What job would you never take?"},
}

// PromptService hands out a prompt pair for each round, preferring stored
// pairs and falling back to the built-in set.
type PromptService struct {
	promptRepo repository.PromptRepo
}

// NewPromptService creates a new prompt service. promptRepo may be nil when
// running without Mongo.
func NewPromptService(promptRepo repository.PromptRepo) *PromptService {
	return &PromptService{promptRepo: promptRepo}
}

// Pair returns one prompt pair for a new round.
func (s *PromptService) Pair(ctx context.Context) game.PromptPair {
	if s.promptRepo != nil {
		rec, err := s.promptRepo.Random(ctx)
		if err != nil {
			log.Printf("prompt lookup failed, using builtin pair: %v", err)
		} else if rec != nil {
			return game.PromptPair{Main: rec.Main, Imposter: rec.Imposter}
		}
	}
	return builtinPrompts[rand.Intn(len(builtinPrompts))]
}

// BuiltinPairs returns the built-in prompt set, used by the seed tool.
func BuiltinPairs() []game.PromptPair {
	out := make([]game.PromptPair, len(builtinPrompts))
	copy(out, builtinPrompts)
	return out
}
