package game

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_CreateRoom(t *testing.T) {
	e := NewEngine()

	room, err := e.CreateRoom("host", nil)
	require.NoError(t, err)

	assert.Len(t, room.Code(), 6)
	assert.Equal(t, 1, room.PlayerCount())

	found, err := e.Room(room.Code())
	require.NoError(t, err)
	assert.Same(t, room, found)
}

func TestEngine_CreateRoom_CodesAreUnique(t *testing.T) {
	e := NewEngine()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		room, err := e.CreateRoom("host", nil)
		require.NoError(t, err)
		assert.False(t, seen[room.Code()])
		seen[room.Code()] = true
	}
}

func TestEngine_CreateRoom_ConsultsExternalCheck(t *testing.T) {
	e := NewEngine()

	// First candidate is reported taken; the generator retries and the
	// rejected code is never issued.
	var rejected string
	room, err := e.CreateRoom("host", func(code string) bool {
		if rejected == "" {
			rejected = code
			return true
		}
		return false
	})

	require.NoError(t, err)
	assert.NotEmpty(t, rejected)
	assert.NotEqual(t, rejected, room.Code())
}

func TestEngine_CreateRoom_ExhaustedCandidates(t *testing.T) {
	e := NewEngine()

	_, err := e.CreateRoom("host", func(string) bool { return true })

	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
}

func TestEngine_Room_NotFound(t *testing.T) {
	e := NewEngine()

	_, err := e.Room("NOPE99")

	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestEngine_RemoveRoom(t *testing.T) {
	e := NewEngine()
	room, err := e.CreateRoom("host", nil)
	require.NoError(t, err)

	e.RemoveRoom(room.Code())

	_, err = e.Room(room.Code())
	require.Error(t, err)
	assert.Equal(t, 0, e.RoomCount())

	e.RemoveRoom(room.Code()) // no-op
}

func TestEngine_RoomsProgressIndependently(t *testing.T) {
	e := NewEngine()

	var rooms []*Room
	for i := 0; i < 4; i++ {
		room, err := e.CreateRoom("host", nil)
		require.NoError(t, err)
		for j := 0; j < 3; j++ {
			_, _, err := room.Join(fmt.Sprintf("player%d", j))
			require.NoError(t, err)
		}
		rooms = append(rooms, room)
	}

	var wg sync.WaitGroup
	for _, room := range rooms {
		wg.Add(1)
		go func(r *Room) {
			defer wg.Done()
			_, err := r.Start(PromptPair{Main: "m", Imposter: "i"})
			assert.NoError(t, err)
			for _, p := range r.Players() {
				_, err := r.SubmitAnswer(p.ID, "answer")
				assert.NoError(t, err)
			}
		}(room)
	}
	wg.Wait()

	for _, room := range rooms {
		assert.Equal(t, PhaseRevealed, room.Phase())
	}
}
