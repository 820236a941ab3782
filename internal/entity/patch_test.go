package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomPatch_Apply(t *testing.T) {
	t.Run("Nil fields keep stored values", func(t *testing.T) {
		// Given: a lobby room and a patch touching only maxPlayers
		room := NewRoom("ABCD", NewHumanPlayer("h1", "Alice"))
		maxPlayers := 6

		// When: the patch is applied
		RoomPatch{MaxPlayers: &maxPlayers}.Apply(room)

		// Then: only maxPlayers changed
		assert.Equal(t, 6, room.MaxPlayers)
		assert.Equal(t, StatusLobby, room.Status)
		assert.Len(t, room.Players, 1)
		assert.Empty(t, room.Logs)
	})

	t.Run("Round patch carries the whole turn", func(t *testing.T) {
		// Given: a stored room and a next state computed elsewhere
		stored := NewRoom("ABCD", NewHumanPlayer("h1", "Alice"))
		next := newPlayingRoom()
		next.TurnIndex = 2
		next.WinnerID = ""

		// When: the round patch is applied
		RoundPatch(next).Apply(stored)

		// Then: status, seats, turn and log come from next
		assert.Equal(t, StatusPlaying, stored.Status)
		assert.Equal(t, next.Players, stored.Players)
		assert.Equal(t, 2, stored.TurnIndex)
		assert.Equal(t, next.Logs, stored.Logs)
		assert.Equal(t, DefaultMaxPlayers, stored.MaxPlayers)
	})
}
