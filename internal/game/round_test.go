package game

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() BotIDFunc {
	next := 0
	return func() string {
		next++
		return fmt.Sprintf("%s%d", entity.BotIDPrefix, next)
	}
}

func TestStartRound(t *testing.T) {
	t.Run("Two humans in a four seat room get two bots", func(t *testing.T) {
		// Given: a lobby with two humans and maxPlayers 4
		lobby := entity.NewRoom("FRUT", entity.NewHumanPlayer("h1", "Alice"))
		lobby.Players = append(lobby.Players, entity.NewHumanPlayer("h2", "Bob"))

		// When: the round starts
		room := StartRound(lobby, rand.New(rand.NewSource(1)), sequentialIDs())

		// Then: exactly two bots were seated with deterministic names
		require.Len(t, room.Players, 4)
		assert.Equal(t, "Bot 1", room.Players[2].Name)
		assert.Equal(t, "Bot 2", room.Players[3].Name)
		for _, bot := range room.Players[2:] {
			assert.True(t, bot.IsBot)
			assert.True(t, strings.HasPrefix(bot.ID, entity.BotIDPrefix))
		}

		// Then: every seat holds five cards, twenty in total, five of each of the first four kinds
		counts := make(map[entity.FruitKind]int)
		for _, player := range room.Players {
			assert.Len(t, player.Hand, entity.CardsPerSeat)
			for _, card := range player.Hand {
				counts[card.Type]++
			}
		}
		assert.Equal(t, 20, room.TotalCards())
		assert.Len(t, counts, 4)
		for _, kind := range entity.FruitOrder[:4] {
			assert.Equal(t, 5, counts[kind])
		}

		// Then: play starts at seat 0 with a fresh log
		assert.Equal(t, entity.StatusPlaying, room.Status)
		assert.Equal(t, 0, room.TurnIndex)
		assert.Empty(t, room.WinnerID)
		assert.Equal(t, []entity.LogEntry{{Text: StartedLogText, Type: entity.LogNeutral}}, room.Logs)
		require.NoError(t, room.Validate())

		// Then: the lobby snapshot was not touched
		assert.Len(t, lobby.Players, 2)
		assert.Equal(t, entity.StatusLobby, lobby.Status)
	})

	t.Run("Single human in a six seat room", func(t *testing.T) {
		// Given: a lobby with one human and maxPlayers 6
		lobby := entity.NewRoom("SOLO", entity.NewHumanPlayer("h1", "Alice"))
		lobby.MaxPlayers = 6

		// When: the round starts with the default bot identities
		room := StartRound(lobby, rand.New(rand.NewSource(2)), nil)

		// Then: five bots fill the room and thirty cards are dealt
		require.Len(t, room.Players, 6)
		assert.Equal(t, 1, room.HumanCount())
		assert.Equal(t, 30, room.TotalCards())
		assert.Equal(t, "Bot 5", room.Players[5].Name)
	})

	t.Run("Restart keeps the roster and clears the winner", func(t *testing.T) {
		// Given: a finished round
		lobby := entity.NewRoom("AGIN", entity.NewHumanPlayer("h1", "Alice"))
		first := StartRound(lobby, rand.New(rand.NewSource(3)), sequentialIDs())
		first.Status = entity.StatusFinished
		first.WinnerID = first.Players[1].ID
		first.TurnIndex = 2
		first.AppendLog(entity.LogEntry{Text: "Bot 1 WINS!", Type: entity.LogWin})

		// When: the host starts again
		again := StartRound(first, rand.New(rand.NewSource(4)), sequentialIDs())

		// Then: the same seats are reused and the round state is reset
		require.Len(t, again.Players, len(first.Players))
		for i := range first.Players {
			assert.Equal(t, first.Players[i].ID, again.Players[i].ID)
			assert.Len(t, again.Players[i].Hand, entity.CardsPerSeat)
		}
		assert.Equal(t, entity.StatusPlaying, again.Status)
		assert.Equal(t, 0, again.TurnIndex)
		assert.Empty(t, again.WinnerID)
		assert.Len(t, again.Logs, 1)
	})
}

func TestFillWithBots(t *testing.T) {
	t.Run("Numbering continues after seated bots", func(t *testing.T) {
		// Given: a room of five with one human and one bot already seated
		room := entity.NewRoom("NUMB", entity.NewHumanPlayer("h1", "Alice"))
		room.MaxPlayers = 5
		room.Players = append(room.Players, entity.NewBotPlayer("x", "Bot 1"))

		// When: the room is filled
		FillWithBots(room, sequentialIDs())

		// Then: the new bots are Bot 2 to Bot 4
		require.Len(t, room.Players, 5)
		assert.Equal(t, "Bot 2", room.Players[2].Name)
		assert.Equal(t, "Bot 4", room.Players[4].Name)
	})

	t.Run("Full room gets no bots", func(t *testing.T) {
		// Given: a room already at capacity
		room := entity.NewRoom("FULL", entity.NewHumanPlayer("h1", "Alice"))
		for i := 2; i <= 4; i++ {
			room.Players = append(room.Players, entity.NewHumanPlayer(fmt.Sprintf("h%d", i), "P"))
		}

		// When: the room is filled
		FillWithBots(room, sequentialIDs())

		// Then: nothing changed
		assert.Len(t, room.Players, 4)
		assert.Equal(t, 4, room.HumanCount())
	})
}
