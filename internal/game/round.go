package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

const StartedLogText = "Game Started!"

// BotIDFunc produces identities for new bot seats.
type BotIDFunc func() string

func NewBotID() string {
	return entity.BotIDPrefix + uuid.NewString()
}

// FillWithBots seats bots until the room reaches its max players. Bots are named
// "Bot N", counting on from the bots already seated.
func FillWithBots(room *entity.Room, newID BotIDFunc) {
	if newID == nil {
		newID = NewBotID
	}

	bots := len(room.Players) - room.HumanCount()
	for len(room.Players) < room.MaxPlayers {
		bots++
		room.Players = append(room.Players, entity.NewBotPlayer(newID(), fmt.Sprintf("Bot %d", bots)))
	}
}

// Deal hands every seat CardsPerSeat cards from the front of deck.
func Deal(players []*entity.Player, deck []entity.Card) {
	for i, player := range players {
		hand := make([]entity.Card, entity.CardsPerSeat)
		copy(hand, deck[i*entity.CardsPerSeat:(i+1)*entity.CardsPerSeat])
		player.Hand = hand
	}
}

// StartRound returns the room as it looks at the first turn of a new round: seats
// filled with bots, a fresh deck dealt, turn, winner and log reset. It serves both
// the first start from the lobby and a restart after a finished round.
func StartRound(room *entity.Room, rng *rand.Rand, newID BotIDFunc) *entity.Room {
	next := room.Clone()

	FillWithBots(next, newID)
	Deal(next.Players, GenerateDeck(len(next.Players), rng))

	next.Status = entity.StatusPlaying
	next.TurnIndex = 0
	next.WinnerID = ""
	next.Logs = []entity.LogEntry{{Text: StartedLogText, Type: entity.LogNeutral}}

	return next
}
