package game

import (
	"fmt"

	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

// ApplyPass moves one card from the acting seat to its left neighbour and returns the
// next room state with the action log entry. The input room is not modified.
//
// An out of range cardIndex passes the last card in the acting hand instead of failing,
// so a late or malformed intent can never wedge the room. Callers must check that
// actingSeat is still the turn owner before calling.
func ApplyPass(room *entity.Room, actingSeat, cardIndex int) (*entity.Room, entity.LogEntry) {
	next := room.Clone()

	seats := len(next.Players)
	receiverSeat := (actingSeat + 1) % seats

	sender := next.Players[actingSeat]
	receiver := next.Players[receiverSeat]

	if card, ok := takeCard(sender, cardIndex); ok {
		receiver.Hand = append(receiver.Hand, card)
	}

	event := entity.LogEntry{
		Text: fmt.Sprintf("%s passed to %s.", sender.Name, receiver.Name),
		Type: entity.LogAction,
	}
	next.AppendLog(event)

	if winner := FindWinner(next.Players); winner != nil {
		next.Status = entity.StatusFinished
		next.WinnerID = winner.ID
		next.AppendLog(entity.LogEntry{
			Text: winner.Name + " WINS!",
			Type: entity.LogWin,
		})

		return next, event
	}

	next.TurnIndex = receiverSeat

	return next, event
}

// FindWinner returns the first seat, in turn order, holding five or more of one kind.
// Two seats completing on the same pass resolve to the lower seat index.
func FindWinner(players []*entity.Player) *entity.Player {
	for _, player := range players {
		if player.HasFiveOfAKind() {
			return player
		}
	}
	return nil
}

func takeCard(player *entity.Player, index int) (entity.Card, bool) {
	if len(player.Hand) == 0 {
		return entity.Card{}, false
	}

	if index < 0 || index >= len(player.Hand) {
		index = len(player.Hand) - 1
	}

	card := player.Hand[index]
	player.Hand = append(player.Hand[:index], player.Hand[index+1:]...)

	return card, true
}
