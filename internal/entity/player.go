package entity

import "strings"

const BotIDPrefix = "BOT-"

type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Hand  []Card `json:"hand"`
	IsBot bool   `json:"isBot"`
}

func NewHumanPlayer(id, name string) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Hand: []Card{},
	}
}

func NewBotPlayer(id, name string) *Player {
	if !strings.HasPrefix(id, BotIDPrefix) {
		id = BotIDPrefix + id
	}

	return &Player{
		ID:    id,
		Name:  name,
		Hand:  []Card{},
		IsBot: true,
	}
}

// CountKinds returns how many cards of each kind the hand holds.
func (that *Player) CountKinds() map[FruitKind]int {
	counts := make(map[FruitKind]int, len(FruitOrder))
	for _, card := range that.Hand {
		counts[card.Type]++
	}
	return counts
}

// HasFiveOfAKind reports whether any kind in the hand reached the winning count.
func (that *Player) HasFiveOfAKind() bool {
	for _, count := range that.CountKinds() {
		if count >= WinningCount {
			return true
		}
	}
	return false
}

func (that *Player) Clone() *Player {
	hand := make([]Card, len(that.Hand))
	copy(hand, that.Hand)

	return &Player{
		ID:    that.ID,
		Name:  that.Name,
		Hand:  hand,
		IsBot: that.IsBot,
	}
}
