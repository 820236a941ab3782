package game

import "github.com/rocketscienceinc/fruitseller-backend/internal/entity"

// ChooseDiscard picks which card a bot passes on.
//
// The bot collects the kind it holds most of (the first one seen wins a tie) and
// sheds the rarest other kind first, again preferring the first one seen in the hand.
// A hand of only the target kind passes index 0.
func ChooseDiscard(hand []entity.Card) int {
	counts := make(map[entity.FruitKind]int, len(entity.FruitOrder))
	order := make([]entity.FruitKind, 0, len(entity.FruitOrder))
	for _, card := range hand {
		if counts[card.Type] == 0 {
			order = append(order, card.Type)
		}
		counts[card.Type]++
	}

	var target entity.FruitKind
	maxCount := -1
	for _, kind := range order {
		if counts[kind] > maxCount {
			maxCount = counts[kind]
			target = kind
		}
	}

	chosen := -1
	minCount := 0
	for i, card := range hand {
		if card.Type == target {
			continue
		}
		if chosen == -1 || counts[card.Type] < minCount {
			chosen = i
			minCount = counts[card.Type]
		}
	}

	if chosen == -1 {
		return 0
	}

	return chosen
}
