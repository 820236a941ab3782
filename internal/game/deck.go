package game

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
)

// GenerateDeck builds five cards of each of the first numPlayers kinds and shuffles them.
// The caller is responsible for passing 4 <= numPlayers <= 6.
func GenerateDeck(numPlayers int, rng *rand.Rand) []entity.Card {
	kinds := entity.FruitOrder[:numPlayers]

	deck := make([]entity.Card, 0, numPlayers*entity.CardsPerSeat)
	for _, kind := range kinds {
		for i := 0; i < entity.CardsPerSeat; i++ {
			deck = append(deck, entity.Card{
				Type: kind,
				ID:   fmt.Sprintf("%s-%d-%s", kind, i, uuid.NewString()[:8]),
			})
		}
	}

	shuffle(deck, rng)

	return deck
}

// shuffle is Fisher-Yates from the end: each position swaps with a uniform index at or before it.
func shuffle(deck []entity.Card, rng *rand.Rand) {
	intn := rand.Intn //nolint: gosec // card order does not need crypto randomness
	if rng != nil {
		intn = rng.Intn
	}

	for i := len(deck) - 1; i > 0; i-- {
		j := intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}
