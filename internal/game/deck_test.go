package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/rocketscienceinc/fruitseller-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateDeck(t *testing.T) {
	for _, numPlayers := range []int{4, 5, 6} {
		t.Run(fmt.Sprintf("Composition for %d seats", numPlayers), func(t *testing.T) {
			// When: a deck is generated for numPlayers seats
			deck := GenerateDeck(numPlayers, rand.New(rand.NewSource(int64(numPlayers))))

			// Then: it holds exactly 5 cards of each of the first numPlayers kinds
			require.Len(t, deck, entity.CardsPerSeat*numPlayers)

			counts := make(map[entity.FruitKind]int)
			ids := make(map[string]struct{})
			for _, card := range deck {
				counts[card.Type]++
				ids[card.ID] = struct{}{}
			}

			assert.Len(t, counts, numPlayers)
			for _, kind := range entity.FruitOrder[:numPlayers] {
				assert.Equal(t, entity.CardsPerSeat, counts[kind], "kind %s", kind)
			}

			// Then: every card has a distinct id
			assert.Len(t, ids, len(deck))
		})
	}

	t.Run("Same seed gives the same order", func(t *testing.T) {
		// Given: two generators with the same seed
		first := GenerateDeck(5, rand.New(rand.NewSource(42)))
		second := GenerateDeck(5, rand.New(rand.NewSource(42)))

		// Then: the kinds come out in the same order
		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Type, second[i].Type)
		}
	})

	t.Run("Nil source still shuffles a full deck", func(t *testing.T) {
		deck := GenerateDeck(4, nil)

		assert.Len(t, deck, 20)
	})
}

func TestShuffle(t *testing.T) {
	// Given: a sorted deck of 4 kinds
	deck := make([]entity.Card, 0, 20)
	for _, kind := range entity.FruitOrder[:4] {
		for i := 0; i < entity.CardsPerSeat; i++ {
			deck = append(deck, entity.Card{Type: kind})
		}
	}

	// When: it is shuffled many times
	// Then: the first position sees every kind, so no position is pinned
	seen := make(map[entity.FruitKind]bool)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		shuffled := make([]entity.Card, len(deck))
		copy(shuffled, deck)
		shuffle(shuffled, rng)
		seen[shuffled[0].Type] = true
	}

	assert.Len(t, seen, 4)
}
