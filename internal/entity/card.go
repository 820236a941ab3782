package entity

// FruitKind is the category printed on a card. Holding five of one kind wins.
type FruitKind string

const (
	Mango  FruitKind = "MANGO"
	Apple  FruitKind = "APPLE"
	Orange FruitKind = "ORANGE"
	Banana FruitKind = "BANANA"
	Lemon  FruitKind = "LEMON"
	Berry  FruitKind = "BERRY"
)

// FruitOrder is the fixed enumeration used to pick the kinds in play.
var FruitOrder = []FruitKind{Mango, Apple, Orange, Banana, Lemon, Berry}

func (that FruitKind) IsValid() bool {
	for _, kind := range FruitOrder {
		if kind == that {
			return true
		}
	}
	return false
}

type Card struct {
	Type FruitKind `json:"type"`
	ID   string    `json:"id"`
}
