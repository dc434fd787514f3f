package core

import (
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/util"
)

// RandSource is satisfied by *math/rand.Rand, tests inject a seeded one.
type RandSource interface {
	Intn(n int) int
}

func NewDeck(rnd RandSource) *Deck {
	if rnd == nil {
		rnd = util.CryptoSource{}
	}
	d := &Deck{ rnd: rnd }
	d.Initialize()
	return d
}

// 牌堆，最后一张是顶
type Deck struct {
	cards []Card
	rnd   RandSource
}

// Initialize resets to the 52 cards, suit by suit, A to K.
func (d *Deck) Initialize() {
	d.cards = make([]Card, 0, deckSize)
	for _, s := range Suits {
		for _, r := range Ranks {
			d.cards = append(d.cards, Card{ Suit: s, Rank: r })
		}
	}
}

// Shuffle is Fisher-Yates, walking down from the top.
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rnd.Intn(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw takes up to n cards from the top, fewer when the deck runs short.
func (d *Deck) Draw(n int) []Card {
	if n > len(d.cards) {
		log.L.Debug("short draw", zap.Int("want", n), zap.Int("have", len(d.cards)))
		n = len(d.cards)
	}
	if n <= 0 {
		return []Card{}
	}
	result := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		last := len(d.cards) - 1
		result = append(result, d.cards[last])
		d.cards = d.cards[:last]
	}
	return result
}

// Refill replaces the content with cards and shuffles them.
func (d *Deck) Refill(cards []Card) {
	d.cards = copyCards(cards)
	d.Shuffle()
}

func (d *Deck) Len() int {
	return len(d.cards)
}

func (d *Deck) Cards() []Card {
	return copyCards(d.cards)
}
