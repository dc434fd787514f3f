package core

import "fmt"

type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

var Suits = []Suit{ Hearts, Diamonds, Clubs, Spades }

type Rank string

var Ranks = []Rank{ "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K" }

const deckSize = 52

// Card is a plain value, two cards with the same suit and rank are the same card.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"value"`
}

func (c Card) String() string {
	return fmt.Sprintf("%s%c", c.Rank, c.Suit[0])
}

func copyCards(cards []Card) []Card {
	if cards == nil {
		return []Card{}
	}
	return append(make([]Card, 0, len(cards)), cards...)
}
