package core

import "strconv"

// 31 is A+K+Q of the same suit
const MaxScore = 31

func CardValue(c Card) int {
	switch c.Rank {
	case "A":
		return 11
	case "K", "Q", "J":
		return 10
	}
	v, err := strconv.Atoi(string(c.Rank))
	if err != nil {
		return 0
	}
	return v
}

// HandScore is the best single suit total in the hand.
func HandScore(hand []Card) int {
	sums := make(map[Suit]int, len(Suits))
	best := 0
	for _, c := range hand {
		sums[c.Suit] += CardValue(c)
		if sums[c.Suit] > best {
			best = sums[c.Suit]
		}
	}
	return best
}
