package core

func NewPlayer(id string, name string) *Player {
	return &Player{ id: id, name: name, hand: []Card{} }
}

type Player struct {
	id   string
	name string
	hand []Card
	// 跨局累计
	coins int
	score int
	// 摸牌后、弃牌前为true
	hasDrawn bool
}

func (p *Player) ID() string { return p.id }

func (p *Player) Name() string { return p.name }

func (p *Player) Coins() int { return p.coins }

func (p *Player) Score() int { return p.score }

func (p *Player) HasDrawn() bool { return p.hasDrawn }

func (p *Player) Hand() []Card { return copyCards(p.hand) }

// every hand mutation goes through setHand so the score never goes stale
func (p *Player) setHand(hand []Card) {
	p.hand = hand
	p.score = HandScore(p.hand)
}

func (p *Player) gotCards(cs []Card) {
	p.setHand(append(p.hand, cs...))
}

func (p *Player) takeCard(index int) Card {
	c := p.hand[index]
	rest := make([]Card, 0, len(p.hand) - 1)
	rest = append(rest, p.hand[:index]...)
	rest = append(rest, p.hand[index + 1:]...)
	p.setHand(rest)
	return c
}

func (p *Player) winCoins(amount int) {
	p.coins += amount
}
