package core

type PlayerState struct {
	Name      string `json:"name"`
	Hand      []Card `json:"hand"`
	CardCount int    `json:"cardCount"`
	Score     int    `json:"score"`
	Coins     int    `json:"coins"`
	HasDrawn  bool   `json:"hasDrawn"`
}

// GameState carries every hand, hiding opponents' cards is up to the caller.
type GameState struct {
	Started               bool                    `json:"started"`
	RoundActive           bool                    `json:"roundActive"`
	Phase                 string                  `json:"phase"`
	RoundNumber           int                     `json:"roundNumber"`
	PlayerOrder           []string                `json:"playerOrder"`
	Dealer                string                  `json:"dealer"`
	CurrentPlayer         string                  `json:"currentPlayer"`
	CurrentPlayerHasDrawn bool                    `json:"currentPlayerHasDrawn"`
	TopDiscard            *Card                   `json:"topDiscard"`
	DiscardCount          int                     `json:"discardCount"`
	DeckCount             int                     `json:"deckCount"`
	Pot                   int                     `json:"pot"`
	Knocker               string                  `json:"knocker"`
	KnockerName           string                  `json:"knockerName"`
	KnockTurnsRemaining   int                     `json:"knockTurnsRemaining"`
	GameOver              bool                    `json:"gameOver"`
	FinalWinners          []FinalWinner           `json:"finalWinners,omitempty"`
	Players               map[string]*PlayerState `json:"players"`
}

func (g *Game) GetGameState() *GameState {
	s := &GameState{
		Started:      g.started,
		RoundActive:  g.round.active(),
		Phase:        PhaseIdle.String(),
		RoundNumber:  g.roundNumber,
		PlayerOrder:  append([]string{}, g.playerOrder...),
		Pot:          g.pot,
		GameOver:     g.gameOver,
		FinalWinners: append([]FinalWinner(nil), g.finalWinners...),
		Players:      make(map[string]*PlayerState, len(g.players)),
	}
	if g.started && len(g.playerOrder) > 0 {
		s.Dealer = g.playerOrder[g.dealerIndex]
	}

	if r := g.round; r != nil {
		s.Phase = r.phase.String()
		s.DiscardCount = len(r.discard)
		s.DeckCount = r.deck.Len()
		if top, ok := r.topDiscard(); ok {
			s.TopDiscard = &top
		}
		if r.active() {
			s.CurrentPlayer = g.playerOrder[r.current]
			s.CurrentPlayerHasDrawn = r.phase == PhaseAwaitingDiscard
		}
		s.Knocker = r.knocker
		s.KnockerName = r.knockerName
		s.KnockTurnsRemaining = r.knockTurnsRemaining
	}

	for id, p := range g.players {
		s.Players[id] = &PlayerState{
			Name:      p.name,
			Hand:      p.Hand(),
			CardCount: len(p.hand),
			Score:     p.score,
			Coins:     p.coins,
			HasDrawn:  p.hasDrawn,
		}
	}
	return s
}
