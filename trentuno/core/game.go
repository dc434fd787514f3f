package core

import (
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/common/g-error"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
)

// NewGame builds an empty room game, rnd nil means crypto backed shuffling.
func NewGame(level PotLevel, rnd RandSource) *Game {
	if level.PerPlayer < 1 {
		level.PerPlayer = 1
	}
	return &Game{
		level:   level,
		rnd:     rnd,
		players: map[string]*Player{},
	}
}

/*

一个房间的整场游戏：玩家、奖池、庄家轮转以及当前这一局

所有方法都是同步的，由外层（Table）保证串行调用。失败时不修改任何状态。

*/
type Game struct {
	level PotLevel
	rnd   RandSource

	players map[string]*Player
	// 开局后只会因为玩家离开而变化
	playerOrder []string

	started     bool
	dealerIndex int
	pot         int
	roundNumber int
	round       *round

	gameOver     bool
	finalWinners []FinalWinner
}

type DrawResult struct {
	Source   DrawSource `json:"source"`
	Card     Card       `json:"card"`
	Recycled bool       `json:"recycled"`
}

type DiscardResult struct {
	Card     Card      `json:"card"`
	RoundEnd *RoundEnd `json:"roundEnd,omitempty"`
}

func (g *Game) Started() bool { return g.started }

func (g *Game) GameOver() bool { return g.gameOver }

func (g *Game) PlayerCount() int { return len(g.playerOrder) }

func (g *Game) Player(id string) *Player { return g.players[id] }

func (g *Game) RoundActive() bool { return g.round.active() }

func (g *Game) AddPlayer(id string, name string) error {
	if len(g.playerOrder) >= MaxPlayers {
		return g_error.ErrRoomFull
	}
	if g.started {
		return g_error.ErrGameStarted
	}
	if _, ok := g.players[id]; ok {
		return g_error.ErrPlayerExists
	}
	g.players[id] = NewPlayer(id, name)
	g.playerOrder = append(g.playerOrder, id)
	log.L.Debug("player added", zap.String("uid", id), zap.String("name", name), zap.Int("count", len(g.playerOrder)))
	return nil
}

/*

移除玩家（离开或掉线）

局中移除时：手牌压到弃牌堆底部保证牌数守恒；当前出牌指针保持指向同一个人，
如果走的正是当前玩家则指向他的下家；敲门后还剩的回合数扣掉他没打的那一回合。
人数不足时本局作废，整场结束。

*/
func (g *Game) RemovePlayer(id string) (*RoundEnd, error) {
	p, ok := g.players[id]
	if !ok {
		return nil, g_error.ErrPlayerNotFound
	}
	idx := g.indexOf(id)
	n := len(g.playerOrder)

	r := g.round
	roundActive := r.active()
	lostPendingTurn := false
	if roundActive {
		r.discard = append(p.Hand(), r.discard...)
		p.setHand([]Card{})
		off := (idx - r.current + n) % n
		lostPendingTurn = r.knocker != "" && off < r.knockTurnsRemaining
		if idx == r.current {
			r.phase = PhaseAwaitingDraw
		} else if idx < r.current {
			r.current--
		}
	}

	g.playerOrder = append(g.playerOrder[:idx:idx], g.playerOrder[idx + 1:]...)
	delete(g.players, id)
	// 庄家走了就把庄位退回上家，下一局照常轮到他的下家
	if left := len(g.playerOrder); left == 0 {
		g.dealerIndex = 0
	} else if idx == g.dealerIndex {
		g.dealerIndex = (idx - 1 + left) % left
	} else if idx < g.dealerIndex {
		g.dealerIndex--
	}
	log.L.Info("player removed", zap.String("uid", id), zap.Bool("round active", roundActive), zap.Int("remain", len(g.playerOrder)))

	if !g.started || g.gameOver {
		return nil, nil
	}
	if len(g.playerOrder) < MinPlayers {
		return g.abort(), nil
	}
	if !roundActive {
		return nil, nil
	}

	if r.current >= len(g.playerOrder) {
		r.current = 0
	}
	if r.knockTurnsRemaining > len(g.playerOrder) {
		r.knockTurnsRemaining = len(g.playerOrder)
	}
	if lostPendingTurn {
		r.knockTurnsRemaining--
		if r.knockTurnsRemaining <= 0 {
			return g.endRound(ReasonKnockComplete), nil
		}
	}
	return nil, nil
}

// StartGame freezes the seating order and deals round 1.
func (g *Game) StartGame() error {
	if g.started {
		return g_error.ErrGameStarted
	}
	if len(g.playerOrder) < MinPlayers {
		return g_error.ErrNotEnoughPlayers
	}
	g.started = true
	g.pot = g.level.PerPlayer * len(g.playerOrder)
	g.dealerIndex = 0
	log.L.Info("game started", zap.Int("players", len(g.playerOrder)), zap.Int("pot", g.pot))
	return g.StartRound()
}

func (g *Game) StartRound() error {
	switch {
	case !g.started:
		return g_error.ErrGameNotStarted
	case g.gameOver:
		return g_error.ErrGameOver
	case g.round.active():
		return g_error.ErrRoundActive
	case g.pot <= 0:
		return g_error.ErrPotEmpty
	case len(g.playerOrder) < MinPlayers:
		return g_error.ErrNotEnoughPlayers
	}

	g.roundNumber++
	n := len(g.playerOrder)
	if g.roundNumber > 1 {
		g.dealerIndex = (g.dealerIndex + 1) % n
	}

	r := newRound(g.roundNumber, g.rnd)
	r.deck.Shuffle()
	for _, id := range g.playerOrder {
		p := g.players[id]
		p.setHand([]Card{})
		p.hasDrawn = false
	}
	// 从庄家下家开始一张一张发
	for i := 0; i < handSize; i++ {
		for k := 1; k <= n; k++ {
			g.players[g.playerOrder[(g.dealerIndex + k) % n]].gotCards(r.deck.Draw(1))
		}
	}
	r.discard = r.deck.Draw(1)
	r.current = (g.dealerIndex + 1) % n
	r.phase = PhaseAwaitingDraw
	g.round = r

	log.L.Info("round started", zap.Int("round", g.roundNumber), zap.String("dealer", g.playerOrder[g.dealerIndex]), zap.String("first", g.playerOrder[r.current]))
	return nil
}

func (g *Game) DrawCard(id string, source DrawSource) (DrawResult, error) {
	p, err := g.turnHolder(id)
	if err != nil {
		return DrawResult{}, err
	}
	if g.round.phase != PhaseAwaitingDraw {
		return DrawResult{}, g_error.ErrAlreadyDrawn
	}
	c, recycled, err := g.round.drawFrom(source)
	if err != nil {
		log.L.Debug("draw rejected", zap.String("uid", id), zap.String("source", string(source)), zap.Error(err))
		return DrawResult{}, err
	}
	p.gotCards([]Card{ c })
	p.hasDrawn = true
	g.round.phase = PhaseAwaitingDiscard
	log.L.Debug("player draw", zap.String("uid", id), zap.String("source", string(source)), zap.Int("score", p.score))
	return DrawResult{ Source: source, Card: c, Recycled: recycled }, nil
}

func (g *Game) DiscardCard(id string, index int) (DiscardResult, error) {
	p, err := g.turnHolder(id)
	if err != nil {
		return DiscardResult{}, err
	}
	if g.round.phase != PhaseAwaitingDiscard {
		return DiscardResult{}, g_error.ErrMustDraw
	}
	if index < 0 || index >= len(p.hand) {
		return DiscardResult{}, g_error.ErrInvalidCardIndex
	}
	c := p.takeCard(index)
	g.round.pushDiscard(c)
	p.hasDrawn = false
	log.L.Debug("player discard", zap.String("uid", id), zap.String("card", c.String()), zap.Int("score", p.score))
	return DiscardResult{ Card: c, RoundEnd: g.advanceTurn() }, nil
}

// Knock gives every other player one more turn, then the round is scored.
func (g *Game) Knock(id string) (*RoundEnd, error) {
	if _, err := g.turnHolder(id); err != nil {
		return nil, err
	}
	if g.round.phase != PhaseAwaitingDraw {
		return nil, g_error.ErrMustNotDraw
	}
	if g.round.knocker != "" {
		return nil, g_error.ErrAlreadyKnocked
	}
	g.round.knocker = id
	g.round.knockerName = g.players[id].name
	g.round.knockTurnsRemaining = len(g.playerOrder)
	log.L.Info("player knocked", zap.String("uid", id), zap.Int("round", g.roundNumber))
	return g.advanceTurn(), nil
}

func (g *Game) Declare31(id string) (*RoundEnd, error) {
	p, err := g.turnHolder(id)
	if err != nil {
		return nil, err
	}
	if g.round.phase != PhaseAwaitingDraw {
		return nil, g_error.ErrMustNotDraw
	}
	if p.score != MaxScore {
		return nil, g_error.ErrNot31
	}
	g.round.winner31 = id
	log.L.Info("player declared 31", zap.String("uid", id), zap.Int("round", g.roundNumber))
	return g.endRound(Reason31Declared), nil
}

func (g *Game) turnHolder(id string) (*Player, error) {
	if !g.round.active() {
		return nil, g_error.ErrRoundNotActive
	}
	p, ok := g.players[id]
	if !ok {
		return nil, g_error.ErrPlayerNotFound
	}
	if g.playerOrder[g.round.current] != id {
		return nil, g_error.ErrNotYourTurn
	}
	return p, nil
}

// advanceTurn moves to the next seat and counts down a pending knock.
func (g *Game) advanceTurn() *RoundEnd {
	r := g.round
	r.current = (r.current + 1) % len(g.playerOrder)
	r.phase = PhaseAwaitingDraw
	if r.knocker == "" {
		return nil
	}
	r.knockTurnsRemaining--
	if r.knockTurnsRemaining <= 0 {
		return g.endRound(ReasonKnockComplete)
	}
	return nil
}

func (g *Game) indexOf(id string) int {
	for i, pid := range g.playerOrder {
		if pid == id {
			return i
		}
	}
	return -1
}
