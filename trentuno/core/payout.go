package core

import (
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
)

type PlayerResult struct {
	Name  string `json:"name"`
	Hand  []Card `json:"hand"`
	Score int    `json:"score"`
	Coins int    `json:"coins"`
}

type FinalWinner struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Coins int    `json:"coins"`
}

// RoundEnd is handed back to the caller so it can be broadcast as is.
type RoundEnd struct {
	Reason       EndReason                `json:"reason"`
	RoundNumber  int                      `json:"roundNumber"`
	Players      map[string]*PlayerResult `json:"players"`
	Winners      []string                 `json:"winners"`
	CoinsAwarded int                      `json:"coinsAwarded"`
	PotRemaining int                      `json:"potRemaining"`
	GameOver     bool                     `json:"gameOver"`
	FinalWinners []FinalWinner            `json:"finalWinners,omitempty"`
}

/*

结算：
31直接宣告的人独赢2个币；敲门结束时分数最高的所有人各赢1个币（平局都算赢）。
奖池不够付的时候先把奖池补到刚好够付，保证赢家一定拿全额。
付完后奖池<=0则整场结束，币最多的人（可并列）为最终赢家。

*/
func (g *Game) endRound(reason EndReason) *RoundEnd {
	r := g.round
	r.phase = PhaseRoundEnded
	for _, p := range g.players {
		p.hasDrawn = false
	}

	var winners []string
	payout := payoutKnock
	if reason == Reason31Declared {
		winners = []string{ r.winner31 }
		payout = payout31
	} else {
		winners = g.maxScorePlayers()
	}

	coinsNeeded := len(winners) * payout
	if g.pot < coinsNeeded {
		log.L.Info("pot topped up", zap.Int("pot", g.pot), zap.Int("needed", coinsNeeded))
		g.pot = coinsNeeded
	}
	for _, id := range winners {
		g.pot -= payout
		g.players[id].winCoins(payout)
	}

	end := &RoundEnd{
		Reason:       reason,
		RoundNumber:  r.number,
		Players:      g.playerResults(),
		Winners:      winners,
		CoinsAwarded: payout,
		PotRemaining: g.pot,
	}
	if g.pot <= 0 {
		g.finishGame()
		end.GameOver = true
		end.FinalWinners = append([]FinalWinner(nil), g.finalWinners...)
	}
	log.L.Info("round end", zap.String("reason", string(reason)), zap.Int("round", r.number), zap.Strings("winners", winners), zap.Int("pot", g.pot), zap.Bool("game over", end.GameOver))
	return end
}

// abort closes the game when too few players are left to go on, nobody is paid.
func (g *Game) abort() *RoundEnd {
	number := g.roundNumber
	if g.round != nil {
		g.round.phase = PhaseRoundEnded
	}
	for _, p := range g.players {
		p.hasDrawn = false
	}
	g.finishGame()
	log.L.Info("game aborted", zap.Int("round", number), zap.Int("remain", len(g.playerOrder)))
	return &RoundEnd{
		Reason:       ReasonAborted,
		RoundNumber:  number,
		Players:      g.playerResults(),
		Winners:      []string{},
		PotRemaining: g.pot,
		GameOver:     true,
		FinalWinners: g.finalWinners,
	}
}

func (g *Game) finishGame() {
	g.gameOver = true
	g.finalWinners = g.maxCoinPlayers()
}

func (g *Game) maxScorePlayers() []string {
	best := -1
	var result []string
	for _, id := range g.playerOrder {
		s := g.players[id].score
		if s > best {
			best = s
			result = []string{ id }
		} else if s == best {
			result = append(result, id)
		}
	}
	return result
}

func (g *Game) maxCoinPlayers() []FinalWinner {
	best := -1
	var result []FinalWinner
	for _, id := range g.playerOrder {
		p := g.players[id]
		if p.coins > best {
			best = p.coins
			result = result[:0]
		}
		if p.coins == best {
			result = append(result, FinalWinner{ ID: id, Name: p.name, Coins: p.coins })
		}
	}
	return result
}

func (g *Game) playerResults() map[string]*PlayerResult {
	result := make(map[string]*PlayerResult, len(g.playerOrder))
	for _, id := range g.playerOrder {
		p := g.players[id]
		result[id] = &PlayerResult{ Name: p.name, Hand: p.Hand(), Score: p.score, Coins: p.coins }
	}
	return result
}
