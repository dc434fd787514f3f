package core

import (
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/common/g-error"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
)

type Phase int

const (
	// 还没有开过局
	PhaseIdle Phase = iota
	PhaseDealing
	PhaseAwaitingDraw
	PhaseAwaitingDiscard
	PhaseRoundEnded
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDealing:
		return "dealing"
	case PhaseAwaitingDraw:
		return "awaiting-draw"
	case PhaseAwaitingDiscard:
		return "awaiting-discard"
	case PhaseRoundEnded:
		return "ended"
	}
	return "unknown"
}

type DrawSource string

const (
	SourceDeck    DrawSource = "deck"
	SourceDiscard DrawSource = "discard"
)

type EndReason string

const (
	ReasonKnockComplete EndReason = "knock-complete"
	Reason31Declared    EndReason = "31-declared"
	// 人数不够，本局作废
	ReasonAborted EndReason = "aborted"
)

func newRound(number int, rnd RandSource) *round {
	return &round{
		number: number,
		phase:  PhaseDealing,
		deck:   NewDeck(rnd),
		discard: []Card{},
	}
}

/*

一局（一次发牌到结算）的临时状态，下一局开始时整体被替换

*/
type round struct {
	number int
	phase  Phase
	deck   *Deck
	// 最后一张是顶
	discard []Card
	// playerOrder的下标
	current int
	// 敲门的人，一局只能有一个
	knocker             string
	knockerName         string
	knockTurnsRemaining int
	winner31            string
}

func (r *round) active() bool {
	return r != nil && (r.phase == PhaseAwaitingDraw || r.phase == PhaseAwaitingDiscard)
}

func (r *round) topDiscard() (Card, bool) {
	if len(r.discard) == 0 {
		return Card{}, false
	}
	return r.discard[len(r.discard) - 1], true
}

func (r *round) pushDiscard(c Card) {
	r.discard = append(r.discard, c)
}

// recycle shuffles every discard except the top one back into the deck.
func (r *round) recycle() {
	if len(r.discard) <= 1 {
		return
	}
	top := r.discard[len(r.discard) - 1]
	r.deck.Refill(r.discard[:len(r.discard) - 1])
	r.discard = []Card{ top }
	log.L.Debug("discard pile recycled", zap.Int("round", r.number), zap.Int("deck len", r.deck.Len()))
}

// drawFrom leaves the round untouched when it fails.
func (r *round) drawFrom(source DrawSource) (c Card, recycled bool, err error) {
	switch source {
	case SourceDiscard:
		top, ok := r.topDiscard()
		if !ok {
			return Card{}, false, g_error.ErrDiscardEmpty
		}
		r.discard = r.discard[:len(r.discard) - 1]
		return top, false, nil

	case SourceDeck:
		if r.deck.Len() == 0 {
			if len(r.discard) <= 1 {
				return Card{}, false, g_error.ErrDeckEmpty
			}
			r.recycle()
			recycled = true
		}
		cs := r.deck.Draw(1)
		if len(cs) == 0 {
			return Card{}, recycled, g_error.ErrDeckEmpty
		}
		return cs[0], recycled, nil
	}
	return Card{}, false, g_error.ErrInvalidSource
}
