package core

import (
	"math/rand"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/util"
)

type sentMsg struct {
	msgType int
	body []byte
}

type fakeMsgSender struct {
	lock sync.Mutex
	msgs map[string][]sentMsg
}

func newFakeMsgSender() *fakeMsgSender {
	return &fakeMsgSender{ msgs: map[string][]sentMsg{} }
}

func (s *fakeMsgSender) Send(id string, msgType int, mID int64, msg []byte) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.msgs[id] = append(s.msgs[id], sentMsg{ msgType: msgType, body: msg })
}

// last parses the newest msg of msgType sent to id
func (s *fakeMsgSender) last(t *testing.T, id string, msgType int, result interface{}) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	ms := s.msgs[id]
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].msgType == msgType {
			require.NoError(t, util.ParseJsonFromBytes(ms[i].body, result))
			return true
		}
	}
	return false
}

func (s *fakeMsgSender) count(id string, msgType int) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	n := 0
	for _, m := range s.msgs[id] {
		if m.msgType == msgType {
			n++
		}
	}
	return n
}

type fakeObserver struct {
	lock sync.Mutex
	ends []*RoundEnd
}

func (o *fakeObserver) OnRoundEnd(roomCode string, end *RoundEnd) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.ends = append(o.ends, end)
}

func (o *fakeObserver) count() int {
	o.lock.Lock()
	defer o.lock.Unlock()
	return len(o.ends)
}

type fakeUser struct { id, name string }

func (u *fakeUser) ID() string { return u.id }

func (u *fakeUser) Name() string { return u.name }

// 玩家id为"0".."n-1"，座位顺序同id
func newStartedGame(t *testing.T, n int, seed int64) *Game {
	g := NewGame(PotLevels[1], rand.New(rand.NewSource(seed)))
	for i := 0; i < n; i++ {
		id := strconv.Itoa(i)
		require.NoError(t, g.AddPlayer(id, "p" + id))
	}
	require.NoError(t, g.StartGame())
	return g
}

func (g *Game) current() string {
	return g.playerOrder[g.round.current]
}

// 当前玩家摸一张牌堆的牌再把它打掉，手牌不变
func (g *Game) passTurn(t *testing.T) *RoundEnd {
	id := g.current()
	_, err := g.DrawCard(id, SourceDeck)
	require.NoError(t, err)
	r, err := g.DiscardCard(id, handSize)
	require.NoError(t, err)
	return r.RoundEnd
}

func cardTotal(g *Game) int {
	n := g.round.deck.Len() + len(g.round.discard)
	for _, p := range g.players {
		n += len(p.hand)
	}
	return n
}

func checkInvariants(t *testing.T, g *Game) {
	if g.round == nil {
		return
	}
	assert.Equal(t, deckSize, cardTotal(g))
	assert.True(t, g.pot >= 0)
	for id, p := range g.players {
		expected := g.round.active() && g.current() == id && g.round.phase == PhaseAwaitingDiscard
		assert.Equal(t, expected, p.hasDrawn, "hasDrawn of %v", id)
		assert.Equal(t, HandScore(p.hand), p.score)
	}
	if g.round.active() {
		assert.True(t, g.round.current >= 0 && g.round.current < len(g.playerOrder))
	}
}

func card(rank Rank, suit Suit) Card {
	return Card{ Suit: suit, Rank: rank }
}
