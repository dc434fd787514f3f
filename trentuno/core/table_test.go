package core

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/common/g-error"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/abstracts"
)

func newTestTable(t *testing.T) (*Table, *fakeMsgSender, *fakeObserver) {
	s := newFakeMsgSender()
	o := &fakeObserver{}
	table := NewTable("ABCDEF", PotLevels[1], rand.New(rand.NewSource(31)), s, o)
	require.NoError(t, table.Start())
	return table, s, o
}

func drawMsg(uID string, source DrawSource) abstracts.PlayerActionMsg {
	return abstracts.PlayerActionMsg{ UserID: uID, ActionType: abstracts.GameActionOfDraw, Source: string(source) }
}

func discardMsg(uID string, index int) abstracts.PlayerActionMsg {
	return abstracts.PlayerActionMsg{ UserID: uID, ActionType: abstracts.GameActionOfDiscard, CardIndex: index }
}

func TestTableStartStop(t *testing.T) {
	table, _, _ := newTestTable(t)
	assert.Equal(t, "ABCDEF", table.Code())
	assert.Equal(t, g_error.ErrTableAlreadyStarted, table.Start())
	require.NoError(t, table.Stop())
	assert.Equal(t, g_error.ErrTableStopped, table.Stop())

	assert.Equal(t, g_error.ErrTableStopped, table.Enter(1, &fakeUser{ id: "a", name: "a" }))
	assert.Equal(t, g_error.ErrTableStopped, table.StartGame("a"))
	assert.Equal(t, g_error.ErrTableStopped, table.Do(drawMsg("a", SourceDeck)))
	_, err := table.Leave("a")
	assert.Equal(t, g_error.ErrTableStopped, err)
	assert.Nil(t, table.GetScene("a"))
}

func TestTableEnterAndLeave(t *testing.T) {
	table, s, _ := newTestTable(t)
	defer table.Stop()

	require.NoError(t, table.Enter(7, &fakeUser{ id: "a", name: "alice" }))
	require.NoError(t, table.Enter(8, &fakeUser{ id: "b", name: "bob" }))
	assert.Equal(t, g_error.ErrPlayerExists, table.Enter(9, &fakeUser{ id: "b", name: "bob" }))

	var joined abstracts.RoomJoinedResp
	require.True(t, s.last(t, "b", abstracts.MsgTypeRoomJoined, &joined))
	assert.Equal(t, "ABCDEF", joined.RoomCode)
	assert.Equal(t, "b", joined.You)
	assert.Len(t, joined.Players, 2)
	// 自己进来不会收到player joined
	assert.Equal(t, 0, s.count("b", abstracts.MsgTypePlayerJoined))
	assert.Equal(t, 1, s.count("a", abstracts.MsgTypePlayerJoined))

	remain, err := table.Leave("a")
	require.NoError(t, err)
	assert.Equal(t, 1, remain)
	var left abstracts.MembershipNotice
	require.True(t, s.last(t, "b", abstracts.MsgTypePlayerLeft, &left))
	assert.Equal(t, "alice", left.Name)

	_, err = table.Leave("a")
	assert.Equal(t, g_error.ErrPlayerNotFound, err)

	remain, err = table.Leave("b")
	require.NoError(t, err)
	assert.Equal(t, 0, remain)
}

func TestTableScenesHideHands(t *testing.T) {
	table, s, _ := newTestTable(t)
	defer table.Stop()

	require.NoError(t, table.Enter(1, &fakeUser{ id: "a", name: "alice" }))
	assert.Equal(t, g_error.ErrNotEnoughPlayers, table.StartGame("a"))
	require.NoError(t, table.Enter(2, &fakeUser{ id: "b", name: "bob" }))
	assert.Equal(t, g_error.ErrPlayerNotFound, table.StartGame("x"))
	require.NoError(t, table.StartGame("b"))

	for _, id := range []string{ "a", "b" } {
		var scene GameState
		require.True(t, s.last(t, id, abstracts.MsgTypeGameStarted, &scene))
		for pid, p := range scene.Players {
			if pid == id {
				assert.Len(t, p.Hand, handSize)
			} else {
				assert.Empty(t, p.Hand)
				assert.Equal(t, handSize, p.CardCount)
			}
		}
	}

	scene := table.GetScene("a")
	require.NotNil(t, scene)
	assert.Equal(t, "b", scene.CurrentPlayer)
	assert.Len(t, scene.Players["a"].Hand, handSize)
	assert.Nil(t, scene.Players["b"].Hand)
}

func TestTableActions(t *testing.T) {
	table, s, o := newTestTable(t)
	defer table.Stop()

	require.NoError(t, table.Enter(1, &fakeUser{ id: "a", name: "alice" }))
	require.NoError(t, table.Enter(2, &fakeUser{ id: "b", name: "bob" }))
	require.NoError(t, table.StartGame("a"))

	assert.Equal(t, g_error.ErrNotYourTurn, table.Do(drawMsg("a", SourceDeck)))
	assert.Equal(t, g_error.ErrInvalidAction, table.Do(abstracts.PlayerActionMsg{ UserID: "b", ActionType: abstracts.GameAction(42) }))
	assert.Equal(t, 0, s.count("a", abstracts.MsgTypePlayerAction))

	require.NoError(t, table.Do(abstracts.PlayerActionMsg{ UserID: "b", ActionType: abstracts.GameActionOfKnock }))
	var notice abstracts.PlayerActionNotice
	require.True(t, s.last(t, "a", abstracts.MsgTypePlayerAction, &notice))
	assert.Equal(t, "knock", notice.Action)
	assert.Equal(t, "bob", notice.PlayerName)

	require.NoError(t, table.Do(drawMsg("a", SourceDiscard)))
	require.True(t, s.last(t, "b", abstracts.MsgTypePlayerAction, &notice))
	assert.Equal(t, "draw-from-discard", notice.Action)
	// 弃牌堆的牌大家都看得见
	assert.NotNil(t, notice.DrawnCard)

	require.NoError(t, table.Do(discardMsg("a", 0)))
	assert.Equal(t, 1, o.count())
	var end RoundEnd
	for _, id := range []string{ "a", "b" } {
		require.True(t, s.last(t, id, abstracts.MsgTypeRoundEnd, &end))
		assert.Equal(t, ReasonKnockComplete, end.Reason)
		// 结算时所有手牌公开
		assert.Len(t, end.Players["a"].Hand, handSize)
		assert.Len(t, end.Players["b"].Hand, handSize)
	}

	assert.Equal(t, g_error.ErrRoundNotActive, table.Do(drawMsg("b", SourceDeck)))
	assert.Equal(t, g_error.ErrPlayerNotFound, table.NextRound("x"))
	require.NoError(t, table.NextRound("b"))
	assert.Equal(t, 1, s.count("a", abstracts.MsgTypeRoundStarted))
	var scene GameState
	require.True(t, s.last(t, "a", abstracts.MsgTypeRoundStarted, &scene))
	assert.Equal(t, 2, scene.RoundNumber)
	assert.Equal(t, "b", scene.Dealer)
	assert.Equal(t, "a", scene.CurrentPlayer)
	assert.Equal(t, g_error.ErrRoundActive, table.NextRound("a"))
}

// 同时来的多个摸牌请求只有一个能成功
func TestTableFirstCallerWins(t *testing.T) {
	table, s, _ := newTestTable(t)
	defer table.Stop()

	require.NoError(t, table.Enter(1, &fakeUser{ id: "a", name: "alice" }))
	require.NoError(t, table.Enter(2, &fakeUser{ id: "b", name: "bob" }))
	require.NoError(t, table.StartGame("a"))

	var ok, already int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			src := SourceDeck
			if i % 2 == 0 {
				src = SourceDiscard
			}
			switch err := table.Do(drawMsg("b", src)); err {
			case nil:
				atomic.AddInt32(&ok, 1)
			case g_error.ErrAlreadyDrawn:
				atomic.AddInt32(&already, 1)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(19), already)

	scene := table.GetScene("b")
	require.NotNil(t, scene)
	assert.Len(t, scene.Players["b"].Hand, handSize + 1)
	assert.Equal(t, deckSize, scene.DeckCount + scene.DiscardCount + scene.Players["a"].CardCount + scene.Players["b"].CardCount)

	// 摸牌堆的牌只有本人看得到
	var own, other abstracts.PlayerActionNotice
	require.True(t, s.last(t, "b", abstracts.MsgTypePlayerAction, &own))
	require.True(t, s.last(t, "a", abstracts.MsgTypePlayerAction, &other))
	if own.Action == "draw-from-deck" {
		assert.NotNil(t, own.DrawnCard)
		assert.Nil(t, other.DrawnCard)
	}
}

func TestTableLeaveAbortsGame(t *testing.T) {
	table, s, o := newTestTable(t)
	defer table.Stop()

	require.NoError(t, table.Enter(1, &fakeUser{ id: "a", name: "alice" }))
	require.NoError(t, table.Enter(2, &fakeUser{ id: "b", name: "bob" }))
	require.NoError(t, table.StartGame("a"))

	remain, err := table.Leave("b")
	require.NoError(t, err)
	assert.Equal(t, 1, remain)
	assert.Equal(t, 1, o.count())

	var end RoundEnd
	require.True(t, s.last(t, "a", abstracts.MsgTypeRoundEnd, &end))
	assert.Equal(t, ReasonAborted, end.Reason)
	assert.True(t, end.GameOver)
	require.Len(t, end.FinalWinners, 1)
	assert.Equal(t, "a", end.FinalWinners[0].ID)

	var scene GameState
	require.True(t, s.last(t, "a", abstracts.MsgTypeGameUpdate, &scene))
	assert.True(t, scene.GameOver)
	assert.Equal(t, g_error.ErrGameOver, table.NextRound("a"))
}
