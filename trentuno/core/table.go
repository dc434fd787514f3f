package core

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/common/g-error"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/metrics"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/abstracts"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/util"
)

type msgSender interface {
	Send(id string, msgType int, mID int64, msg []byte)
}

// roundObserver receives every finished round, after it has been broadcast.
type roundObserver interface {
	OnRoundEnd(roomCode string, end *RoundEnd)
}

func NewTable(code string, level PotLevel, rnd RandSource, msgSender msgSender, observer roundObserver) *Table {
	return &Table{
		code: code, game: NewGame(level, rnd),
		msgSender: msgSender, observer: observer,
		enterChan: make(chan enterMsg, 1),
		leaveChan: make(chan leaveMsg, 1),
		startChan: make(chan withErrMsg, 1),
		nextRoundChan: make(chan withErrMsg, 1),
		actionChan: make(chan actionMsg, 1),
		getSceneChan: make(chan getSceneMsg, 1),
		stopChan: make(chan struct{}),
	}
}

/*

一个房间一个Table，一个goroutine

所有请求都通过chan进入loop串行处理，处理完一个再处理下一个，
因此同一时刻只会有一个动作生效，先到先得。不同Table之间不共享任何可变状态。
每个被接受的请求处理完后由Table负责广播结果。

*/
type Table struct {
	code string
	game *Game
	msgSender msgSender
	observer roundObserver

	enterChan chan enterMsg
	leaveChan chan leaveMsg
	startChan chan withErrMsg
	nextRoundChan chan withErrMsg
	actionChan chan actionMsg
	getSceneChan chan getSceneMsg
	stopChan chan struct{}

	started uint32
	stopped uint32
}

type enterMsg struct {
	msgID int64
	user abstracts.User
	resultChan chan error
}

type leaveMsg struct {
	uID string
	resultChan chan leaveResult
}

type leaveResult struct {
	remain int
	err error
}

type withErrMsg struct {
	uID string
	resultChan chan error
}

type actionMsg struct {
	action abstracts.PlayerActionMsg
	resultChan chan error
}

type getSceneMsg struct {
	uID string
	resultChan chan *GameState
}

func (t *Table) Code() string { return t.code }

func (t *Table) loop() {
	log.L.Debug("table loop started", zap.String("room", t.code))
	for {
		select {
		case msg := <- t.enterChan:
			msg.resultChan <- t.doEnter(msg)
		case msg := <- t.leaveChan:
			remain, err := t.doLeave(msg.uID)
			msg.resultChan <- leaveResult{ remain: remain, err: err }
		case msg := <- t.startChan:
			msg.resultChan <- t.doStartGame(msg.uID)
		case msg := <- t.nextRoundChan:
			msg.resultChan <- t.doNextRound(msg.uID)
		case msg := <- t.actionChan:
			msg.resultChan <- t.doAction(msg.action)
		case msg := <- t.getSceneChan:
			msg.resultChan <- t.sceneFor(t.game.GetGameState(), msg.uID)
		case <- t.stopChan:
			log.L.Debug("table loop returned", zap.String("room", t.code))
			return
		}
	}
}

func (t *Table) doEnter(msg enterMsg) error {
	u := msg.user
	if err := t.game.AddPlayer(u.ID(), u.Name()); err != nil {
		return err
	}
	players := t.playersInfo()
	t.SendMsg(u.ID(), abstracts.MsgTypeRoomJoined, msg.msgID, abstracts.RoomJoinedResp{ RoomCode: t.code, You: u.ID(), Players: players })
	t.broadcastExcept(u.ID(), abstracts.MsgTypePlayerJoined, abstracts.MembershipNotice{ ID: u.ID(), Name: u.Name(), Players: players })
	log.L.Info("player entered room", zap.String("room", t.code), zap.String("uid", u.ID()), zap.String("name", u.Name()))
	return nil
}

func (t *Table) doLeave(uID string) (int, error) {
	p := t.game.Player(uID)
	if p == nil {
		return t.game.PlayerCount(), g_error.ErrPlayerNotFound
	}
	name := p.Name()
	end, err := t.game.RemovePlayer(uID)
	if err != nil {
		return t.game.PlayerCount(), err
	}
	remain := t.game.PlayerCount()
	if remain == 0 {
		return 0, nil
	}
	t.BroadcastMsg(abstracts.MsgTypePlayerLeft, newMsgID(), abstracts.MembershipNotice{ ID: uID, Name: name, Players: t.playersInfo() })
	t.afterRoundEnd(end)
	if t.game.Started() {
		t.broadcastScene(abstracts.MsgTypeGameUpdate)
	}
	return remain, nil
}

func (t *Table) doStartGame(uID string) error {
	if t.game.Player(uID) == nil {
		return g_error.ErrPlayerNotFound
	}
	if err := t.game.StartGame(); err != nil {
		return err
	}
	metrics.RoundsStarted.Inc()
	t.broadcastScene(abstracts.MsgTypeGameStarted)
	return nil
}

func (t *Table) doNextRound(uID string) error {
	if t.game.Player(uID) == nil {
		return g_error.ErrPlayerNotFound
	}
	if err := t.game.StartRound(); err != nil {
		return err
	}
	metrics.RoundsStarted.Inc()
	t.broadcastScene(abstracts.MsgTypeRoundStarted)
	return nil
}

/*

执行玩家动作，失败时不改变任何状态，只把错误返回给调用方

*/
func (t *Table) doAction(action abstracts.PlayerActionMsg) error {
	var (
		notice = abstracts.PlayerActionNotice{ PlayerID: action.UserID }
		private *abstracts.PlayerActionNotice
		end *RoundEnd
		err error
	)
	if p := t.game.Player(action.UserID); p != nil {
		notice.PlayerName = p.Name()
	}

	switch action.ActionType {
	case abstracts.GameActionOfDraw:
		var r DrawResult
		if r, err = t.game.DrawCard(action.UserID, DrawSource(action.Source)); err == nil {
			notice.Action = "draw-from-" + string(r.Source)
			notice.Recycled = r.Recycled
			if r.Source == SourceDiscard {
				notice.DrawnCard = toCardScene(r.Card)
			} else {
				tmp := notice
				tmp.DrawnCard = toCardScene(r.Card)
				private = &tmp
			}
		}
	case abstracts.GameActionOfDiscard:
		var r DiscardResult
		if r, err = t.game.DiscardCard(action.UserID, action.CardIndex); err == nil {
			notice.Action = "discard"
			notice.DiscardedCard = toCardScene(r.Card)
			end = r.RoundEnd
		}
	case abstracts.GameActionOfKnock:
		if end, err = t.game.Knock(action.UserID); err == nil {
			notice.Action = "knock"
		}
	case abstracts.GameActionOfDeclare31:
		if end, err = t.game.Declare31(action.UserID); err == nil {
			notice.Action = "declare-31"
		}
	default:
		err = g_error.ErrInvalidAction
	}

	if err != nil {
		metrics.Actions.WithLabelValues(action.ActionType.String(), string(g_error.KindOf(err))).Inc()
		log.L.Debug("action rejected", zap.String("room", t.code), zap.String("uid", action.UserID), zap.String("action", action.ActionType.String()), zap.Error(err))
		return err
	}
	metrics.Actions.WithLabelValues(action.ActionType.String(), "ok").Inc()

	msgID := newMsgID()
	for _, id := range t.game.playerOrder {
		if private != nil && id == action.UserID {
			t.SendMsg(id, abstracts.MsgTypePlayerAction, msgID, private)
		} else {
			t.SendMsg(id, abstracts.MsgTypePlayerAction, msgID, notice)
		}
	}
	t.afterRoundEnd(end)
	t.broadcastScene(abstracts.MsgTypeGameUpdate)
	return nil
}

func (t *Table) afterRoundEnd(end *RoundEnd) {
	if end == nil {
		return
	}
	metrics.RoundsEnded.WithLabelValues(string(end.Reason)).Inc()
	if end.GameOver {
		metrics.GamesOver.Inc()
	}
	t.BroadcastMsg(abstracts.MsgTypeRoundEnd, newMsgID(), end)
	if t.observer != nil {
		t.observer.OnRoundEnd(t.code, end)
	}
}

// sceneFor hides every hand except uid's own.
func (t *Table) sceneFor(full *GameState, uID string) *GameState {
	scene := *full
	scene.Players = make(map[string]*PlayerState, len(full.Players))
	for id, p := range full.Players {
		ps := *p
		if id != uID {
			ps.Hand = nil
		}
		scene.Players[id] = &ps
	}
	return &scene
}

func (t *Table) broadcastScene(msgType int) {
	full := t.game.GetGameState()
	msgID := newMsgID()
	for _, id := range t.game.playerOrder {
		t.SendMsg(id, msgType, msgID, t.sceneFor(full, id))
	}
}

func (t *Table) playersInfo() []*abstracts.PlayerInfo {
	result := make([]*abstracts.PlayerInfo, 0, len(t.game.playerOrder))
	for _, id := range t.game.playerOrder {
		p := t.game.players[id]
		result = append(result, &abstracts.PlayerInfo{ ID: id, Name: p.name, CardCount: len(p.hand), Score: p.score, Coins: p.coins })
	}
	return result
}

func toCardScene(c Card) *abstracts.CardScene {
	return &abstracts.CardScene{ Suit: string(c.Suit), Value: string(c.Rank) }
}

func newMsgID() int64 {
	return time.Now().UnixNano()
}

func (t *Table) SendMsg(playerID string, msgType int, mID int64, msg interface{}) {
	t.msgSender.Send(playerID, msgType, mID, util.StringifyJsonToBytes(msg))
}

func (t *Table) BroadcastMsg(msgType int, msgID int64, msg interface{}) {
	for _, id := range t.game.playerOrder {
		t.SendMsg(id, msgType, msgID, msg)
	}
}

func (t *Table) broadcastExcept(uID string, msgType int, msg interface{}) {
	msgID := newMsgID()
	for _, id := range t.game.playerOrder {
		if id != uID {
			t.SendMsg(id, msgType, msgID, msg)
		}
	}
}

func (t *Table) Enter(msgID int64, u abstracts.User) error {
	result := make(chan error, 1)
	select {
	case t.enterChan <- enterMsg{ msgID: msgID, user: u, resultChan: result }:
	case <- t.stopChan:
		return g_error.ErrTableStopped
	}
	return t.waitErr(result)
}

// Leave returns how many players are still in the room.
func (t *Table) Leave(uID string) (int, error) {
	result := make(chan leaveResult, 1)
	select {
	case t.leaveChan <- leaveMsg{ uID: uID, resultChan: result }:
	case <- t.stopChan:
		return 0, g_error.ErrTableStopped
	}
	select {
	case r := <- result:
		return r.remain, r.err
	case <- t.stopChan:
		return 0, g_error.ErrTableStopped
	}
}

func (t *Table) StartGame(uID string) error {
	return t.sendWithErr(t.startChan, uID)
}

func (t *Table) NextRound(uID string) error {
	return t.sendWithErr(t.nextRoundChan, uID)
}

func (t *Table) sendWithErr(c chan withErrMsg, uID string) error {
	result := make(chan error, 1)
	select {
	case c <- withErrMsg{ uID: uID, resultChan: result }:
	case <- t.stopChan:
		return g_error.ErrTableStopped
	}
	return t.waitErr(result)
}

func (t *Table) Do(action abstracts.PlayerActionMsg) error {
	result := make(chan error, 1)
	select {
	case t.actionChan <- actionMsg{ action: action, resultChan: result }:
	case <- t.stopChan:
		return g_error.ErrTableStopped
	}
	return t.waitErr(result)
}

// 如果table stop，调用方不能一直阻塞，否则就可能有协程泄漏
func (t *Table) waitErr(result chan error) error {
	select {
	case err := <- result:
		return err
	case <- t.stopChan:
		return g_error.ErrTableStopped
	}
}

// GetScene returns nil once the table is stopped.
func (t *Table) GetScene(uID string) *GameState {
	result := make(chan *GameState, 1)
	select {
	case t.getSceneChan <- getSceneMsg{ uID: uID, resultChan: result }:
	case <- t.stopChan:
		return nil
	}
	select {
	case s := <- result:
		return s
	case <- t.stopChan:
		return nil
	}
}

func (t *Table) Start() error {
	if !atomic.CompareAndSwapUint32(&t.started, 0, 1) {
		return g_error.ErrTableAlreadyStarted
	}
	go t.loop()
	return nil
}

func (t *Table) Stop() error {
	if atomic.LoadUint32(&t.started) == 0 || !atomic.CompareAndSwapUint32(&t.stopped, 0, 1) {
		return g_error.ErrTableStopped
	}
	close(t.stopChan)
	return nil
}
