package trentuno

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/common/g-error"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/metrics"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/msg_server"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/abstracts"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/core"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/history"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/util"
)

const roomCodeLen = 6

type Config struct {
	Port int
	PotLevel int
	MaxRooms int
}

type msgSender interface {
	Send(id string, msgType int, mID int64, msg []byte)
}

// core.Table
type table interface {
	Code() string
	Enter(msgID int64, u abstracts.User) error
	Leave(uID string) (int, error)
	StartGame(uID string) error
	NextRound(uID string) error
	Do(action abstracts.PlayerActionMsg) error
	GetScene(uID string) *core.GameState
	Start() error
	Stop() error
}

func NewRoomServer(cfg Config, recorder history.Recorder) (*RoomServer, error) {
	level, ok := core.PotLevels[cfg.PotLevel]
	if !ok {
		return nil, errors.Errorf("unknown pot level: %v", cfg.PotLevel)
	}
	r := newRoomServer(level, cfg.MaxRooms, recorder)
	r.wsServer = msg_server.NewWsServer(cfg.Port, r.sessions, r)
	r.sender = r.wsServer
	return r, nil
}

func newRoomServer(level core.PotLevel, maxRooms int, recorder history.Recorder) *RoomServer {
	if recorder == nil {
		recorder = history.NopRecorder{}
	}
	return &RoomServer{
		level: level,
		maxRooms: maxRooms,
		sessions: &sessionUsers{},
		rooms: map[string]table{},
		recorder: history.NewAsyncRecorder(recorder),
	}
}

/*

大厅：按房间码创建、加入房间，把消息转给玩家所在的Table

创建、加入、离开都持有lobbyLock，避免有人加入一个正在因为没人而被关掉的房间。
游戏动作不加锁，直接交给Table的loop串行处理。

*/
type RoomServer struct {
	level core.PotLevel
	maxRooms int
	// nil时使用crypto/rand
	rnd core.RandSource

	wsServer *msg_server.WsServer
	sender msgSender
	sessions *sessionUsers
	recorder *history.AsyncRecorder

	lobbyLock sync.Mutex
	// key room code
	rooms map[string]table
	// 记录哪个用户在哪个房间，uid -> table
	users sync.Map

	started uint32
}

func (r *RoomServer) Handle(uID string, msgType int, mID int64, msg []byte) error {
	u := r.sessions.GetUser(uID)
	if u == nil {
		log.L.Debug("receive msg, but can't find user", zap.String("uid", uID))
		return errors.New("can't find user: " + uID)
	}
	cMsg := abstracts.CommonMsg{ MsgID: mID, User: u }
	switch msgType {
	case abstracts.MsgTypeCreateRoom:
		r.createRoom(cMsg)
	case abstracts.MsgTypeJoinRoom:
		var req abstracts.JoinRoomReq
		if err := util.ParseJsonFromBytes(msg, &req); err != nil {
			return errors.Wrap(err, "parse join room req")
		}
		r.joinRoom(cMsg, req.RoomCode)
	case abstracts.MsgTypeLeave:
		r.leave(cMsg)
	case abstracts.MsgTypeStartGame:
		r.startGame(cMsg)
	case abstracts.MsgTypeNextRound:
		r.nextRound(cMsg)
	case abstracts.MsgTypeGameAction:
		var gMsg abstracts.PlayerActionMsg
		if err := util.ParseJsonFromBytes(msg, &gMsg); err != nil {
			return errors.Wrap(err, "parse game action")
		}
		gMsg.UserID = uID
		gMsg.MsgID = mID
		r.gameMsg(gMsg)
	case abstracts.MsgTypeGetScene:
		r.getScene(cMsg)
	default:
		r.sendErr(uID, mID, errors.Errorf("unknown msg type: %v", msgType))
	}
	return nil
}

// OnDisconnect removes the user from its room, as if it had left.
func (r *RoomServer) OnDisconnect(uID string) {
	r.lobbyLock.Lock()
	if _, err := r.leaveRoom(uID); err != nil && err != g_error.ErrNotInRoom {
		log.L.Warn("remove disconnected user failed", zap.String("uid", uID), zap.Error(err))
	}
	r.lobbyLock.Unlock()
	r.sessions.remove(uID)
}

func (r *RoomServer) createRoom(msg abstracts.CommonMsg) {
	user := msg.User
	r.lobbyLock.Lock()
	defer r.lobbyLock.Unlock()

	if _, ok := r.users.Load(user.ID()); ok {
		r.sendErr(user.ID(), msg.MsgID, g_error.ErrAlreadyInRoom)
		return
	}
	if r.maxRooms > 0 && len(r.rooms) >= r.maxRooms {
		r.sendErr(user.ID(), msg.MsgID, g_error.ErrTooManyRooms)
		return
	}

	code := r.newRoomCode()
	t := core.NewTable(code, r.level, r.rnd, r.sender, r.recorder)
	if err := t.Start(); err != nil {
		r.sendErr(user.ID(), msg.MsgID, err)
		return
	}
	r.rooms[code] = t
	metrics.Rooms.Set(float64(len(r.rooms)))
	log.L.Info("room created", zap.String("room", code), zap.String("uid", user.ID()))

	if err := t.Enter(msg.MsgID, user); err != nil {
		r.closeRoom(t)
		r.sendErr(user.ID(), msg.MsgID, err)
		return
	}
	r.users.Store(user.ID(), t)
}

// 调用方持有lobbyLock
func (r *RoomServer) newRoomCode() string {
	for {
		code := util.RandRoomCode(roomCodeLen)
		if _, ok := r.rooms[code]; !ok {
			return code
		}
	}
}

func (r *RoomServer) joinRoom(msg abstracts.CommonMsg, roomCode string) {
	user := msg.User
	r.lobbyLock.Lock()
	defer r.lobbyLock.Unlock()

	if _, ok := r.users.Load(user.ID()); ok {
		r.sendErr(user.ID(), msg.MsgID, g_error.ErrAlreadyInRoom)
		return
	}
	t, ok := r.rooms[strings.ToUpper(strings.TrimSpace(roomCode))]
	if !ok {
		r.sendErr(user.ID(), msg.MsgID, g_error.ErrRoomNotFound)
		return
	}
	if err := t.Enter(msg.MsgID, user); err != nil {
		r.sendErr(user.ID(), msg.MsgID, err)
		return
	}
	r.users.Store(user.ID(), t)
}

func (r *RoomServer) leave(msg abstracts.CommonMsg) {
	user := msg.User
	r.lobbyLock.Lock()
	_, err := r.leaveRoom(user.ID())
	r.lobbyLock.Unlock()
	if err != nil {
		r.sendErr(user.ID(), msg.MsgID, err)
		return
	}
	r.sendSuccess(user.ID(), msg.MsgID, "leave success")
}

// leaveRoom 调用方持有lobbyLock，房间没人了就关掉
func (r *RoomServer) leaveRoom(uID string) (string, error) {
	tmp, ok := r.users.Load(uID)
	if !ok {
		return "", g_error.ErrNotInRoom
	}
	t := tmp.(table)

	remain, err := t.Leave(uID)
	if err != nil && err != g_error.ErrTableStopped {
		return "", err
	}
	r.users.Delete(uID)
	if remain == 0 {
		r.closeRoom(t)
	}
	return t.Code(), nil
}

// 调用方持有lobbyLock
func (r *RoomServer) closeRoom(t table) {
	if err := t.Stop(); err != nil {
		log.L.Debug("stop table failed", zap.String("room", t.Code()), zap.Error(err))
	}
	delete(r.rooms, t.Code())
	metrics.Rooms.Set(float64(len(r.rooms)))
	log.L.Info("room closed", zap.String("room", t.Code()))
}

func (r *RoomServer) startGame(msg abstracts.CommonMsg) {
	t, ok := r.userTable(msg.User.ID())
	if !ok {
		r.sendErr(msg.User.ID(), msg.MsgID, g_error.ErrNotInRoom)
		return
	}
	if err := t.StartGame(msg.User.ID()); err != nil {
		r.sendErr(msg.User.ID(), msg.MsgID, err)
	}
}

func (r *RoomServer) nextRound(msg abstracts.CommonMsg) {
	t, ok := r.userTable(msg.User.ID())
	if !ok {
		r.sendErr(msg.User.ID(), msg.MsgID, g_error.ErrNotInRoom)
		return
	}
	if err := t.NextRound(msg.User.ID()); err != nil {
		r.sendErr(msg.User.ID(), msg.MsgID, err)
	}
}

func (r *RoomServer) gameMsg(msg abstracts.PlayerActionMsg) {
	t, ok := r.userTable(msg.UserID)
	if !ok {
		r.sendErr(msg.UserID, msg.MsgID, g_error.ErrNotInRoom)
		return
	}
	if err := t.Do(msg); err != nil {
		r.sendErr(msg.UserID, msg.MsgID, err)
	}
}

func (r *RoomServer) getScene(msg abstracts.CommonMsg) {
	t, ok := r.userTable(msg.User.ID())
	if !ok {
		r.sendErr(msg.User.ID(), msg.MsgID, g_error.ErrNotInRoom)
		return
	}
	scene := t.GetScene(msg.User.ID())
	if scene == nil {
		r.sendErr(msg.User.ID(), msg.MsgID, g_error.ErrTableStopped)
		return
	}
	r.sender.Send(msg.User.ID(), abstracts.MsgTypeGameUpdate, msg.MsgID, util.StringifyJsonToBytes(scene))
}

func (r *RoomServer) userTable(uID string) (table, bool) {
	tmp, ok := r.users.Load(uID)
	if !ok {
		return nil, false
	}
	return tmp.(table), true
}

func (r *RoomServer) RoomCount() int {
	r.lobbyLock.Lock()
	defer r.lobbyLock.Unlock()
	return len(r.rooms)
}

// send success
func (r *RoomServer) sendSuccess(uID string, msgID int64, info string) {
	r.sender.Send(uID, abstracts.MsgTypeSuccess, msgID, util.StringifyJsonToBytes(abstracts.SuccessResp{ Info: info }))
}

// send err，游戏错误带上kind
func (r *RoomServer) sendErr(uID string, msgID int64, err error) {
	r.sender.Send(uID, abstracts.MsgTypeErr, msgID, util.StringifyJsonToBytes(abstracts.ErrResp{ Kind: string(g_error.KindOf(err)), Info: err.Error() }))
}

func (r *RoomServer) Start() error {
	if !atomic.CompareAndSwapUint32(&r.started, 0, 1) {
		return errors.New("room server already started")
	}
	r.recorder.Start()
	if r.wsServer != nil {
		go func() {
			if err := r.wsServer.Run(); err != nil {
				log.L.Error("ws server stopped", zap.Error(err))
			}
		}()
	}
	log.L.Info("room server started", zap.Int("max rooms", r.maxRooms), zap.Int("per player", r.level.PerPlayer))
	return nil
}

func (r *RoomServer) Stop() error {
	if !atomic.CompareAndSwapUint32(&r.started, 1, 0) {
		return errors.New("room server not started")
	}
	if r.wsServer != nil {
		if err := r.wsServer.Stop(); err != nil {
			log.L.Warn("stop ws server failed", zap.Error(err))
		}
	}
	r.lobbyLock.Lock()
	for _, t := range r.rooms {
		r.closeRoom(t)
	}
	r.lobbyLock.Unlock()
	r.recorder.Stop()
	return nil
}
