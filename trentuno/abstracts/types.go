package abstracts

type GameAction uint

const (
	GameActionOfDraw GameAction = iota
	GameActionOfDiscard
	GameActionOfKnock
	GameActionOfDeclare31
)

func (a GameAction) String() string {
	switch a {
	case GameActionOfDraw:
		return "draw"
	case GameActionOfDiscard:
		return "discard"
	case GameActionOfKnock:
		return "knock"
	case GameActionOfDeclare31:
		return "declare-31"
	}
	return "unknown"
}

const (
	// c - s
	MsgTypeCreateRoom = 0x10
	// c - s
	MsgTypeJoinRoom = 0x11
	// c - s
	MsgTypeLeave = 0x12
	// c - s
	MsgTypeStartGame = 0x13
	// c - s
	MsgTypeNextRound = 0x14
	// c - s
	MsgTypeGameAction = 0x15
	// c - s，断线重连或界面错乱时重新拉一次场景，回MsgTypeGameUpdate
	MsgTypeGetScene = 0x16

	// s - c
	MsgTypeErr = 0x20
	// s - c
	MsgTypeSuccess = 0x21
	// s - c，自己进入房间
	MsgTypeRoomJoined = 0x22
	// s - c，别人进入房间
	MsgTypePlayerJoined = 0x23
	// s - c
	MsgTypePlayerLeft = 0x24
	// s - c
	MsgTypeGameStarted = 0x25
	// s - c
	MsgTypeRoundStarted = 0x26
	// s - c，动作通知，用于客户端播动画
	MsgTypePlayerAction = 0x27
	// s - c
	MsgTypeRoundEnd = 0x28
	// s - c
	MsgTypeGameUpdate = 0x29
)

type CommonMsg struct {
	MsgID int64
	User User
}

type PlayerActionMsg struct {
	// 不能是客户端传上来的，应该有程序赋值
	MsgID int64 `json:"-"`
	UserID string `json:"-"`

	ActionType GameAction `json:"actionType"`
	// 摸牌时：deck 或 discard
	Source string `json:"source"`
	// 弃牌时手牌的位置
	CardIndex int `json:"cardIndex"`
}

type JoinRoomReq struct {
	RoomCode string `json:"roomCode"`
}

type ErrResp struct {
	// g_error.Kind，非游戏错误为空
	Kind string `json:"kind"`
	Info string `json:"info"`
}

type SuccessResp struct {
	Info string `json:"info"`
}

type PlayerInfo struct {
	ID string `json:"id"`
	Name string `json:"name"`
	CardCount int `json:"cardCount"`
	Score int `json:"score"`
	Coins int `json:"coins"`
}

type RoomJoinedResp struct {
	RoomCode string `json:"roomCode"`
	// 自己的id
	You string `json:"you"`
	Players []*PlayerInfo `json:"players"`
}

// player joined / player left
type MembershipNotice struct {
	ID string `json:"id"`
	Name string `json:"name"`
	Players []*PlayerInfo `json:"players"`
}

type CardScene struct {
	Suit string `json:"suit"`
	Value string `json:"value"`
}

type PlayerActionNotice struct {
	PlayerID string `json:"playerId"`
	PlayerName string `json:"playerName"`
	// draw-from-deck, draw-from-discard, discard, knock, declare-31
	Action string `json:"action"`
	// 从牌堆摸的牌只发给本人
	DrawnCard *CardScene `json:"drawnCard,omitempty"`
	DiscardedCard *CardScene `json:"discardedCard,omitempty"`
	Recycled bool `json:"recycled,omitempty"`
}
