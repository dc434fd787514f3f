package core

var PotLevels = map[int]PotLevel {
	1: { PerPlayer: 3 },
	2: { PerPlayer: 5 },
	3: { PerPlayer: 10 },
}

type PotLevel struct {
	// 开局时每个玩家往奖池放多少币
	PerPlayer int
}

const (
	MinPlayers = 2
	MaxPlayers = 5
	handSize   = 3
)

const (
	payoutKnock = 1
	payout31    = 2
)
