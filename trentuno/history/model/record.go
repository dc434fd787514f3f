package model

import "time"

type PlayerRecord struct {
	ID string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
	Hand []string `json:"hand" bson:"hand"`
	Score int `json:"score" bson:"score"`
	Coins int `json:"coins" bson:"coins"`
}

// 每局结束写一条
type RoundRecord struct {
	RoomCode string `json:"room_code" bson:"room_code"`
	RoundNumber int `json:"round_number" bson:"round_number"`
	Reason string `json:"reason" bson:"reason"`
	Winners []string `json:"winners" bson:"winners"`
	CoinsAwarded int `json:"coins_awarded" bson:"coins_awarded"`
	PotRemaining int `json:"pot_remaining" bson:"pot_remaining"`
	Players []PlayerRecord `json:"players" bson:"players"`
	EndedAt time.Time `json:"ended_at" bson:"ended_at"`
}

// 整场结束（奖池耗尽或人数不足）写一条
type GameRecord struct {
	RoomCode string `json:"room_code" bson:"room_code"`
	Rounds int `json:"rounds" bson:"rounds"`
	Reason string `json:"reason" bson:"reason"`
	FinalWinners []PlayerRecord `json:"final_winners" bson:"final_winners"`
	EndedAt time.Time `json:"ended_at" bson:"ended_at"`
}
