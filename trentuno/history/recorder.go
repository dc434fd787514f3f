package history

import (
	"sort"
	"time"

	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/core"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/history/model"
)

// Recorder archives finished rounds. It is an audit trail only, nothing is read back into a game.
type Recorder interface {
	SaveRound(rec model.RoundRecord) error
	SaveGame(rec model.GameRecord) error
}

type NopRecorder struct{}

func (NopRecorder) SaveRound(model.RoundRecord) error { return nil }
func (NopRecorder) SaveGame(model.GameRecord) error { return nil }

func NewRoundRecord(roomCode string, end *core.RoundEnd, at time.Time) model.RoundRecord {
	return model.RoundRecord{
		RoomCode: roomCode,
		RoundNumber: end.RoundNumber,
		Reason: string(end.Reason),
		Winners: append([]string{}, end.Winners...),
		CoinsAwarded: end.CoinsAwarded,
		PotRemaining: end.PotRemaining,
		Players: playerRecords(end.Players),
		EndedAt: at,
	}
}

// NewGameRecord returns false when the round did not end the game.
func NewGameRecord(roomCode string, end *core.RoundEnd, at time.Time) (model.GameRecord, bool) {
	if !end.GameOver {
		return model.GameRecord{}, false
	}
	rec := model.GameRecord{
		RoomCode: roomCode,
		Rounds: end.RoundNumber,
		Reason: "pot-empty",
		EndedAt: at,
	}
	if end.Reason == core.ReasonAborted {
		rec.Reason = string(core.ReasonAborted)
	}
	for _, w := range end.FinalWinners {
		rec.FinalWinners = append(rec.FinalWinners, model.PlayerRecord{ ID: w.ID, Name: w.Name, Coins: w.Coins })
	}
	return rec, true
}

// 按id排序，保证写入顺序稳定
func playerRecords(players map[string]*core.PlayerResult) []model.PlayerRecord {
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	result := make([]model.PlayerRecord, 0, len(ids))
	for _, id := range ids {
		p := players[id]
		hand := make([]string, 0, len(p.Hand))
		for _, c := range p.Hand {
			hand = append(hand, c.String())
		}
		result = append(result, model.PlayerRecord{ ID: id, Name: p.Name, Hand: hand, Score: p.Score, Coins: p.Coins })
	}
	return result
}

const asyncCache = 64

type job struct {
	roomCode string
	end *core.RoundEnd
	at time.Time
}

func NewAsyncRecorder(inner Recorder) *AsyncRecorder {
	return &AsyncRecorder{
		inner: inner,
		jobChan: make(chan job, asyncCache),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

/*

写库放到单独的goroutine，不能阻塞table的loop。
队列满了直接丢弃并打日志，历史记录丢一条不影响游戏。

*/
type AsyncRecorder struct {
	inner Recorder
	jobChan chan job
	stopChan chan struct{}
	doneChan chan struct{}
}

// OnRoundEnd matches the table's round observer.
func (r *AsyncRecorder) OnRoundEnd(roomCode string, end *core.RoundEnd) {
	select {
	case r.jobChan <- job{ roomCode: roomCode, end: end, at: time.Now() }:
	default:
		log.L.Warn("history queue full, round dropped", zap.String("room", roomCode), zap.Int("round", end.RoundNumber))
	}
}

func (r *AsyncRecorder) Start() {
	go r.loop()
}

// Stop flushes what is already queued before returning.
func (r *AsyncRecorder) Stop() {
	close(r.stopChan)
	<-r.doneChan
}

func (r *AsyncRecorder) loop() {
	defer close(r.doneChan)
	for {
		select {
		case j := <-r.jobChan:
			r.save(j)
		case <-r.stopChan:
			for {
				select {
				case j := <-r.jobChan:
					r.save(j)
				default:
					return
				}
			}
		}
	}
}

func (r *AsyncRecorder) save(j job) {
	if err := r.inner.SaveRound(NewRoundRecord(j.roomCode, j.end, j.at)); err != nil {
		log.L.Error("save round record failed", zap.String("room", j.roomCode), zap.Int("round", j.end.RoundNumber), zap.Error(err))
	}
	if rec, ok := NewGameRecord(j.roomCode, j.end, j.at); ok {
		if err := r.inner.SaveGame(rec); err != nil {
			log.L.Error("save game record failed", zap.String("room", j.roomCode), zap.Error(err))
		}
	}
}
