package history

import (
	"github.com/pkg/errors"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/common/mongo"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/history/model"
)

func NewHistoryDBByMongo(config *mgo.DialInfo, dbName string) (*HistoryDBByMongo, error) {
	db := &HistoryDBByMongo{
		config: config,
		dbName: dbName,

		roundTN: "round_record",
		gameTN: "game_record",
	}
	if err := db.migrate(); err != nil {
		return nil, err
	}
	return db, nil
}

type HistoryDBByMongo struct {
	config *mgo.DialInfo
	dbName string

	roundTN string
	gameTN string
}

func (db *HistoryDBByMongo) SaveRound(rec model.RoundRecord) error {
	d, err := db.getDB()
	if err != nil {
		return err
	}
	return errors.Wrap(d.C(db.roundTN).Insert(rec), "insert round record")
}

func (db *HistoryDBByMongo) SaveGame(rec model.GameRecord) error {
	d, err := db.getDB()
	if err != nil {
		return err
	}
	return errors.Wrap(d.C(db.gameTN).Insert(rec), "insert game record")
}

// 按局数升序
func (db *HistoryDBByMongo) GetRoundsByRoom(roomCode string) (result []model.RoundRecord, err error) {
	d, err := db.getDB()
	if err != nil {
		return nil, err
	}
	err = d.C(db.roundTN).Find(bson.M{"room_code": roomCode}).Sort("ended_at", "round_number").All(&result)
	return
}

func (db *HistoryDBByMongo) GetGamesByRoom(roomCode string) (result []model.GameRecord, err error) {
	d, err := db.getDB()
	if err != nil {
		return nil, err
	}
	err = d.C(db.gameTN).Find(bson.M{"room_code": roomCode}).Sort("ended_at").All(&result)
	return
}

func (db *HistoryDBByMongo) getDB() (*mgo.Database, error) {
	s, err := mongo.GetDB(db.config)
	if err != nil {
		return nil, err
	}
	return s.DB(db.dbName), nil
}

func (db *HistoryDBByMongo) migrate() error {
	d, err := db.getDB()
	if err != nil {
		return err
	}
	if err = d.C(db.roundTN).EnsureIndex(mgo.Index{ Key: []string{"room_code", "round_number"} }); err != nil {
		return errors.Wrap(err, "ensure round index")
	}
	if err = d.C(db.gameTN).EnsureIndex(mgo.Index{ Key: []string{"room_code"} }); err != nil {
		return errors.Wrap(err, "ensure game index")
	}
	return nil
}

func (db *HistoryDBByMongo) ClearTestData() error {
	return mongo.ClearAllData(db.config, db.dbName)
}
