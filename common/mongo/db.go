package mongo

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/mgo.v2"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
)

var session *mgo.Session
var mutex sync.Mutex

// 获取数据库连接
// 先尝试去连admin（设置readWriteAnyDatabase就在admin），不成功则可能是只针对对应的数据库做了授权，再尝试去连对应数据库
func GetDB(dbConfig *mgo.DialInfo) (*mgo.Session, error) {
	mutex.Lock()
	defer mutex.Unlock()
	if session != nil {
		return session, nil
	}

	log.L.Info("init mongo session", zap.Strings("hosts", dbConfig.Addrs))
	conf := *dbConfig
	conf.Database = "admin"
	s, err := mgo.DialWithInfo(&conf)
	if err != nil {
		log.L.Debug("dial mongo with admin failed", zap.Error(err))
		if s, err = mgo.DialWithInfo(dbConfig); err != nil {
			return nil, errors.Wrap(err, "dial mongo")
		}
	}
	s.SetMode(mgo.Strong, true)
	session = s
	return session, nil
}

// 清空某个数据库下的所有数据，只允许对测试库操作
func ClearAllData(dbConfig *mgo.DialInfo, dbName string) error {
	if !strings.Contains(dbName, "test") {
		log.L.Warn("refuse to clear non test db", zap.String("db", dbName))
		return errors.Errorf("refuse to clear db %v", dbName)
	}
	s, err := GetDB(dbConfig)
	if err != nil {
		return err
	}
	tmpDB := s.DB(dbName)
	cName, err := tmpDB.CollectionNames()
	if err != nil {
		return err
	}
	for _, cn := range cName {
		// DropCollection不会清除session中缓存的index，反复调用后会导致后边的测试无法migrate index
		if _, err := tmpDB.C(cn).RemoveAll(nil); err != nil {
			return err
		}
	}
	return nil
}

// 关闭连接
func CloseDb() {
	mutex.Lock()
	defer mutex.Unlock()
	if session != nil {
		session.Close()
		session = nil
	}
}
