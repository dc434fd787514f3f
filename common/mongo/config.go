package mongo

import (
	"time"

	"gopkg.in/mgo.v2"
)

// NewDbConfig builds the dial info for the given hosts. database is the db the
// credentials were granted on, GetDB tries admin first.
func NewDbConfig(hosts []string, database, uname, pwd string) *mgo.DialInfo {
	return &mgo.DialInfo{
		Addrs: hosts,
		Database: database,
		Username:  uname,
		Password:  pwd,
		Direct:    false,
		Timeout:   time.Second * 5,
		PoolLimit: 300, // Session.SetPoolLimit
	}
}
