package trentuno

import (
	"sync"

	"github.com/LeaguesOfHoleHoleShoes/Trentuno/msg_server"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/trentuno/abstracts"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/util"
)

const userIDLen = 8

type sessionUser struct {
	id string
	name string
}

func (u *sessionUser) ID() string { return u.id }

func (u *sessionUser) Name() string { return u.name }

// 没有账号体系，每次握手都发一个新的id，连接断开即失效
type sessionUsers struct {
	users sync.Map
}

func (s *sessionUsers) NewUser(name string) msg_server.AbsUser {
	for {
		u := &sessionUser{ id: util.RandID(userIDLen), name: name }
		if _, loaded := s.users.LoadOrStore(u.id, u); !loaded {
			return u
		}
	}
}

func (s *sessionUsers) GetUser(id string) abstracts.User {
	if u, ok := s.users.Load(id); ok {
		return u.(*sessionUser)
	}
	return nil
}

func (s *sessionUsers) remove(id string) {
	s.users.Delete(id)
}
