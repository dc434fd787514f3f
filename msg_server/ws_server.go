package msg_server

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/log"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/metrics"
	"github.com/LeaguesOfHoleHoleShoes/Trentuno/util"
)

var upgrader = websocket.Upgrader{
	// 房间码本身就是门槛，浏览器客户端可能来自任意域
	CheckOrigin: func(r *http.Request) bool { return true },
}

// msg type
const (
	MsgTypeHandShake = 0x0
)

const (
	sendMsgChanCache = 50
	maxPeerCount = 1000

	handShakeWait = 8 * time.Second

	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

type AbsUser interface {
	ID() string
	Name() string
}

// userIssuer hands out a fresh participant for every accepted connection.
type userIssuer interface {
	NewUser(name string) AbsUser
}

type msgHandler interface {
	Handle(uID string, msgType int, msgID int64, msg []byte) error
	// 连接断开后调用，之后不会再有该uID的消息
	OnDisconnect(uID string)
}

func NewWsServer(port int, userIssuer userIssuer, msgHandler msgHandler) *WsServer {
	s := &WsServer {
		port: port,
		userIssuer: userIssuer,
		msgHandler: msgHandler,
		peerSet: newWsPeerSet(),
		sendMsgChan: make(chan *cMsg, sendMsgChanCache),
		stopChan: make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/msg", s.handlePeer)
	mux.Handle("/metrics", metrics.Handler())
	s.httpServer = &http.Server{ Addr: fmt.Sprintf(":%v", port), Handler: mux }
	return s
}

type WsServer struct {
	port int

	userIssuer userIssuer
	msgHandler msgHandler

	peerSet *wsPeerSet

	sendMsgChan chan *cMsg
	httpServer *http.Server
	stopChan chan struct{}
	loopStarted uint32
}

type cMsg struct {
	msgID int64
	uID string
	msgType int
	content []byte
}

// Handler exposes the routes without listening, used by tests.
func (s *WsServer) Handler() http.Handler {
	s.startLoop()
	return s.httpServer.Handler
}

func (s *WsServer) Run() error {
	s.startLoop()
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *WsServer) Stop() error {
	close(s.stopChan)
	return s.httpServer.Close()
}

func (s *WsServer) startLoop() {
	if atomic.CompareAndSwapUint32(&s.loopStarted, 0, 1) {
		go s.loop()
	}
}

func (s *WsServer) loop() {
	for {
		select {
		case tmp := <- s.sendMsgChan:
			s.send(tmp)
		case <- s.stopChan:
			return
		}
	}
}

func (s *WsServer) handlePeer(w http.ResponseWriter, r *http.Request) {
	log.L.Debug("receive new peer", zap.String("remote addr", r.RemoteAddr))
	if atomic.LoadInt64(&s.peerSet.peerCount) >= maxPeerCount {
		log.L.Warn("can't receive new peer, too many peers", zap.Int64("cur count", atomic.LoadInt64(&s.peerSet.peerCount)), zap.Int("max count", maxPeerCount))
		http.Error(w, "too many peers", http.StatusServiceUnavailable)
		return
	}

	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer c.Close()

	c.SetReadLimit(maxMessageSize)
	// hand shake
	uID, err := s.handleShake(c)
	if uID == "" || err != nil {
		log.L.Debug("hand shake failed", zap.Error(err), zap.String("u id", uID))
		return
	}

	np := newWsPeer(uID, c)
	s.peerSet.addPeer(np)
	defer func() {
		s.peerSet.removePeer(uID)
		s.msgHandler.OnDisconnect(uID)
	}()
	np.start()

	// 告诉客户端自己的id
	s.Send(uID, MsgTypeHandShake, 0, util.StringifyJsonToBytes(HandShakeResp{ ID: uID }))

	c.SetReadDeadline(time.Now().Add(pongWait))
	c.SetPongHandler(func(string) error {
		c.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			log.L.Debug("read msg failed", zap.String("uid", uID), zap.Error(err))
			return
		}
		if mt != websocket.BinaryMessage {
			log.L.Debug("receive invalid msg", zap.Int("msg type", mt))
			return
		}
		msgType, mID, msgB := UnWrapMsg(message)
		if msgType < 0 {
			log.L.Debug("receive short msg", zap.String("uid", uID), zap.Int("len", len(message)))
			return
		}
		if err = s.msgHandler.Handle(uID, msgType, mID, msgB); err != nil {
			log.L.Error("handle msg failed", zap.String("uid", uID), zap.Error(err))
			return
		}
	}
}

type HandShakeReq struct {
	Name string `json:"name"`
}

type HandShakeResp struct {
	ID string `json:"id"`
}

const maxNameLen = 32

func (s *WsServer) handleShake(c *websocket.Conn) (string, error) {
	c.SetReadDeadline(time.Now().Add(handShakeWait))

	var req HandShakeReq
	mt, mb, err := c.ReadMessage()
	if err != nil {
		return "", errors.Wrap(err, "read hand shake")
	}
	if mt != websocket.BinaryMessage {
		return "", errors.Errorf("invalid msg type: %v", mt)
	}

	msgType, _, msgB := UnWrapMsg(mb)
	if msgType != MsgTypeHandShake {
		return "", errors.Errorf("msg type isn't MsgTypeHandShake, %v", msgType)
	}
	if err = util.ParseJsonFromBytes(msgB, &req); err != nil {
		return "", errors.Wrap(err, "parse hand shake")
	}
	if req.Name == "" {
		return "", errors.New("empty name")
	}
	if rs := []rune(req.Name); len(rs) > maxNameLen {
		req.Name = string(rs[:maxNameLen])
	}

	u := s.userIssuer.NewUser(req.Name)
	if u == nil {
		return "", errors.New("user refused")
	}
	log.L.Debug("hand shake success", zap.String("u id", u.ID()), zap.String("name", u.Name()))
	return u.ID(), nil
}

func (s *WsServer) Send(id string, msgType int, msgID int64, msg []byte) {
	select {
	case s.sendMsgChan <- &cMsg{ msgID: msgID, uID: id, msgType: msgType, content: msg }:
	case <- s.stopChan:
	}
}

func (s *WsServer) send(msg *cMsg) {
	p := s.peerSet.getPeer(msg.uID)
	if p == nil {
		log.L.Warn("can't find peer in peer set, msg not send", zap.String("uid", msg.uID))
		return
	}
	// 如果send失败，则会导致peer直接stop，接着就触发conn.close，那么这时上边的ReadMsg会read出err，此次连接的生命周期就此结束
	p.send(msg)
}

func newWsPeerSet() *wsPeerSet {
	return &wsPeerSet{}
}

type wsPeerSet struct {
	// key player id
	peers     sync.Map
	peerCount int64
}

func (ps *wsPeerSet) getPeer(id string) *wsPeer {
	if p, ok := ps.peers.Load(id); ok {
		return p.(*wsPeer)
	}
	return nil
}

func (ps *wsPeerSet) removePeer(id string) {
	if p := ps.getPeer(id); p != nil {
		log.L.Debug("remove peer", zap.String("uid", id))
		p.stop()
		ps.peers.Delete(id)
		atomic.AddInt64(&ps.peerCount, -1)
		metrics.Peers.Dec()
	}
}

func (ps *wsPeerSet) addPeer(p *wsPeer) {
	if preP := ps.getPeer(p.id); preP != nil {
		ps.removePeer(p.id)
	}
	atomic.AddInt64(&ps.peerCount, 1)
	metrics.Peers.Inc()

	ps.peers.Store(p.id, p)
}

func newWsPeer(id string, conn *websocket.Conn) *wsPeer {
	return &wsPeer{
		id: id, conn: conn,
		sendChan: make(chan *cMsg, sendMsgChanCache),
		stopChan: make(chan struct{}),
	}
}

type wsPeer struct {
	// user id
	id string
	conn *websocket.Conn
	sendChan chan *cMsg
	stopChan chan struct{}
	stopOnce sync.Once
}

func (p *wsPeer) start() {
	go p.loop()
}

// close stop chan 后会调用conn.close
func (p *wsPeer) stop() {
	p.stopOnce.Do(func() { close(p.stopChan) })
}

func (p *wsPeer) loop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()
	for {
		select {
		case msg := <- p.sendChan:
			if err := p.doSend(msg); err != nil {
				log.L.Debug("send msg failed", zap.String("uid", p.id), zap.Error(err))
				return
			}

		case <- ticker.C:
			if err := p.doPing(); err != nil {
				return
			}

		case <- p.stopChan:
			log.L.Debug("peer loop returned", zap.String("uid", p.id))
			return
		}
	}
}

func (p *wsPeer) send(msg *cMsg) {
	select {
	case p.sendChan <- msg:
	default:
		log.L.Warn("can't send msg to client", zap.String("uid", p.id), zap.Int("send chan len", len(p.sendChan)))
	}
}

func (p *wsPeer) doSend(msg *cMsg) error {
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.BinaryMessage, WrapMsg(msg.msgType, msg.msgID, msg.content))
}

func (p *wsPeer) doPing() error {
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(websocket.PingMessage, nil)
}
