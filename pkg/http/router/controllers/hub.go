package controllers

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
	"github.com/lintang-b-s/navreplan/pkg/planner"
	"github.com/mailru/easygo/netpoll"
	"go.uber.org/zap"
)

const userBufferSize = 1024

// User one websocket client of the event stream.
type User struct {
	io   sync.Mutex
	read sync.Mutex
	conn net.Conn

	// poll guards desc and polling against Remove.
	poll    sync.Mutex
	desc    *netpoll.Desc
	polling bool

	id   uuid.UUID
	out  chan planner.Event
	done chan struct{}
	once sync.Once
	hub  *Hub
}

// push is called by the event bus while the planner is busy, so it never blocks. a client that
// falls a whole buffer behind is dropped.
func (u *User) push(e planner.Event) {
	select {
	case <-u.done:
	case u.out <- e:
	default:
		u.hub.log.Warn("websocket client too slow, dropping", zap.String("user", u.id.String()))
		go u.hub.Remove(u)
	}
}

func (u *User) write(x any) error {
	js, err := json.Marshal(x)
	if err != nil {
		return err
	}
	u.io.Lock()
	defer u.io.Unlock()
	return wsutil.WriteServerMessage(u.conn, ws.OpText, js)
}

func (u *User) writeLoop() {
	for {
		select {
		case <-u.done:
			return
		case e := <-u.out:
			if err := u.write(envelope{"data": NewEventResponse(e)}); err != nil {
				u.hub.Remove(u)
				return
			}
		}
	}
}

// readFrame discards one client data frame, answering the control frames before it.
func (u *User) readFrame() error {
	u.read.Lock()
	defer u.read.Unlock()
	_, _, err := wsutil.ReadClientData(u.conn)
	return err
}

func (u *User) readLoop() {
	for {
		if err := u.readFrame(); err != nil {
			u.hub.Remove(u)
			return
		}
	}
}

// Hub fans planner events out to websocket clients.
type Hub struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*User
	source EventSource
	poller netpoll.Poller
	log    *zap.Logger
}

// NewHub watches client connections with epoll/kqueue when the platform has it, and with one
// reading goroutine per client otherwise.
func NewHub(source EventSource, log *zap.Logger) *Hub {
	poller, err := netpoll.New(nil)
	if err != nil {
		log.Warn("netpoll unavailable, reading websocket clients with goroutines", zap.Error(err))
		poller = nil
	}
	return &Hub{
		users:  make(map[uuid.UUID]*User),
		source: source,
		poller: poller,
		log:    log,
	}
}

// Serve upgrades the request and streams events to the client until either side closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		return err
	}
	user := h.Register(conn)
	h.log.Info("established websocket connection", zap.String("user", user.id.String()),
		zap.String("connection", nameConn(conn)))

	go user.writeLoop()
	h.watch(user)
	return nil
}

// watch reads client frames when the poller reports the connection readable. connections the
// poller cannot handle get a reading goroutine.
func (h *Hub) watch(user *User) {
	user.poll.Lock()
	defer user.poll.Unlock()
	if user.desc == nil {
		go user.readLoop()
		return
	}
	// callbacks may fire before Start returns. Remove waits on user.poll, so it runs in its own
	// goroutine.
	err := h.poller.Start(user.desc, func(ev netpoll.Event) {
		if ev&(netpoll.EventReadHup|netpoll.EventHup) != 0 {
			go h.Remove(user)
			return
		}
		go func() {
			if err := user.readFrame(); err != nil {
				h.Remove(user)
			}
		}()
	})
	if err != nil {
		h.log.Warn("cannot poll websocket client", zap.String("user", user.id.String()), zap.Error(err))
		go user.readLoop()
		return
	}
	user.polling = true
}

func (h *Hub) Register(conn net.Conn) *User {
	user := &User{
		hub:  h,
		conn: conn,
		out:  make(chan planner.Event, userBufferSize),
		done: make(chan struct{}),
	}
	if h.poller != nil {
		if desc, err := netpoll.HandleRead(conn); err == nil {
			user.desc = desc
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	user.id = h.source.Subscribe(user.push)
	h.users[user.id] = user
	return user
}

func (h *Hub) Remove(user *User) {
	user.once.Do(func() {
		h.source.Unsubscribe(user.id)
		close(user.done)
		user.poll.Lock()
		if user.desc != nil {
			if user.polling {
				_ = h.poller.Stop(user.desc)
			}
			_ = user.desc.Close()
			user.desc, user.polling = nil, false
		}
		user.poll.Unlock()
		_ = user.conn.Close()

		h.mu.Lock()
		delete(h.users, user.id)
		h.mu.Unlock()
		h.log.Info("websocket client disconnected", zap.String("user", user.id.String()))
	})
}

func (h *Hub) NumUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users)
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, 0, len(h.users))
	for _, user := range h.users {
		users = append(users, user)
	}
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
