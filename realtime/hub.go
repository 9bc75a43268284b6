// file: realtime/hub.go
package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Hub 维护在线客户端（按用户和按队伍两套索引）并负责事件下发。
// 下发是 fire-and-forget：发送缓冲满了就丢事件踢连接，
// 绝不让一个卡死的订阅者拖住业务提交。

const (
	sendBuffer   = 32
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 45 * time.Second

	// 入站消息限速：客户端只该偶尔发心跳类消息
	inboundRate  = rate.Limit(5)
	inboundBurst = 10
)

type client struct {
	conn    *websocket.Conn
	send    chan any
	userID  string
	teamID  string
	limiter *rate.Limiter
}

type Hub struct {
	mu        sync.Mutex
	userConns map[string]map[*client]struct{}
	teamConns map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		userConns: make(map[string]map[*client]struct{}),
		teamConns: make(map[string]map[*client]struct{}),
	}
}

// Register 接管一条已升级的连接；teamID 可为空（仅个人频道）
func (h *Hub) Register(conn *websocket.Conn, userID, teamID string) {
	c := &client{
		conn:    conn,
		send:    make(chan any, sendBuffer),
		userID:  userID,
		teamID:  teamID,
		limiter: rate.NewLimiter(inboundRate, inboundBurst),
	}

	h.mu.Lock()
	if h.userConns[userID] == nil {
		h.userConns[userID] = make(map[*client]struct{})
	}
	h.userConns[userID][c] = struct{}{}
	if teamID != "" {
		if h.teamConns[teamID] == nil {
			h.teamConns[teamID] = make(map[*client]struct{})
		}
		h.teamConns[teamID][c] = struct{}{}
	}
	h.mu.Unlock()

	go c.writeLoop(h)
	go c.readLoop(h)
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if conns, ok := h.userConns[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.userConns, c.userID)
		}
	}
	if c.teamID != "" {
		if conns, ok := h.teamConns[c.teamID]; ok {
			delete(conns, c)
			if len(conns) == 0 {
				delete(h.teamConns, c.teamID)
			}
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}

// deliver 非阻塞投递；缓冲满视为消费者失活，直接断开
func (h *Hub) deliver(c *client, event any) {
	select {
	case c.send <- event:
	default:
		slog.Warn("websocket client too slow, dropping", "user_id", c.userID)
		go h.drop(c)
	}
}

// PushUser 推送给某个用户的全部连接
func (h *Hub) PushUser(userID string, event any) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.userConns[userID]))
	for c := range h.userConns[userID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	for _, c := range targets {
		h.deliver(c, event)
	}
}

// PushTeam 推送给某个队伍的全部连接
func (h *Hub) PushTeam(teamID string, event any) {
	h.mu.Lock()
	targets := make([]*client, 0, len(h.teamConns[teamID]))
	for c := range h.teamConns[teamID] {
		targets = append(targets, c)
	}
	h.mu.Unlock()
	for _, c := range targets {
		h.deliver(c, event)
	}
}

// Broadcast 推送给所有在线连接
func (h *Hub) Broadcast(event any) {
	h.mu.Lock()
	targets := make([]*client, 0)
	for _, conns := range h.userConns {
		for c := range conns {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()
	for _, c := range targets {
		h.deliver(c, event)
	}
}

func (c *client) writeLoop(h *Hub) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(event); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

func (c *client) readLoop(h *Hub) {
	defer h.drop(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		// 入站消息只用于保活，刷消息的连接直接断开
		if !c.limiter.Allow() {
			return
		}
	}
}
