// file: realtime/hub_test.go
package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// dialTestClient 起一个升级端点并接入 hub，返回客户端侧连接
func dialTestClient(t *testing.T, hub *Hub, userID, teamID string) *websocket.Conn {
	t.Helper()
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("升级失败: %v", err)
			return
		}
		hub.Register(conn, userID, teamID)
		close(registered)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("等待注册超时")
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event map[string]any
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("读取事件失败: %v", err)
	}
	return event
}

func TestPushUser(t *testing.T) {
	hub := NewHub()
	conn := dialTestClient(t, hub, "user-1", "team-1")

	hub.PushUser("user-1", map[string]any{"type": "join_accepted"})
	event := readEvent(t, conn)
	if event["type"] != "join_accepted" {
		t.Fatalf("event = %v", event)
	}
}

func TestPushUserDoesNotLeak(t *testing.T) {
	hub := NewHub()
	conn := dialTestClient(t, hub, "user-1", "")

	// 给别人推的事件不能串台
	hub.PushUser("user-2", map[string]any{"type": "secret"})
	hub.PushUser("user-1", map[string]any{"type": "mine"})

	event := readEvent(t, conn)
	if event["type"] != "mine" {
		t.Fatalf("串台: %v", event)
	}
}

func TestPushTeamReachesAllMembers(t *testing.T) {
	hub := NewHub()
	conn1 := dialTestClient(t, hub, "user-1", "team-1")
	conn2 := dialTestClient(t, hub, "user-2", "team-1")
	outsider := dialTestClient(t, hub, "user-3", "team-2")

	hub.PushTeam("team-1", map[string]any{"type": "under_attack"})

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		event := readEvent(t, conn)
		if event["type"] != "under_attack" {
			t.Fatalf("event = %v", event)
		}
	}

	// 外队收不到：用后续广播来验证频道里没有滞留事件
	hub.Broadcast(map[string]any{"type": "ping_all"})
	event := readEvent(t, outsider)
	if event["type"] != "ping_all" {
		t.Fatalf("外队收到了串台事件: %v", event)
	}
}

func TestBroadcast(t *testing.T) {
	hub := NewHub()
	conns := []*websocket.Conn{
		dialTestClient(t, hub, "user-1", "team-1"),
		dialTestClient(t, hub, "user-2", "team-2"),
	}

	hub.Broadcast(map[string]any{"type": "room_unlocked"})

	var wg sync.WaitGroup
	for _, conn := range conns {
		wg.Add(1)
		go func(c *websocket.Conn) {
			defer wg.Done()
			c.SetReadDeadline(time.Now().Add(2 * time.Second))
			var event map[string]any
			if err := c.ReadJSON(&event); err != nil {
				t.Errorf("读取广播失败: %v", err)
				return
			}
			if event["type"] != "room_unlocked" {
				t.Errorf("event = %v", event)
			}
		}(conn)
	}
	wg.Wait()
}

func TestDropRemovesClient(t *testing.T) {
	hub := NewHub()
	conn := dialTestClient(t, hub, "user-1", "team-1")

	conn.Close()
	// 读循环发现连接关闭后自行清理索引
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		_, userLeft := hub.userConns["user-1"]
		_, teamLeft := hub.teamConns["team-1"]
		hub.mu.Unlock()
		if !userLeft && !teamLeft {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("断开后索引未清理")
}
