// file: services/ratelimit_test.go
package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryLimiterWindow(t *testing.T) {
	clk := &testClock{now: baseTime}
	l := NewMemoryLimiter()
	l.Now = clk.Now
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "team-1", "submit_flag", 3, time.Minute)
		if err != nil || !ok {
			t.Fatalf("第 %d 次应放行: ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "team-1", "submit_flag", 3, time.Minute); ok {
		t.Fatal("超过限额应拒绝")
	}

	// 不同身份或不同动作互不影响
	if ok, _ := l.Allow(ctx, "team-2", "submit_flag", 3, time.Minute); !ok {
		t.Fatal("其他身份不应被波及")
	}
	if ok, _ := l.Allow(ctx, "team-1", "create_team", 3, time.Minute); !ok {
		t.Fatal("其他动作不应被波及")
	}

	// 窗口滑过后旧事件被裁剪
	clk.Advance(time.Minute + time.Second)
	if ok, _ := l.Allow(ctx, "team-1", "submit_flag", 3, time.Minute); !ok {
		t.Fatal("窗口滑过后应放行")
	}
}

func TestMemoryLimiterPartialSlide(t *testing.T) {
	clk := &testClock{now: baseTime}
	l := NewMemoryLimiter()
	l.Now = clk.Now
	ctx := context.Background()

	// 0s、40s 各一次，限额 2/分钟
	l.Allow(ctx, "x", "a", 2, time.Minute)
	clk.Advance(40 * time.Second)
	l.Allow(ctx, "x", "a", 2, time.Minute)

	if ok, _ := l.Allow(ctx, "x", "a", 2, time.Minute); ok {
		t.Fatal("40s 时限额已满")
	}
	// 第一条事件滑出窗口后放行
	clk.Advance(21 * time.Second)
	if ok, _ := l.Allow(ctx, "x", "a", 2, time.Minute); !ok {
		t.Fatal("61s 时第一条事件已出窗")
	}
}

func TestMemoryLimiterConcurrent(t *testing.T) {
	l := NewMemoryLimiter()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	allowed := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.Allow(ctx, "team-1", "submit_flag", 5, time.Minute)
			if err != nil {
				t.Errorf("Allow: %v", err)
				return
			}
			if ok {
				allowed <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(allowed)

	n := 0
	for range allowed {
		n++
	}
	if n != 5 {
		t.Fatalf("并发下放行 %d 次, 期望恰好 5 次", n)
	}
}

// 事件全部出窗的身份要从 map 里清掉，按 IP 限流时身份是无限多的。
func TestMemoryLimiterSweepsStaleIdentities(t *testing.T) {
	clk := &testClock{now: baseTime}
	l := NewMemoryLimiter()
	l.Now = clk.Now
	ctx := context.Background()

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"} {
		if ok, _ := l.Allow(ctx, ip, "http", 10, time.Minute); !ok {
			t.Fatalf("%s 首次请求应放行", ip)
		}
	}
	if len(l.events) != 4 {
		t.Fatalf("窗口内应保留 4 个身份, 实际 %d", len(l.events))
	}

	// 两个窗口之后这些身份的事件都已过期，下一次调用触发清理
	clk.Advance(2 * time.Minute)
	if ok, _ := l.Allow(ctx, "10.0.0.99", "http", 10, time.Minute); !ok {
		t.Fatal("新身份应放行")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) != 1 {
		t.Fatalf("过期身份应被清理, 剩余 %d 个", len(l.events))
	}
	if _, ok := l.events["10.0.0.99:http"]; !ok {
		t.Fatal("活跃身份不应被误删")
	}
}
