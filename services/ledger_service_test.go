// file: services/ledger_service_test.go
package services

import (
	"errors"
	"testing"
)

func TestCreditAndDebit(t *testing.T) {
	g, _, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	team := seedTeam(t, g, "账本队", captain, 1000)

	if err := g.Credit(team.ID, 200, captain.ID, "grant_points", "127.0.0.1"); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if got := teamBalance(t, g, team.ID); got != 1200 {
		t.Fatalf("加分后余额 = %v, 期望 1200", got)
	}

	if err := g.Debit(team.ID, 300, captain.ID, "spend_points", "127.0.0.1"); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if got := teamBalance(t, g, team.ID); got != 900 {
		t.Fatalf("扣分后余额 = %v, 期望 900", got)
	}

	if got := auditCount(t, g, "grant_points"); got != 1 {
		t.Fatalf("grant_points 审计记录 = %d, 期望 1", got)
	}
}

func TestDebitInsufficientFunds(t *testing.T) {
	g, _, _ := newTestGame(t)
	captain := seedUser(t, g, "captain@test.local")
	team := seedTeam(t, g, "穷队", captain, 100)

	err := g.Debit(team.ID, 100.01, captain.ID, "spend_points", "127.0.0.1")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, 期望 ErrInsufficientFunds", err)
	}
	// 失败不产生部分扣减
	if got := teamBalance(t, g, team.ID); got != 100 {
		t.Fatalf("余额 = %v, 期望保持 100", got)
	}

	// 恰好等于余额可以扣空
	if err := g.Debit(team.ID, 100, captain.ID, "spend_points", "127.0.0.1"); err != nil {
		t.Fatalf("扣空余额: %v", err)
	}
	if got := teamBalance(t, g, team.ID); got != 0 {
		t.Fatalf("余额 = %v, 期望 0", got)
	}
}

func TestAdjustAllowsNegativeBalance(t *testing.T) {
	g, _, _ := newTestGame(t)
	admin := seedUser(t, g, "admin@test.local")
	captain := seedUser(t, g, "captain@test.local")
	team := seedTeam(t, g, "被罚队", captain, 50)

	if err := g.Adjust(team.ID, -200, admin.ID, "penalty", "127.0.0.1"); err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if got := teamBalance(t, g, team.ID); got != -150 {
		t.Fatalf("调账后余额 = %v, 期望 -150", got)
	}
}

func TestLedgerUnknownTeam(t *testing.T) {
	g, _, _ := newTestGame(t)
	actor := seedUser(t, g, "actor@test.local")

	if err := g.Credit("no-such-team", 10, actor.ID, "grant_points", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, 期望 ErrNotFound", err)
	}
}
