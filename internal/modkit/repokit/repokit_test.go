package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"customerlens/internal/platform/store"
	"customerlens/internal/platform/testkit"
)

type fakeTx struct {
	execs []string
	txs   int
}

type tag struct{}

func (tag) String() string      { return "OK" }
func (tag) RowsAffected() int64 { return 0 }

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return tag{}, nil
}
func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error) { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row        { return nil }
func (f *fakeTx) CopyFrom(context.Context, string, []string, [][]any) (int64, error) {
	return 0, nil
}
func (f *fakeTx) Tx(_ context.Context, fn func(store.RowQuerier) error) error {
	f.txs++
	return fn(f)
}

type pinger struct {
	err      error
	deadline bool
}

func (p *pinger) Ping(ctx context.Context) error {
	_, p.deadline = ctx.Deadline()
	return p.err
}

type guard struct{ err error }

func (g guard) Guard(context.Context) error { return g.err }

func TestMustBind(t *testing.T) {
	b := BindFunc[string](func(Queryer) string { return "ok" })
	if got := MustBind[string](b, &fakeTx{}); got != "ok" {
		t.Fatalf("MustBind = %q", got)
	}
	testkit.MustPanic(t, func() { MustBind[string](b, nil) })
}

func TestWithBeginHooks_RunInOrderInsideTx(t *testing.T) {
	inner := &fakeTx{}
	var order []string
	hk := func(name string) BeginHook {
		return func(context.Context, Queryer) error {
			order = append(order, name)
			return nil
		}
	}
	tx := WithBeginHooks(inner, hk("a"), hk("b"))
	err := WithTx(context.Background(), tx, func(Queryer) error {
		order = append(order, "fn")
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if strings.Join(order, ",") != "a,b,fn" || inner.txs != 1 {
		t.Fatalf("order = %v txs = %d", order, inner.txs)
	}
}

func TestWithBeginHooks_ErrorStopsFn(t *testing.T) {
	boom := errors.New("boom")
	tx := WithBeginHooks(&fakeTx{}, func(context.Context, Queryer) error { return boom })
	ran := false
	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err = %v ran = %v", err, ran)
	}
}

func TestWithBeginHooks_NoHooksReturnsInner(t *testing.T) {
	inner := &fakeTx{}
	if WithBeginHooks(inner) != TxRunner(inner) {
		t.Fatalf("expected inner runner back")
	}
}

func TestStatementTimeout(t *testing.T) {
	q := &fakeTx{}
	if err := StatementTimeout(1500*time.Millisecond)(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if err := StatementTimeout(0)(context.Background(), q); err != nil {
		t.Fatal(err)
	}
	if len(q.execs) != 1 || q.execs[0] != "SET LOCAL statement_timeout = 1500" {
		t.Fatalf("execs = %v", q.execs)
	}
}

func TestMustPing(t *testing.T) {
	p := &pinger{}
	MustPing(context.Background(), "pg", p)
	if !p.deadline {
		t.Fatalf("expected a default deadline")
	}
	testkit.MustPanic(t, func() { MustPing(context.Background(), "pg", nil) })
	testkit.MustPanic(t, func() { MustPing(context.Background(), "ch", &pinger{err: errors.New("down")}) })
}

func TestMustGuard(t *testing.T) {
	MustGuard(context.Background(), guard{})
	testkit.MustPanic(t, func() { MustGuard(context.Background(), guard{err: errors.New("x")}) })
}
