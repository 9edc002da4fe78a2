package repofakes

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/wahid-dev1/semina/internal/persistence"
)

var _ persistence.TxManager = (*FakeTxManager)(nil)

// FakeTxManager runs fn directly. Fakes register undo steps for their writes
// and those run in reverse when fn fails, so a failed transaction leaves the
// fakes as it found them. Nested calls join the outer transaction.
type FakeTxManager struct {
	calls     atomic.Int64
	rollbacks atomic.Int64
}

func NewFakeTxManager() *FakeTxManager {
	return &FakeTxManager{}
}

type undoKey struct{}

type undoLog struct {
	lock  sync.Mutex
	steps []func()
}

func (m *FakeTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		return fn(ctx)
	}
	m.calls.Add(1)

	log := &undoLog{}
	if err := fn(context.WithValue(ctx, undoKey{}, log)); err != nil {
		m.rollbacks.Add(1)
		log.lock.Lock()
		defer log.lock.Unlock()
		for i := len(log.steps) - 1; i >= 0; i-- {
			log.steps[i]()
		}
		return err
	}
	return nil
}

// Calls reports how many transactions were started.
func (m *FakeTxManager) Calls() int64 {
	return m.calls.Load()
}

// Rollbacks reports how many transactions were rolled back.
func (m *FakeTxManager) Rollbacks() int64 {
	return m.rollbacks.Load()
}

// onRollback records step against the transaction carried by ctx. Outside a
// transaction the write is already final and step is dropped.
func onRollback(ctx context.Context, step func()) {
	log, ok := ctx.Value(undoKey{}).(*undoLog)
	if !ok {
		return
	}
	log.lock.Lock()
	log.steps = append(log.steps, step)
	log.lock.Unlock()
}
