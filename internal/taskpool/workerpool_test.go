package taskpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSubmitWait(t *testing.T) {
	p := New(4)
	defer p.Close()

	var sum atomic.Int64
	handles := make([]*Handle, 0, 100)
	for i := 1; i <= 100; i++ {
		n := int64(i)
		handles = append(handles, p.Submit(func() { sum.Add(n) }))
	}
	for _, h := range handles {
		h.Wait()
		assert.True(t, h.Done())
	}
	assert.Equal(t, int64(5050), sum.Load())
	assert.Equal(t, int64(100), p.Submitted())
}

func TestWaitRunsUnclaimedTask(t *testing.T) {
	// 대기열이 없어도 워커 또는 Wait 한 쪽이 반드시 실행한다
	p := New(1, WithQueueSize(0))
	defer p.Close()

	ran := false
	h := p.Submit(func() { ran = true })
	h.Wait()
	assert.True(t, ran)
}

func TestNestedJoinSingleWorker(t *testing.T) {
	p := New(1)
	defer p.Close()

	var fib func(n int) int
	fib = func(n int) int {
		if n < 2 {
			return n
		}
		var a, b int
		ha := p.Submit(func() { a = fib(n - 1) })
		hb := p.Submit(func() { b = fib(n - 2) })
		ha.Wait()
		hb.Wait()
		return a + b
	}

	var got int
	p.Submit(func() { got = fib(15) }).Wait()
	assert.Equal(t, 610, got)
}

func TestSubmitHook(t *testing.T) {
	var calls atomic.Int64
	p := New(2, WithSubmitHook(func() { calls.Add(1) }))
	defer p.Close()

	for i := 0; i < 10; i++ {
		p.Submit(func() {}).Wait()
	}
	assert.Equal(t, int64(10), calls.Load())
	assert.Equal(t, int64(10), p.Submitted())
}

func TestPanicPropagatesToWaiter(t *testing.T) {
	p := New(2)
	defer p.Close()

	h := p.Submit(func() { panic("boom") })
	require.PanicsWithValue(t, "boom", h.Wait)
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()

	ran := false
	p.Submit(func() { ran = true }).Wait()
	assert.True(t, ran)
}

func TestDefaultIsShared(t *testing.T) {
	a := Default()
	b := Default()
	assert.Same(t, a, b)
	assert.GreaterOrEqual(t, a.Workers(), 1)
}

func TestNewClampsWorkers(t *testing.T) {
	p := New(0)
	defer p.Close()
	assert.Equal(t, 1, p.Workers())
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := New(2, WithLogger(zap.New(core).Named("taskpool")))
	p.Submit(func() {}).Wait()
	p.Close()

	started := logs.FilterMessage("task pool started").AllUntimed()
	require.Len(t, started, 1)
	assert.Equal(t, "taskpool", started[0].LoggerName)
	assert.Equal(t, int64(2), started[0].ContextMap()["workers"])

	closed := logs.FilterMessage("task pool closed").AllUntimed()
	require.Len(t, closed, 1)
	assert.Equal(t, int64(1), closed[0].ContextMap()["submitted"])
}
