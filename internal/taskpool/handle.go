package taskpool

import "sync/atomic"

const (
	statePending int32 = iota
	stateRunning
	stateDone
)

// Handle 제출된 작업 하나의 조인 핸들
type Handle struct {
	fn    func()
	state atomic.Int32
	done  chan struct{}
	pval  any
}

func newHandle(fn func()) *Handle {
	return &Handle{fn: fn, done: make(chan struct{})}
}

// tryRun 작업을 선점했으면 실행하고 true 를 돌려준다.
func (h *Handle) tryRun() bool {
	if !h.state.CompareAndSwap(statePending, stateRunning) {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			h.pval = r
		}
		h.state.Store(stateDone)
		close(h.done)
	}()
	h.fn()
	return true
}

// Wait 작업이 끝날 때까지 막는다. 아직 어떤 워커도 잡지 않았으면 호출한 고루틴이 직접 실행한다.
// 작업 안에서 난 패닉은 여기서 다시 일으킨다.
func (h *Handle) Wait() {
	h.tryRun()
	<-h.done
	if h.pval != nil {
		panic(h.pval)
	}
}

// Done 작업이 끝났는지
func (h *Handle) Done() bool {
	return h.state.Load() == stateDone
}
