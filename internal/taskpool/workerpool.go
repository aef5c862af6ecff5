// Package taskpool 클로저 단위 작업을 받아 워커 고루틴이 실행하는 작업 풀.
// 제출 결과로 조인 핸들을 돌려주고, 대기자는 아직 아무 워커도 잡지 않은 작업을 직접 실행한다.
package taskpool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"msort/internal/logutil"
)

// 전역 워커 풀 (재사용을 위해)
var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default 프로세스 전역 풀. 처음 호출될 때 CPU 수만큼 워커를 띄운다.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = New(runtime.NumCPU())
	})
	return defaultPool
}

// Option 풀 설정
type Option func(*Pool)

// WithQueueSize 대기열 길이. 가득 차면 작업은 대기열에 들어가지 않고 Wait 하는 쪽이 실행한다.
func WithQueueSize(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.queueSize = n
		}
	}
}

// WithSubmitHook 스케줄링 요청마다 호출되는 훅
func WithSubmitHook(fn func()) Option {
	return func(p *Pool) {
		p.hook = fn
	}
}

// WithLogger 풀 전용 로거. 기본은 logutil.L()
func WithLogger(l *zap.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// Pool 고정 개수 워커와 공유 대기열
type Pool struct {
	workers   int
	queueSize int
	queue     chan *Handle
	hook      func()
	logger    *zap.Logger

	submitted atomic.Int64
	inline    atomic.Int64

	// mu 는 대기열 송신과 close 사이의 경합을 막는다
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New workers 개의 워커를 가진 풀을 만든다. workers 가 1 미만이면 1 로 맞춘다.
func New(workers int, opts ...Option) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{
		workers:   workers,
		queueSize: workers * 64,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logutil.L()
	}
	p.queue = make(chan *Handle, p.queueSize)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}
	p.logger.Debug("task pool started",
		zap.Int("workers", workers),
		zap.Int("queue", p.queueSize))
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for h := range p.queue {
		if !h.tryRun() {
			// 이미 대기자가 직접 실행함
			p.inline.Add(1)
		}
	}
	p.logger.Debug("task pool worker stopped", zap.Int("worker", id))
}

// Submit fn 을 비동기 작업으로 제출하고 조인 핸들을 돌려준다.
// 대기열이 가득 찼거나 풀이 닫혔으면 작업은 Wait 를 호출한 고루틴에서 실행된다.
func (p *Pool) Submit(fn func()) *Handle {
	h := newHandle(fn)
	p.submitted.Add(1)
	if p.hook != nil {
		p.hook()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return h
	}
	select {
	case p.queue <- h:
	default:
	}
	return h
}

// Submitted 지금까지의 스케줄링 요청 수
func (p *Pool) Submitted() int64 {
	return p.submitted.Load()
}

// Workers 워커 수
func (p *Pool) Workers() int {
	return p.workers
}

// Close 대기열에 남은 작업을 처리한 뒤 워커를 멈춘다. 여러 번 호출해도 된다.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Debug("task pool closed",
		zap.Int64("submitted", p.submitted.Load()),
		zap.Int64("claimedByWaiter", p.inline.Load()))
}
