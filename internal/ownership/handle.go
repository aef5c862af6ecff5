// Package ownership 메모리를 많이 쓰는 객체의 소유권과 해제 시점을 보여주는 핸들.
// Exclusive 는 소유자가 하나, Shared 는 참조 카운트가 0 이 될 때 해제된다.
package ownership

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"msort/internal/logutil"
)

type EventKind string

const (
	Acquired EventKind = "acquired"
	Released EventKind = "released"
	Cloned   EventKind = "cloned"
	Dropped  EventKind = "dropped"
)

// Event 자원 상태 변화. Refs 는 Shared 에서만 의미가 있다
type Event struct {
	Kind EventKind
	Name string
	Refs int64
}

type Observer func(Event)

type options struct {
	observer Observer
	logger   *zap.Logger
}

type Option func(*options)

// WithObserver 이벤트 관찰자
func WithObserver(fn Observer) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// WithLogger 기본은 logutil.L()
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logutil.L()
	}
	return o
}

func (o options) emit(e Event) {
	o.logger.Info("resource "+string(e.Kind),
		zap.String("name", e.Name),
		zap.Int64("refs", e.Refs))
	if o.observer != nil {
		o.observer(e)
	}
}

// Exclusive 단일 소유 핸들. Release 는 한 번만 효과가 있다
type Exclusive struct {
	name string
	opts options

	mu   sync.Mutex
	data []int
}

// NewExclusive size 개의 int 를 가진 자원을 만든다
func NewExclusive(name string, size int, opts ...Option) *Exclusive {
	e := &Exclusive{name: name, opts: newOptions(opts), data: make([]int, size)}
	e.opts.emit(Event{Kind: Acquired, Name: name, Refs: 1})
	return e
}

// Data 해제 후에는 nil
func (e *Exclusive) Data() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data
}

func (e *Exclusive) Release() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.data == nil {
		return
	}
	e.data = nil
	e.opts.emit(Event{Kind: Released, Name: e.name})
}

// sharedState 모든 Shared 복제본이 공유하는 자원과 카운트
type sharedState struct {
	name string
	opts options
	refs atomic.Int64

	mu   sync.Mutex
	data []int
}

// Shared 참조 카운트 핸들. 각 핸들은 Release 를 한 번씩 해야 한다
type Shared struct {
	state    *sharedState
	released atomic.Bool
}

func NewShared(name string, size int, opts ...Option) *Shared {
	st := &sharedState{name: name, opts: newOptions(opts), data: make([]int, size)}
	st.refs.Store(1)
	st.opts.emit(Event{Kind: Acquired, Name: name, Refs: 1})
	return &Shared{state: st}
}

// Clone 카운트를 올린 새 핸들. 이미 해제한 핸들에서는 nil
func (s *Shared) Clone() *Shared {
	if s.released.Load() {
		return nil
	}
	refs := s.state.refs.Add(1)
	s.state.opts.emit(Event{Kind: Cloned, Name: s.state.name, Refs: refs})
	return &Shared{state: s.state}
}

// Refs 현재 살아 있는 핸들 수
func (s *Shared) Refs() int64 {
	return s.state.refs.Load()
}

// Data 자원이 해제됐으면 nil
func (s *Shared) Data() []int {
	if s.released.Load() {
		return nil
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	return s.state.data
}

// Release 이 핸들을 놓는다. 마지막 핸들이면 자원도 해제된다
func (s *Shared) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	refs := s.state.refs.Add(-1)
	s.state.opts.emit(Event{Kind: Dropped, Name: s.state.name, Refs: refs})
	if refs > 0 {
		return
	}

	s.state.mu.Lock()
	s.state.data = nil
	s.state.mu.Unlock()
	s.state.opts.emit(Event{Kind: Released, Name: s.state.name})
}
