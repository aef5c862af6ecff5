package msort

import "msort/internal/taskpool"

// TaskThreshold 이 길이를 넘는 절반만 비동기 작업으로 제출한다
const TaskThreshold = 1000

// Tracer 정렬 호출의 상태 전이를 관찰한다. 여러 고루틴에서 동시에 불릴 수 있다.
type Tracer func(state State, size int)

// TaskOption TaskSorter 설정
type TaskOption func(*TaskSorter)

// WithThreshold 비동기 제출 기준 길이를 바꾼다
func WithThreshold(n int) TaskOption {
	return func(s *TaskSorter) {
		s.threshold = n
	}
}

// WithTracer 상태 전이 관찰자
func WithTracer(fn Tracer) TaskOption {
	return func(s *TaskSorter) {
		s.tracer = fn
	}
}

// TaskSorter 작업 풀 기반 병렬 머지소트
type TaskSorter struct {
	pool      *taskpool.Pool
	threshold int
	tracer    Tracer
}

// NewTaskSorter pool 이 nil 이면 taskpool.Default() 를 쓴다
func NewTaskSorter(pool *taskpool.Pool, opts ...TaskOption) *TaskSorter {
	if pool == nil {
		pool = taskpool.Default()
	}
	s := &TaskSorter{pool: pool, threshold: TaskThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasked pool 로 arr 을 정렬한다
func Tasked(pool *taskpool.Pool, arr []int) {
	NewTaskSorter(pool).Sort(arr)
}

// Sort 루트 호출은 호출한 고루틴에서 실행되므로 작업 트리의 시작점은 하나뿐이다.
func (s *TaskSorter) Sort(arr []int) {
	s.sort(arr)
}

func (s *TaskSorter) sort(arr []int) {
	s.trace(StateUnsorted, len(arr))
	if len(arr) <= 1 {
		s.trace(StateSorted, len(arr))
		return
	}

	s.trace(StateSplitting, len(arr))
	left, right := split(arr)

	s.trace(StateAwaitingChildren, len(arr))
	lh := s.offer(left)
	rh := s.offer(right)
	if lh != nil {
		lh.Wait()
	}
	if rh != nil {
		rh.Wait()
	}

	s.trace(StateMerging, len(arr))
	merge(arr, left, right)
	s.trace(StateSorted, len(arr))
}

// offer 기준보다 크면 풀에 제출하고, 아니면 지금 작업 안에서 바로 정렬한다
func (s *TaskSorter) offer(part []int) *taskpool.Handle {
	if len(part) > s.threshold {
		return s.pool.Submit(func() { s.sort(part) })
	}
	s.sort(part)
	return nil
}

func (s *TaskSorter) trace(state State, size int) {
	if s.tracer != nil {
		s.tracer(state, size)
	}
}
