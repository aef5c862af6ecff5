package msort

import "sync"

// SplitHook 고루틴 두 개로 나누는 분할마다 호출된다. size 는 분할 전 길이.
// 여러 고루틴에서 동시에 불릴 수 있다.
type SplitHook func(size, budget, leftBudget, rightBudget int)

// ThreadOption Threaded 설정
type ThreadOption func(*threaded)

// WithSplitHook 병렬 분할 관찰자
func WithSplitHook(fn SplitHook) ThreadOption {
	return func(t *threaded) {
		t.onSplit = fn
	}
}

type threaded struct {
	onSplit SplitHook
	// onStart 자식 고루틴이 시작할 때 호출된다
	onStart func(size int)
}

// Threaded 스레드 예산 기반 병렬 머지소트.
// 분할마다 왼쪽은 threads/2, 오른쪽은 나머지 예산을 받아 두 고루틴에서 동시에 정렬한다.
// 예산이 1 이하가 되면 순차 정렬로 넘어간다.
func Threaded(arr []int, threads int, opts ...ThreadOption) {
	var t threaded
	for _, opt := range opts {
		opt(&t)
	}
	t.sort(arr, threads)
}

func (t *threaded) sort(arr []int, threads int) {
	if len(arr) <= 1 || threads <= 1 {
		Sequential(arr)
		return
	}

	left, right := split(arr)
	leftBudget, rightBudget := SplitBudget(threads)
	if t.onSplit != nil {
		t.onSplit(len(arr), threads, leftBudget, rightBudget)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		t.start(len(left))
		t.sort(left, leftBudget)
	}()

	go func() {
		defer wg.Done()
		t.start(len(right))
		t.sort(right, rightBudget)
	}()

	// 두 절반이 모두 끝나기 전에는 병합하지 않는다
	wg.Wait()
	merge(arr, left, right)
}

func (t *threaded) start(size int) {
	if t.onStart != nil {
		t.onStart(size)
	}
}

// SplitBudget 부모 예산을 왼쪽/오른쪽으로 나눈다. 홀수면 오른쪽이 하나 더 받는다.
func SplitBudget(threads int) (left, right int) {
	left = threads / 2
	return left, threads - left
}

// PlanNode Threaded 가 만드는 고정 분할 트리의 한 노드
type PlanNode struct {
	Size     int
	Budget   int
	Parallel bool // 이 노드에서 두 고루틴을 띄우는지
	Children []*PlanNode
}

// PlanBudget n 개 원소를 threads 예산으로 정렬할 때의 병렬 분할 트리를 계산한다.
// 순차로 넘어가는 노드는 자식 없이 잎이 된다.
func PlanBudget(n, threads int) *PlanNode {
	node := &PlanNode{Size: n, Budget: threads}
	if n <= 1 || threads <= 1 {
		return node
	}

	mid := n / 2
	lb, rb := SplitBudget(threads)
	node.Parallel = true
	node.Children = []*PlanNode{
		PlanBudget(mid, lb),
		PlanBudget(n-mid, rb),
	}
	return node
}

// Goroutines 트리 전체에서 생성되는 고루틴 수
func (p *PlanNode) Goroutines() int {
	if !p.Parallel {
		return 0
	}
	total := 2
	for _, c := range p.Children {
		total += c.Goroutines()
	}
	return total
}
